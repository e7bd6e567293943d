// db.go implements "glossd db", which lists the catalogue databases in a
// .glossd directory and marks them local or shared. It only edits
// .gitignore, so it runs without opening any database.

package core

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/repo"
)

func newDBCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "db [name]",
		Short: "List or manage databases",
		Long: `List catalogue databases or change whether they are committed.

  glossd db                    # list all databases
  glossd db archive            # show whether archive is local or shared
  glossd db --local            # mark the default database local
  glossd db archive --share    # mark archive shared
  glossd db --dir /path        # list databases in another project

Local databases are listed in .glossd/.gitignore.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDB,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark database as local")
	c.Flags().BoolP(extension.FlagShare, "s", false, "Mark database as shared")
	c.MarkFlagsMutuallyExclusive(extension.FlagLocal, extension.FlagShare)
	return c
}

func runDB(c *cobra.Command, args []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	share, _ := c.Flags().GetBool(extension.FlagShare)

	// repo takes the .glossd directory; empty means discover it.
	dir := cmd.Dir()
	repoDir := ""
	if dir != "" {
		repoDir = filepath.Join(dir, repo.Dir)
	}

	if len(args) == 0 && !local && !share {
		err := listDBs(repoDir)
		log.Event("core:db", "list").User(cmd.LogUser()).Detail("dir", dir).Write(err)
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	action := "status"
	var err error
	switch {
	case local:
		action = "local"
		err = repo.IgnoreDB(name, repoDir)
	case share:
		action = "share"
		err = repo.UnignoreDB(name, repoDir)
	}
	var ignored bool
	if err == nil {
		ignored, err = repo.IsIgnored(name, repoDir)
	}

	log.Event("core:db", action).
		User(cmd.LogUser()).
		Detail("db", name).
		Detail("dir", dir).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("db %s %q: %w", action, name, err))
	}

	file := repo.DBFileName(name)
	if cmd.JSON() {
		return cmd.PrintJSON(dbJSON{Name: name, File: file, Local: ignored})
	}
	if action == "status" {
		fmt.Fprintf(cmd.Out(), "%s: %s\n", file, scope(ignored))
	} else {
		fmt.Fprintf(cmd.Out(), "%s marked as %s\n", file, scope(ignored))
	}
	return nil
}

type dbJSON struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Local bool   `json:"local"`
}

func scope(local bool) string {
	if local {
		return "local"
	}
	return "shared"
}

func listDBs(dir string) error {
	dbs, err := repo.ListDBs(dir)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("list databases: %w", err))
	}

	if cmd.JSON() {
		out := make([]dbJSON, len(dbs))
		for i, db := range dbs {
			out[i] = dbJSON{Name: db.Name, File: db.File, Local: db.Local}
		}
		return cmd.PrintJSON(out)
	}

	if len(dbs) == 0 {
		fmt.Fprintln(cmd.Out(), "No databases found")
		return nil
	}
	for _, db := range dbs {
		fmt.Fprintf(cmd.Out(), "%s  %s\n", db.File, scope(db.Local))
	}
	return nil
}
