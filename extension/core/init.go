// init.go implements "glossd init", which creates .glossd with an empty
// catalogue database. Config is left to "glossd config".

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/repo"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a new glossd catalogue",
		Long: `Creates a .glossd/glossd.db database in the current directory.

Use --db to create additional databases:
  glossd init --db archive    # creates .glossd/glossd-archive.db

Use --dir to create in a different directory:
  glossd init --dir /srv/moodle    # creates /srv/moodle/.glossd/glossd.db

Use --local to exclude from git:
  glossd init --db scratch --local    # creates glossd-scratch.db, not committed

The database starts empty. Load courses with "glossd import <file>".
Note: init does not create config. Use "glossd config" to set up configuration.`,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark database as local (gitignored)")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	db, dir := cmd.DB(), cmd.Dir()

	// --local edits the current project's .gitignore, which says nothing
	// about a database created under --dir.
	if local && dir != "" {
		return cmd.PrintJSONError(fmt.Errorf("cannot use --local with --dir: --local modifies the current project's .gitignore, but --dir creates the database elsewhere"))
	}

	err := glossary.Init(cmd.Force(), db, local, dir)

	log.Event("core:init", "init").
		User(cmd.LogUser()).
		Detail("db", db).
		Detail("dir", dir).
		Detail("local", local).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
	}

	dbFile := repo.DBFileName(db)
	loc := repo.Dir + "/" + dbFile
	if dir != "" {
		loc = dir + "/" + repo.Dir + "/" + dbFile
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]string{"database": loc})
	}
	fmt.Fprintf(cmd.Out(), "Initialised glossd catalogue in %s\n", loc)
	return nil
}
