// import.go implements "glossd import" and "glossd imports".

package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/diff"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
)

// ErrNoHistory is returned when import history is asked of a catalogue held
// in memory.
var ErrNoHistory = errors.New("import history needs a database, not a --catalog file")

func (e *Extension) newImportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML or JSON catalogue",
		Long: `Import courses, glossaries, entries and grants from a catalogue file.

Records are replaced by id, so importing the same file again is safe.

  glossd import moodle-export.yaml
  glossd import export.json --dry-run    # validate and count only
  glossd import export.yaml -n --diff    # show entry changes, write nothing

See "glossd guide import" for the file format.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runImport,
	}
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Validate and count without importing")
	c.Flags().BoolP(extension.FlagDiff, "d", false, "Show entries the import adds or changes")
	return c
}

func (e *Extension) runImport(c *cobra.Command, args []string) error {
	path := args[0]
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)

	cat, err := importer.LoadFile(path)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	// Changes are computed before the import overwrites the stored side.
	var changes []diff.Change
	if showDiff {
		changes, err = e.svc.Preview(c.Context(), cat)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
	}
	result, err := e.svc.Import(c.Context(), cat, importer.Options{DryRun: dryRun, Source: path})
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		out := map[string]any{
			"source":     path,
			"dry_run":    dryRun,
			"courses":    result.Courses,
			"glossaries": result.Glossaries,
			"entries":    result.Entries,
			"aliases":    result.Aliases,
			"grants":     result.Grants,
		}
		if showDiff {
			if changes == nil {
				changes = []diff.Change{}
			}
			out["changes"] = changes
		}
		return cmd.PrintJSON(out)
	}

	if showDiff {
		diff.Write(cmd.Out(), changes, term.IsTerminal(int(os.Stdout.Fd())))
	}

	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(cmd.Out(), "%s %d course(s), %d glossary(ies), %d entry(ies), %d alias(es), %d grant(s) from %s\n",
		verb, result.Courses, result.Glossaries, result.Entries, result.Aliases, result.Grants, path)
	return nil
}

func (e *Extension) newImportsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "imports",
		Short: "Show import history",
		Long: `List committed imports, newest first.

  glossd imports              # last 20 imports
  glossd imports --limit 0    # every import`,
		Args: cobra.NoArgs,
		RunE: e.runImports,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 20, "Number of imports to show (0 for all)")
	return c
}

func (e *Extension) runImports(c *cobra.Command, _ []string) error {
	limit, _ := c.Flags().GetInt(extension.FlagLimit)
	if e.history == nil {
		return cmd.PrintJSONError(ErrNoHistory)
	}
	imports, err := e.history.List(c.Context(), limit)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		if imports == nil {
			imports = []Import{}
		}
		return cmd.PrintJSON(imports)
	}
	if len(imports) == 0 {
		fmt.Fprintln(cmd.Out(), "No imports recorded")
		return nil
	}
	for _, im := range imports {
		fmt.Fprintf(cmd.Out(), "%-4d  %s  %5d entries  %s\n",
			im.ID, im.ImportedAt.Format(time.DateTime), im.Entries, im.Source)
	}
	return nil
}
