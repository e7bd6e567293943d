// vacuum.go implements "glossd vacuum". Re-imports replace entries and
// aliases in place and leave free pages behind; vacuum rebuilds the file
// and lets extensions prune their own tables. It opens the database itself,
// and a catalogue served with --catalog has nothing to compact.

package core

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/duration"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
)

func newVacuumCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the catalogue database",
		Long: `Compact the catalogue database and prune extension history.

  glossd vacuum              # compact the database
  glossd vacuum --keep 10    # also keep only the last 10 import records
  glossd vacuum --older-than 3m   # also prune import records over 90 days old
  glossd vacuum --dry-run    # report sizes without changing anything

Pruning is irreversible. Use --force to skip confirmation.`,
		RunE: runVacuum,
	}
	c.Flags().Int(extension.FlagKeep, 0, "Keep only the most recent N history rows (0 keeps all)")
	c.Flags().String(extension.FlagOlderThan, "", "Prune history rows older than this (12h, 7d, 4w, 3m)")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Show what would be done")
	return c
}

func runVacuum(c *cobra.Command, _ []string) error {
	if cmd.Catalog() != "" {
		return cmd.PrintJSONError(glossary.ErrInMemory)
	}
	keep, _ := c.Flags().GetInt(extension.FlagKeep)
	olderThan, _ := c.Flags().GetString(extension.FlagOlderThan)
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)
	if keep < 0 {
		return cmd.PrintJSONError(fmt.Errorf("--keep must not be negative, got %d", keep))
	}
	retain := extension.Retention{Keep: keep}
	if olderThan != "" {
		d, err := duration.Parse(olderThan)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		retain.OlderThan = d
	}

	svc, err := glossary.New(cmd.DB())
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("open store: %w", err))
	}
	defer svc.Close()

	if !retain.Zero() && !dryRun && !cmd.Force() {
		fmt.Fprint(cmd.Out(), "Prune extension history? This cannot be undone. [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("reading confirmation: %w", err))
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.Out(), "Cancelled")
			return nil
		}
	}

	// Extension tables first, so the compaction reclaims what they free.
	pruned := map[string]int64{}
	if !retain.Zero() {
		extCtx := extension.NewContext(svc, svc.DB(), svc.Config())
		for _, ext := range extension.All() {
			v, ok := ext.(extension.Vacuumable)
			if !ok {
				continue
			}
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extCtx); err != nil {
					return cmd.PrintJSONError(fmt.Errorf("init extension %s: %w", ext.Name(), err))
				}
			}
			n, err := v.Vacuum(extCtx, retain, dryRun)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("vacuum extension %s: %w", ext.Name(), err))
			}
			pruned[ext.Name()] = n
		}
	}

	result, err := svc.Compact(c.Context(), dryRun)

	log.Event("core:vacuum", "vacuum").
		User(cmd.LogUser()).
		Detail("dry_run", dryRun).
		Detail("keep", keep).
		Detail("older_than", olderThan).
		Detail("before", result.Before).
		Detail("after", result.After).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("vacuum: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"path":    result.Path,
			"before":  result.Before,
			"after":   result.After,
			"dry_run": dryRun,
			"pruned":  pruned,
		})
	}

	verb := "Pruned"
	if dryRun {
		verb = "Would prune"
	}
	for name, n := range pruned {
		if n > 0 {
			fmt.Fprintf(cmd.Out(), "%s %d row(s) from %s\n", verb, n, name)
		}
	}
	if dryRun {
		fmt.Fprintf(cmd.Out(), "%s: %d bytes\n", result.Path, result.Before)
		return nil
	}
	fmt.Fprintf(cmd.Out(), "Compacted %s: %d -> %d bytes\n", result.Path, result.Before, result.After)
	return nil
}
