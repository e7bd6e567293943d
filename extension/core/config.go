// config.go implements "glossd config". Local config (.glossd/config.yaml)
// overrides global (~/.glossd/config.yaml); --local writes the local file
// even before it exists.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  glossd config                       # show config
  glossd config search.full_text      # show search.full_text value
  glossd config search.full_text false # search concepts only
  glossd config user.id 7             # search as user 7 by default

Configuration locations:
  Global: ~/.glossd/config.yaml
  Local:  .glossd/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.glossd/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)

	// Load config: local if exists, otherwise global
	// --local flag forces local even if it doesn't exist yet
	var cfg *config.Config
	var err error
	if forceLocal {
		cfg, err = config.LoadScope(config.ScopeLocal)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if cfg.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		// Show all values
		all := cfg.All()
		if cmd.JSON() {
			if err := cmd.PrintJSON(all); err != nil {
				return err
			}
		} else {
			for _, k := range config.ValidKeys() {
				fmt.Fprintf(cmd.Out(), "%s: %s\n", k, all[k])
			}
		}
		log.Event("core:config", "list").User(cmd.LogUser()).Write(nil)

	case 1:
		// Get single value
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").User(cmd.LogUser()).Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		fmt.Fprintln(cmd.Out(), v)

	case 2:
		// Set value - write to same place we read from
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("core:config", "set").User(cmd.LogUser()).Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		// Values are not logged, only keys.
		log.Event("core:config", "set").User(cmd.LogUser()).Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}
