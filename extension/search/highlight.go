// highlight.go implements the "glossd highlight" command, which prints the
// words a search would highlight without running it.

package search

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

func newHighlightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "highlight <query>",
		Short: "Show the words a query highlights",
		Long: `Print the words of a query that search results highlight, one per line.
Excluded (-word) terms and single characters are left out.

  glossd highlight "+cell -plant wall a"    # cell, wall`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			terms := query.HighlightTerms(args[0])
			log.Event("search:highlight", "highlight").
				User(cmd.LogUser()).
				Query(args[0]).
				Total(len(terms)).
				Write(nil)

			if cmd.JSON() {
				if terms == nil {
					terms = []string{}
				}
				return cmd.PrintJSON(terms)
			}
			for _, t := range terms {
				fmt.Fprintln(cmd.Out(), t)
			}
			return nil
		},
	}
}
