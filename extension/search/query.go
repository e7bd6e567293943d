// query.go implements the "glossd search" command.
//
// Results are written as Markdown. On a terminal the Markdown goes through
// glamour so highlights show in bold; piped output stays plain Markdown for
// scripts and LLM context.

package search

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/format"
	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
)

// NoGlossaries is printed for a course without any glossary.
const NoGlossaries = "There are no glossaries in this course"

func (e *Extension) newSearchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the glossaries of a course",
		Long: `Search every glossary of a course by keyword.

  glossd search cell --course 2           # entries containing "cell"
  glossd search "+cell -plant" -c 2       # the word "cell", never "plant"
  glossd search cell -c 2 --page 1        # second page of 100 entries
  glossd search cell -c 2 --user 7        # as user 7 sees it

See "glossd guide search" for the query syntax.`,
		Args: cobra.MaximumNArgs(1),
		RunE: e.runSearch,
	}
	c.Flags().Int64P(extension.FlagCourse, "c", 0, "Course id (required)")
	c.Flags().IntP(extension.FlagPage, "p", 0, "Zero-based result page")
	c.Flags().Bool(extension.FlagRaw, false, "Print Markdown without terminal rendering")
	_ = c.MarkFlagRequired(extension.FlagCourse)
	return c
}

func (e *Extension) runSearch(c *cobra.Command, args []string) error {
	courseID, _ := c.Flags().GetInt64(extension.FlagCourse)
	page, _ := c.Flags().GetInt(extension.FlagPage)
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	q := ""
	if len(args) > 0 {
		q = args[0]
	}
	if page < 0 {
		return cmd.PrintJSONError(fmt.Errorf("--page must not be negative, got %d", page))
	}

	l, err := e.svc.Search(c.Context(), service.SearchRequest{
		Query:    q,
		CourseID: courseID,
		Page:     page,
		UserID:   cmd.UserID(),
	})
	if errors.Is(err, search.ErrNoGlossaries) {
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{"notice": NoGlossaries})
		}
		fmt.Fprintln(cmd.Out(), NoGlossaries)
		return nil
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("search %q: %w", q, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(l.ToJSON())
	}

	var md bytes.Buffer
	if err := format.Markdown(&md, l); err != nil {
		return err
	}
	fmt.Fprint(cmd.Out(), render(md.String(), raw))
	return nil
}

// render passes md through glamour when stdout is a terminal.
func render(md string, raw bool) string {
	if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimLeft(out, "\n")
}
