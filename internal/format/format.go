// Package format renders search listings and catalogue summaries for the
// CLI. Listings are written as Markdown, which the CLI passes through
// glamour on a terminal and prints as-is otherwise.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// NoRecords is printed instead of a listing when nothing matched.
const NoRecords = "No Records Found"

// Header returns the line shown above a non-empty listing.
func Header(l search.Listing) string {
	return fmt.Sprintf("Results %d - %d of about %d for %q", l.First, l.Last, l.Total, l.Query)
}

// PagingBar returns the page links of a listing, the current page in bold,
// or "" when everything fits on one page. Pages are shown 1-based.
func PagingBar(l search.Listing) string {
	if l.Pages <= 1 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Page:")
	if l.Page > 0 {
		b.WriteString(" (Previous)")
	}
	for i := 0; i < l.Pages; i++ {
		if i == l.Page {
			fmt.Fprintf(&b, " **%d**", i+1)
		} else {
			fmt.Fprintf(&b, " %d", i+1)
		}
	}
	if l.Page < l.Pages-1 {
		b.WriteString(" (Next)")
	}
	return b.String()
}

// Markdown writes a listing as Markdown, highlighting its terms in bold.
func Markdown(w io.Writer, l search.Listing) error {
	if len(l.Items) == 0 {
		_, err := fmt.Fprintf(w, "%s\n", NoRecords)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", Header(l))
	bar := PagingBar(l)
	if bar != "" {
		fmt.Fprintf(&b, "%s\n\n", bar)
	}

	for _, it := range l.Items {
		fmt.Fprintf(&b, "---\n\n_%s_\n\n", glossaryName(it.Glossary))
		b.WriteString(Entry(it, l.Highlights))
		b.WriteString("\n")
	}

	if bar != "" {
		fmt.Fprintf(&b, "---\n\n%s\n", bar)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Entry renders one item in its display format.
func Entry(it search.Item, terms []string) string {
	concept := it.Entry.Concept
	def := Highlight(strings.TrimSpace(it.Entry.Definition), terms, "**", "**")

	switch it.Format {
	case "entrylist":
		return "- " + Highlight(concept, terms, "**", "**") + "\n"
	case "continuous":
		// The concept is already bold, so its matches are italic.
		head := "**" + Highlight(concept, terms, "_", "_") + "**"
		if def == "" {
			return head + "\n"
		}
		return head + ": " + def + "\n"
	case "fullwithauthor":
		s := "#### " + Highlight(concept, terms, "**", "**") + "\n\n" + def + "\n"
		if it.Entry.UserID != 0 {
			s += fmt.Sprintf("\n_by user %d_\n", it.Entry.UserID)
		}
		return s
	default:
		return "#### " + Highlight(concept, terms, "**", "**") + "\n\n" + def + "\n"
	}
}

func glossaryName(g store.Glossary) string {
	if g.Name == "" {
		return fmt.Sprintf("Glossary %d", g.ID)
	}
	return g.Name
}

// Glossaries prints the glossaries of a course, one per line.
func Glossaries(w io.Writer, gs []store.Glossary) error {
	if len(gs) == 0 {
		return nil
	}
	maxName := 4 // "NAME"
	for _, g := range gs {
		maxName = max(maxName, len(g.Name))
	}
	fmt.Fprintf(w, "%-6s  %-*s  %-7s  %s\n", "ID", maxName, "NAME", "VISIBLE", "FORMAT")
	for _, g := range gs {
		visible := "yes"
		if !g.Visible {
			visible = "hidden"
		}
		f := g.DisplayFormat
		if f == "" {
			f = "-"
		}
		fmt.Fprintf(w, "%-6d  %-*s  %-7s  %s\n", g.ID, maxName, g.Name, visible, f)
	}
	return nil
}

// Stats prints catalogue counts.
func Stats(w io.Writer, st *store.Stats) error {
	rows := []struct {
		label string
		n     int64
	}{
		{"Courses", st.Courses},
		{"Glossaries", st.Glossaries},
		{"  hidden", st.Hidden},
		{"Entries", st.Entries},
		{"  pending approval", st.Pending},
		{"  shared", st.Shared},
		{"Aliases", st.Aliases},
		{"Grants", st.Grants},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-20s %d\n", r.label, r.n); err != nil {
			return err
		}
	}
	return nil
}
