// Package diff previews how importing a catalogue would change the entries
// already in a store.
package diff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Kind classifies a previewed change.
type Kind string

const (
	Added   Kind = "added"
	Changed Kind = "changed"
)

// Change is one entry an import would write differently from what is stored.
type Change struct {
	Kind       Kind   `json:"kind"`
	EntryID    int64  `json:"entry_id"`
	GlossaryID int64  `json:"glossary_id"`
	Concept    string `json:"concept"`
	Diff       string `json:"diff,omitempty"` // empty for added entries
}

// Source provides the stored side of a preview.
type Source interface {
	Entry(ctx context.Context, id int64) (*store.Entry, error)
	Aliases(ctx context.Context, entryID int64) ([]store.Alias, error)
}

// Plan compares every entry in cat with the stored entry of the same id.
// Unchanged entries are omitted. Changes follow catalogue order.
func Plan(ctx context.Context, src Source, cat *importer.Catalog) ([]Change, error) {
	var out []Change
	for _, c := range cat.Courses {
		for _, g := range c.Glossaries {
			for _, doc := range g.Entries {
				next := render(g.ID, doc.Concept, doc.Definition, approved(doc.Approved), doc.Aliases)
				ch := Change{EntryID: doc.ID, GlossaryID: g.ID, Concept: doc.Concept}

				e, err := src.Entry(ctx, doc.ID)
				if errors.Is(err, store.ErrNotFound) {
					ch.Kind = Added
					out = append(out, ch)
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("entry %d: %w", doc.ID, err)
				}

				aliases, err := src.Aliases(ctx, e.ID)
				if err != nil {
					return nil, fmt.Errorf("entry %d aliases: %w", e.ID, err)
				}
				names := make([]string, len(aliases))
				for i, a := range aliases {
					names[i] = a.Alias
				}
				prev := render(e.GlossaryID, e.Concept, e.Definition, e.Approved, names)
				if prev == next {
					continue
				}

				label := "entry " + strconv.FormatInt(e.ID, 10)
				ch.Kind = Changed
				ch.Diff = Compute(prev, next, label+" (stored)", label+" (file)").Diff
				out = append(out, ch)
			}
		}
	}
	return out, nil
}

func approved(p *bool) bool { return p == nil || *p }

// render lays an entry out one field per line so changes diff by field.
func render(glossaryID int64, concept, definition string, approved bool, aliases []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "glossary: %d\n", glossaryID)
	fmt.Fprintf(&b, "concept: %s\n", concept)
	fmt.Fprintf(&b, "approved: %t\n", approved)
	if len(aliases) > 0 {
		fmt.Fprintf(&b, "aliases: %s\n", strings.Join(aliases, ", "))
	}
	if definition != "" {
		b.WriteString("definition:\n")
		for _, l := range strings.Split(strings.TrimRight(definition, "\n"), "\n") {
			b.WriteString("  " + l + "\n")
		}
	}
	return b.String()
}

// Write prints changes to w, with a summary line when there are none.
func Write(w io.Writer, changes []Change, colour bool) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "No entry changes")
		return
	}
	for _, ch := range changes {
		switch ch.Kind {
		case Added:
			fmt.Fprintf(w, "new entry %d %q in glossary %d\n", ch.EntryID, ch.Concept, ch.GlossaryID)
		case Changed:
			fmt.Fprintf(w, "%s", ch.Format(colour))
		}
	}
}

// Format returns a changed entry's diff with header.
func (ch Change) Format(colour bool) string {
	label := "entry " + strconv.FormatInt(ch.EntryID, 10)
	return Result{Old: label + " (stored)", New: label + " (file)", Diff: ch.Diff}.Format(colour)
}

// Result holds diff output.
type Result struct {
	Old  string // old label
	New  string // new label
	Diff string // plain diff text
}

// Compute returns a line diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	d := dmp.DiffMain(a, b, false)
	d = dmp.DiffCharsToLines(d, lines)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// format converts diffs to unified-style text.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		// Trim trailing newline to avoid artefact empty string from Split
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := range contextLines {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to diff output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)

	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	if colour {
		return header + Colourise(r.Diff)
	}
	return header + r.Diff
}
