// Package importer loads glossary catalogues from YAML or JSON files and
// writes them into a store.
//
// A catalogue nests glossaries under courses and entries under glossaries,
// so the parent ids are implied by position:
//
//	courses:
//	  - id: 1
//	    short_name: BIO101
//	    glossaries:
//	      - id: 10
//	        name: Biology
//	        entries:
//	          - id: 100
//	            concept: Cell
//	            definition: The basic unit of life.
//	            aliases: [cells]
//	grants:
//	  - user_id: 2
//	    capability: moodle/course:viewhiddenactivities
//
// Every record carries its own id so importing the same file twice leaves
// the store unchanged.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stronk7/moodle-block-search-glossaries/internal/progress"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
	"github.com/stronk7/moodle-block-search-glossaries/internal/validate"
)

// ErrInvalidCatalog is returned when a catalogue file is malformed.
var ErrInvalidCatalog = errors.New("invalid catalogue")

// Catalog is the file form of a set of courses and grants.
type Catalog struct {
	Courses []CourseDoc `yaml:"courses" json:"courses"`
	Grants  []GrantDoc  `yaml:"grants,omitempty" json:"grants,omitempty"`
}

// CourseDoc is one course and its glossaries.
type CourseDoc struct {
	ID         int64         `yaml:"id" json:"id"`
	ShortName  string        `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	FullName   string        `yaml:"full_name,omitempty" json:"full_name,omitempty"`
	Glossaries []GlossaryDoc `yaml:"glossaries,omitempty" json:"glossaries,omitempty"`
}

// GlossaryDoc is one glossary and its entries. Visible defaults to true.
type GlossaryDoc struct {
	ID            int64      `yaml:"id" json:"id"`
	Name          string     `yaml:"name" json:"name"`
	Visible       *bool      `yaml:"visible,omitempty" json:"visible,omitempty"`
	DisplayFormat string     `yaml:"display_format,omitempty" json:"display_format,omitempty"`
	Entries       []EntryDoc `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// EntryDoc is one entry. Approved defaults to true.
type EntryDoc struct {
	ID               int64    `yaml:"id" json:"id"`
	Concept          string   `yaml:"concept" json:"concept"`
	Definition       string   `yaml:"definition,omitempty" json:"definition,omitempty"`
	Approved         *bool    `yaml:"approved,omitempty" json:"approved,omitempty"`
	UserID           int64    `yaml:"user_id,omitempty" json:"user_id,omitempty"`
	SourceGlossaryID int64    `yaml:"source_glossary_id,omitempty" json:"source_glossary_id,omitempty"`
	Aliases          []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// GrantDoc gives a user a capability. GlossaryID 0 covers every glossary.
type GrantDoc struct {
	UserID     int64  `yaml:"user_id" json:"user_id"`
	Capability string `yaml:"capability" json:"capability"`
	GlossaryID int64  `yaml:"glossary_id,omitempty" json:"glossary_id,omitempty"`
}

// Options configures an import operation.
type Options struct {
	DryRun bool   // Validate and count without writing
	Source string // Name of the catalogue, recorded in the audit log
}

// Result contains the outcome of an import operation.
type Result struct {
	Courses    int
	Glossaries int
	Entries    int
	Aliases    int
	Grants     int
}

// Load decodes and validates a catalogue. JSON is accepted as well as YAML
// since every JSON document is valid YAML. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// LoadFile reads a catalogue from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Validate checks ids, required fields and capabilities. Ids must be unique
// within their kind.
func (c *Catalog) Validate() error {
	courses := map[int64]bool{}
	glossaries := map[int64]bool{}
	entries := map[int64]bool{}

	for i, course := range c.Courses {
		if err := validate.CourseID(course.ID); err != nil {
			return invalid("courses[%d]: %v", i, err)
		}
		if courses[course.ID] {
			return invalid("courses[%d]: duplicate course id %d", i, course.ID)
		}
		courses[course.ID] = true

		for j, g := range course.Glossaries {
			at := fmt.Sprintf("course %d glossaries[%d]", course.ID, j)
			if g.ID <= 0 {
				return invalid("%s: glossary id must be positive", at)
			}
			if glossaries[g.ID] {
				return invalid("%s: duplicate glossary id %d", at, g.ID)
			}
			glossaries[g.ID] = true
			if g.Name == "" {
				return invalid("%s: name is required", at)
			}

			for k, e := range g.Entries {
				at := fmt.Sprintf("glossary %d entries[%d]", g.ID, k)
				if e.ID <= 0 {
					return invalid("%s: entry id must be positive", at)
				}
				if entries[e.ID] {
					return invalid("%s: duplicate entry id %d", at, e.ID)
				}
				entries[e.ID] = true
				if e.Concept == "" {
					return invalid("%s: concept is required", at)
				}
				if e.SourceGlossaryID < 0 {
					return invalid("%s: source_glossary_id must not be negative", at)
				}
			}
		}
	}

	for i, g := range c.Grants {
		if g.UserID <= 0 {
			return invalid("grants[%d]: user_id must be positive", i)
		}
		if err := validate.Capability(g.Capability); err != nil {
			return invalid("grants[%d]: %v", i, err)
		}
		if g.GlossaryID < 0 {
			return invalid("grants[%d]: glossary_id must not be negative", i)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
}

// Count returns the number of entries in the catalogue.
func (c *Catalog) Count() int {
	n := 0
	for _, course := range c.Courses {
		for _, g := range course.Glossaries {
			n += len(g.Entries)
		}
	}
	return n
}

// Run writes a catalogue in a single batch, so a failure part way through
// leaves the store as it was. Progress is drawn per entry on stderr.
func Run(ctx context.Context, b store.Batcher, cat *Catalog, opts Options) (Result, error) {
	return RunWith(ctx, b, cat, opts, progress.New("Importing", cat.Count()))
}

// RunWith is Run with an explicit progress reporter.
func RunWith(ctx context.Context, b store.Batcher, cat *Catalog, opts Options, prog *progress.Progress) (Result, error) {
	var result Result
	defer prog.Done()

	if opts.DryRun {
		for _, course := range cat.Courses {
			result.Courses++
			for _, g := range course.Glossaries {
				result.Glossaries++
				for _, e := range g.Entries {
					result.Entries++
					result.Aliases += len(e.Aliases)
				}
			}
		}
		result.Grants = len(cat.Grants)
		return result, nil
	}

	err := b.Batch(ctx, func(w store.Writer) error {
		result = Result{}
		for _, course := range cat.Courses {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := store.Course{ID: course.ID, ShortName: course.ShortName, FullName: course.FullName}
			if err := w.PutCourse(ctx, &c); err != nil {
				return err
			}
			result.Courses++

			for _, g := range course.Glossaries {
				if err := putGlossary(ctx, w, course.ID, g, prog, &result); err != nil {
					return err
				}
			}
		}

		for _, g := range cat.Grants {
			if err := w.Grant(ctx, store.Grant{UserID: g.UserID, Capability: g.Capability, GlossaryID: g.GlossaryID}); err != nil {
				return err
			}
			result.Grants++
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("importing catalogue: %w", err)
	}
	return result, nil
}

func putGlossary(ctx context.Context, w store.Writer, courseID int64, doc GlossaryDoc, prog *progress.Progress, result *Result) error {
	g := store.Glossary{
		ID:            doc.ID,
		CourseID:      courseID,
		Name:          doc.Name,
		Visible:       doc.Visible == nil || *doc.Visible,
		DisplayFormat: doc.DisplayFormat,
	}
	if err := w.PutGlossary(ctx, &g); err != nil {
		return err
	}
	result.Glossaries++

	for _, doc := range doc.Entries {
		e := store.Entry{
			ID:               doc.ID,
			GlossaryID:       g.ID,
			SourceGlossaryID: doc.SourceGlossaryID,
			Concept:          doc.Concept,
			Definition:       doc.Definition,
			Approved:         doc.Approved == nil || *doc.Approved,
			UserID:           doc.UserID,
		}
		if err := w.PutEntry(ctx, &e); err != nil {
			return err
		}
		if err := w.SetAliases(ctx, e.ID, doc.Aliases); err != nil {
			return err
		}
		result.Entries++
		result.Aliases += len(doc.Aliases)
		prog.Increment()
	}
	return nil
}
