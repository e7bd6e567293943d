// Package exporter writes the catalogue held in a store back out in the
// file form the importer reads, so a database can be moved, reviewed or
// edited and re-imported.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// ErrExists is returned when the destination file exists and force is off.
var ErrExists = errors.New("file exists (use --force to overwrite)")

// Format selects the encoding of an export.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatFor returns JSON for a ".json" path and YAML otherwise.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Options configures an export operation.
type Options struct {
	CourseID int64 // Export only this course, 0 for every course
}

// Result contains the outcome of an export operation.
type Result struct {
	Courses    int `json:"courses"`
	Glossaries int `json:"glossaries"`
	Entries    int `json:"entries"`
	Aliases    int `json:"aliases"`
	Grants     int `json:"grants"`
}

// Source is the store side of an export.
type Source interface {
	store.Reader
	Grants(ctx context.Context, userID int64) ([]store.Grant, error)
}

// Build reads the catalogue from src. With a course filter only that
// course is exported, with the grants that cover its glossaries or every
// glossary. Returns store.ErrNotFound for an unknown course.
func Build(ctx context.Context, src Source, opts Options) (*importer.Catalog, Result, error) {
	var result Result

	var courses []store.Course
	if opts.CourseID != 0 {
		c, err := src.Course(ctx, opts.CourseID)
		if err != nil {
			return nil, result, fmt.Errorf("course %d: %w", opts.CourseID, err)
		}
		courses = []store.Course{*c}
	} else {
		var err error
		if courses, err = src.Courses(ctx); err != nil {
			return nil, result, err
		}
	}

	cat := &importer.Catalog{}
	exported := map[int64]bool{}
	for _, c := range courses {
		doc := importer.CourseDoc{ID: c.ID, ShortName: c.ShortName, FullName: c.FullName}
		glossaries, err := src.Glossaries(ctx, c.ID)
		if err != nil {
			return nil, result, fmt.Errorf("course %d glossaries: %w", c.ID, err)
		}
		for _, g := range glossaries {
			gd, err := glossaryDoc(ctx, src, g, &result)
			if err != nil {
				return nil, result, err
			}
			doc.Glossaries = append(doc.Glossaries, gd)
			exported[g.ID] = true
			result.Glossaries++
		}
		cat.Courses = append(cat.Courses, doc)
		result.Courses++
	}

	grants, err := src.Grants(ctx, 0)
	if err != nil {
		return nil, result, err
	}
	for _, g := range grants {
		if opts.CourseID != 0 && g.GlossaryID != 0 && !exported[g.GlossaryID] {
			continue
		}
		cat.Grants = append(cat.Grants, importer.GrantDoc{UserID: g.UserID, Capability: g.Capability, GlossaryID: g.GlossaryID})
		result.Grants++
	}
	return cat, result, nil
}

func glossaryDoc(ctx context.Context, src Source, g store.Glossary, result *Result) (importer.GlossaryDoc, error) {
	doc := importer.GlossaryDoc{ID: g.ID, Name: g.Name, DisplayFormat: g.DisplayFormat}
	if !g.Visible {
		doc.Visible = new(bool)
	}
	entries, err := src.Entries(ctx, g.ID)
	if err != nil {
		return doc, fmt.Errorf("glossary %d entries: %w", g.ID, err)
	}
	for _, e := range entries {
		ed := importer.EntryDoc{
			ID:               e.ID,
			Concept:          e.Concept,
			Definition:       e.Definition,
			UserID:           e.UserID,
			SourceGlossaryID: e.SourceGlossaryID,
		}
		if !e.Approved {
			ed.Approved = new(bool)
		}
		aliases, err := src.Aliases(ctx, e.ID)
		if err != nil {
			return doc, fmt.Errorf("entry %d aliases: %w", e.ID, err)
		}
		for _, a := range aliases {
			ed.Aliases = append(ed.Aliases, a.Alias)
		}
		doc.Entries = append(doc.Entries, ed)
		result.Entries++
		result.Aliases += len(ed.Aliases)
	}
	return doc, nil
}

// Encode writes cat to w in format f.
func Encode(w io.Writer, cat *importer.Catalog, f Format) error {
	if f == JSON {
		data, err := store.MarshalJSON(cat)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes cat to path, in the format its extension implies.
func WriteFile(path string, cat *importer.Catalog, force bool) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	// Open directory as root for safe file operations
	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}
	defer root.Close()

	f, err := createInRoot(root, name, force)
	if err != nil {
		return err
	}
	if err := Encode(f, cat, FormatFor(path)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// createInRoot opens name for writing within root, refusing to replace an
// existing file unless force is set.
func createInRoot(root *os.Root, name string, force bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := root.OpenFile(name, flags, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrExists)
	}
	if err != nil {
		return nil, fmt.Errorf("creating file %s: %w", name, err)
	}
	return f, nil
}
