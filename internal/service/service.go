// Package service defines the shared interface for glossary operations.
// Commands and extensions depend on this interface rather than concrete
// implementations, enabling testing with an in-memory catalogue.
package service

import (
	"context"
	"database/sql"

	"github.com/stronk7/moodle-block-search-glossaries/internal/diff"
	"github.com/stronk7/moodle-block-search-glossaries/internal/exporter"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// SearchRequest is a keyword search as typed by a user.
type SearchRequest struct {
	Query    string // raw input; markup is stripped and the result trimmed
	CourseID int64
	Page     int    // zero-based
	UserID   *int64 // nil uses the configured user
}

// Service defines all glossary operations.
//
// Extensions should use glossary.New() to obtain a Service implementation.
// Always call Close() when done (use defer).
//
// Example:
//
//	svc, err := glossary.New("")
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	l, err := svc.Search(ctx, service.SearchRequest{Query: "+cell", CourseID: 1})
type Service interface {
	// Close releases database resources. Always defer this after New().
	Close() error

	// Search runs a keyword search over the glossaries of a course and
	// returns one page of results ready for display.
	// Returns validate.ErrInvalidQuery or validate.ErrQueryTooLong for bad
	// input, search.ErrInvalidCourse for an unknown course and
	// search.ErrNoGlossaries for a course without glossaries.
	Search(ctx context.Context, req SearchRequest) (search.Listing, error)

	// HighlightTerms returns the words of a query that results highlight.
	HighlightTerms(raw string) []string

	// Course returns a course by id.
	// Returns store.ErrNotFound if the course doesn't exist.
	Course(ctx context.Context, id int64) (*store.Course, error)

	// Courses lists every course.
	Courses(ctx context.Context) ([]store.Course, error)

	// Glossaries lists the glossaries of a course, hidden ones included.
	Glossaries(ctx context.Context, courseID int64) ([]store.Glossary, error)

	// Import writes a catalogue in one batch. Records already present are
	// replaced, so importing the same catalogue twice is harmless.
	Import(ctx context.Context, cat *importer.Catalog, opts importer.Options) (importer.Result, error)

	// Preview lists the entries an import of cat would add or change,
	// without writing anything.
	Preview(ctx context.Context, cat *importer.Catalog) ([]diff.Change, error)

	// Export reads the stored catalogue back into file form.
	// Returns store.ErrNotFound for an unknown course filter.
	Export(ctx context.Context, opts exporter.Options) (*importer.Catalog, exporter.Result, error)

	// Grant gives a user a capability. Duplicate grants are ignored.
	Grant(ctx context.Context, g store.Grant) error

	// Revoke removes a grant and reports whether it existed.
	Revoke(ctx context.Context, g store.Grant) (bool, error)

	// Grants lists the grants of a user, or every grant for user 0.
	Grants(ctx context.Context, userID int64) ([]store.Grant, error)

	// Stats returns catalogue counts.
	Stats(ctx context.Context) (*store.Stats, error)

	// Dir returns the path to the .glossd directory, or "" for a catalogue
	// loaded from a file.
	Dir() string

	// DB returns the underlying SQLite connection, or nil for a catalogue
	// loaded from a file. Extensions use this to create custom tables.
	// Do not close this connection directly; use Service.Close().
	DB() *sql.DB
}
