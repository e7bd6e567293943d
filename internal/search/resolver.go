// Package search runs a keyword search over the glossaries of one course.
//
// A Resolver turns a Request into a Page: it parses the query, finds the
// glossaries the user may read, resolves alias matches to their entries and
// fetches one page of matching entries. A Presenter turns the Page into a
// Listing for display.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// PageSize is the number of entries on a result page.
const PageSize = 100

// DefaultFormat is the display format used when neither the glossary nor the
// configuration names one.
const DefaultFormat = "dictionary"

// Catalog is the part of the store a search reads.
type Catalog interface {
	Course(ctx context.Context, id int64) (*store.Course, error)
	Glossaries(ctx context.Context, courseID int64) ([]store.Glossary, error)
	AliasEntryIDs(ctx context.Context, scope store.Scope, p query.FieldPredicate) ([]int64, error)
	FindEntries(ctx context.Context, scope store.Scope, m store.EntryMatch, limit, offset int) ([]store.Entry, int, error)
}

// PermissionOracle decides which glossaries a user may read.
type PermissionOracle interface {
	// CanViewContainer reports whether user may view glossary at all.
	CanViewContainer(ctx context.Context, glossaryID, userID int64) (bool, error)
	// CanViewHidden reports whether user may see glossary while it is hidden.
	CanViewHidden(ctx context.Context, glossaryID, userID int64) (bool, error)
}

// Config holds deployment settings that affect every search.
type Config struct {
	// FullText also matches entry definitions.
	FullText bool
	// KeepEmptyTokens keeps the empty tokens repeated spaces produce, each
	// of which matches every entry.
	KeepEmptyTokens bool
	// Format is the default display format of entries.
	Format string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{FullText: true, Format: DefaultFormat}
}

// Request is a single search.
type Request struct {
	Query    string // trimmed and free of markup
	CourseID int64
	Offset   int   // zero-based, a multiple of PageSize
	UserID   int64 // 0 is anonymous
}

// maxPage is the last page whose offset fits in an int.
const maxPage = math.MaxInt / PageSize

// PageOffset converts a zero-based page number to an offset. Negative pages
// give 0; pages past maxPage give maxPage's offset, which is past the end of
// any catalogue.
func PageOffset(page int) int {
	return max(0, min(page, maxPage)) * PageSize
}

// Page is one page of search results.
type Page struct {
	Course     store.Course
	Entries    []store.Entry
	Total      int // matches across all pages
	Offset     int
	PageSize   int
	Tokens     []query.Token
	Highlights []string
	// Glossaries are all glossaries of the course; Permitted holds the ids
	// of those the user could search.
	Glossaries []store.Glossary
	Permitted  []int64
}

// Resolver runs searches against a catalogue.
type Resolver struct {
	catalog Catalog
	oracle  PermissionOracle
	cfg     Config
}

// NewResolver returns a Resolver reading catalog and checking access with
// oracle.
func NewResolver(catalog Catalog, oracle PermissionOracle, cfg Config) *Resolver {
	return &Resolver{catalog: catalog, oracle: oracle, cfg: cfg}
}

// Config returns the resolver's settings.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Tokens parses raw the way Search does.
func (r *Resolver) Tokens(raw string) []query.Token {
	return query.ParseWith(raw, query.Options{KeepEmpty: r.cfg.KeepEmptyTokens})
}

// Search returns the requested page of entries matching req.Query in the
// glossaries of req.CourseID that req.UserID may read.
//
// An empty query matches every visible entry. Zero matches, an offset past
// the last page and a course whose glossaries are all off limits give an
// empty page, not an error.
func (r *Resolver) Search(ctx context.Context, req Request) (*Page, error) {
	course, err := r.catalog.Course(ctx, req.CourseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("course %d: %w", req.CourseID, ErrInvalidCourse)
	}
	if err != nil {
		return nil, fmt.Errorf("course %d: %w", req.CourseID, err)
	}

	glossaries, err := r.catalog.Glossaries(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("list glossaries: %w", err)
	}
	if len(glossaries) == 0 {
		return nil, fmt.Errorf("course %d: %w", course.ID, ErrNoGlossaries)
	}

	permitted, err := r.permitted(ctx, glossaries, req.UserID)
	if err != nil {
		return nil, err
	}

	tokens := r.Tokens(req.Query)
	page := &Page{
		Course:     *course,
		Offset:     clampOffset(req.Offset),
		PageSize:   PageSize,
		Tokens:     tokens,
		Highlights: query.Highlights(tokens),
		Glossaries: glossaries,
		Permitted:  permitted,
	}
	if len(permitted) == 0 {
		return page, nil
	}

	scope := store.Scope{GlossaryIDs: permitted, UserID: req.UserID}
	preds := query.Build(tokens)

	aliased, err := r.catalog.AliasEntryIDs(ctx, scope, preds.Alias)
	if err != nil {
		return nil, fmt.Errorf("match aliases: %w", err)
	}

	m := store.EntryMatch{
		Concept:    preds.Concept,
		Definition: preds.Definition,
		FullText:   r.cfg.FullText,
		EntryIDs:   aliased,
	}
	page.Entries, page.Total, err = r.catalog.FindEntries(ctx, scope, m, PageSize, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("match entries: %w", err)
	}
	return page, nil
}

// permitted returns the ids of glossaries the user can search: visible or
// viewable while hidden, and viewable at all.
func (r *Resolver) permitted(ctx context.Context, glossaries []store.Glossary, userID int64) ([]int64, error) {
	var ids []int64
	for _, g := range glossaries {
		if !g.Visible {
			ok, err := r.oracle.CanViewHidden(ctx, g.ID, userID)
			if err != nil {
				return nil, fmt.Errorf("check hidden access to glossary %d: %w", g.ID, err)
			}
			if !ok {
				continue
			}
		}
		ok, err := r.oracle.CanViewContainer(ctx, g.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("check access to glossary %d: %w", g.ID, err)
		}
		if ok {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

// clampOffset replaces a negative offset, or one that is not a multiple of
// PageSize, with 0.
func clampOffset(offset int) int {
	if offset < 0 || offset%PageSize != 0 {
		return 0
	}
	return offset
}
