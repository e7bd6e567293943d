// interfaces.go defines the storage abstraction for the glossary catalogue.
//
// The interfaces are granular so consumers depend only on what they use:
// search needs a Reader and a Granter, import needs a Batcher.

package store

import (
	"context"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

// Reader defines read-only catalogue lookups.
type Reader interface {
	// Course returns a course by id, or ErrNotFound.
	Course(ctx context.Context, id int64) (*Course, error)

	// Courses lists every course ordered by id.
	Courses(ctx context.Context) ([]Course, error)

	// Glossaries lists the glossaries of a course ordered by id, hidden
	// ones included. Permission filtering is the caller's concern.
	Glossaries(ctx context.Context, courseID int64) ([]Glossary, error)

	// Entry returns an entry by id, or ErrNotFound.
	Entry(ctx context.Context, id int64) (*Entry, error)

	// Entries lists the entries of a glossary ordered by id, unapproved
	// ones included. Entries shared into the glossary are not listed.
	Entries(ctx context.Context, glossaryID int64) ([]Entry, error)

	// Aliases returns the aliases of an entry ordered by id.
	Aliases(ctx context.Context, entryID int64) ([]Alias, error)

	// Stats returns catalogue counts.
	Stats(ctx context.Context) (*Stats, error)
}

// Searcher defines the two lookups a keyword search is made of.
type Searcher interface {
	// AliasEntryIDs returns, ascending and without duplicates, the ids of
	// entries in scope owning at least one alias that satisfies p.
	AliasEntryIDs(ctx context.Context, scope Scope, p query.FieldPredicate) ([]int64, error)

	// FindEntries returns one page of entries in scope satisfying m,
	// ordered by glossary id then concept (case-insensitive) then id, and
	// the number of matching entries across all pages. A limit of 0 or
	// less returns every match.
	FindEntries(ctx context.Context, scope Scope, m EntryMatch, limit, offset int) ([]Entry, int, error)
}

// Granter answers capability questions.
type Granter interface {
	// HasGrant reports whether user holds capability on glossary, either
	// directly or through a grant on every glossary.
	HasGrant(ctx context.Context, userID int64, capability string, glossaryID int64) (bool, error)

	// Grants lists the grants of a user. User 0 lists every grant.
	Grants(ctx context.Context, userID int64) ([]Grant, error)
}

// Writer defines catalogue modifications. Records with a zero ID are
// assigned one, which is written back into the argument.
type Writer interface {
	PutCourse(ctx context.Context, c *Course) error
	PutGlossary(ctx context.Context, g *Glossary) error
	PutEntry(ctx context.Context, e *Entry) error
	PutAlias(ctx context.Context, a *Alias) error
	// SetAliases replaces every alias of an entry.
	SetAliases(ctx context.Context, entryID int64, aliases []string) error
	Grant(ctx context.Context, g Grant) error
	Revoke(ctx context.Context, g Grant) (bool, error)
}

// Batcher applies several writes atomically.
type Batcher interface {
	// Batch runs fn with a Writer whose changes are kept only if fn
	// returns nil.
	Batch(ctx context.Context, fn func(w Writer) error) error
}

// Maintainer defines lifecycle operations.
type Maintainer interface {
	// Close releases resources.
	Close() error

	// Checkpoint flushes pending state to durable storage.
	Checkpoint(ctx context.Context) error
}

// Store is the full catalogue interface.
type Store interface {
	Reader
	Searcher
	Granter
	Writer
	Batcher
	Maintainer
}
