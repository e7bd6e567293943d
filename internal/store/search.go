// search.go implements the alias and entry lookups of a keyword search.
//
// A search is two queries. The first collects entries whose aliases match,
// the second selects entries whose concept matches, whose id came from the
// first query, or (with full-text search on) whose definition matches.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

// AliasEntryIDs returns the ids of in-scope entries with a matching alias.
func (s *SQLiteStore) AliasEntryIDs(ctx context.Context, scope Scope, p query.FieldPredicate) ([]int64, error) {
	if len(scope.GlossaryIDs) == 0 {
		return nil, nil
	}

	where, args := scopeCondition(scope)
	cond, condArgs, err := compile(p)
	if err != nil {
		return nil, fmt.Errorf("compile alias predicate: %w", err)
	}
	args = append(args, condArgs...)

	q := `SELECT DISTINCT a.entry_id FROM aliases a
		JOIN entries e ON e.id = a.entry_id
		WHERE ` + where + ` AND ` + cond + `
		ORDER BY a.entry_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("alias search: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// FindEntries returns one page of in-scope entries satisfying m and the total
// number of matches.
func (s *SQLiteStore) FindEntries(ctx context.Context, scope Scope, m EntryMatch, limit, offset int) ([]Entry, int, error) {
	if len(scope.GlossaryIDs) == 0 {
		return nil, 0, nil
	}

	where, args := scopeCondition(scope)
	match, matchArgs, err := compileMatch(m)
	if err != nil {
		return nil, 0, err
	}
	where += " AND " + match
	args = append(args, matchArgs...)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries e WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}
	if total == 0 || (limit > 0 && offset >= total) {
		return nil, total, nil
	}

	q := `SELECT ` + entryColumns + ` FROM entries e WHERE ` + where + `
		ORDER BY e.glossary_id, e.concept COLLATE NOCASE, e.id`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("entry search: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// compileMatch builds the disjunction described by EntryMatch.
func compileMatch(m EntryMatch) (string, []any, error) {
	concept, args, err := compile(m.Concept)
	if err != nil {
		return "", nil, fmt.Errorf("compile concept predicate: %w", err)
	}
	parts := []string{concept}

	if len(m.EntryIDs) > 0 {
		set, arg := idSet(m.EntryIDs)
		parts = append(parts, "e.id IN "+set)
		args = append(args, arg)
	}

	if m.FullText {
		def, defArgs, err := compile(m.Definition)
		if err != nil {
			return "", nil, fmt.Errorf("compile definition predicate: %w", err)
		}
		parts = append(parts, def)
		args = append(args, defArgs...)
	}

	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}
