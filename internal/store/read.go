// read.go implements catalogue lookups that do not involve matching.

package store

import (
	"context"
	"fmt"
)

// Course returns a course by id.
func (s *SQLiteStore) Course(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, short_name, full_name FROM courses WHERE id = ?`, id,
	).Scan(&c.ID, &c.ShortName, &c.FullName)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Courses lists every course.
func (s *SQLiteStore) Courses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, short_name, full_name FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.ShortName, &c.FullName); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Glossaries lists the glossaries of a course, hidden ones included.
func (s *SQLiteStore) Glossaries(ctx context.Context, courseID int64) ([]Glossary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, name, visible, display_format FROM glossaries
		WHERE course_id = ? ORDER BY id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Glossary
	for rows.Next() {
		g, err := scanGlossary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan glossary: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Entry returns an entry by id.
func (s *SQLiteStore) Entry(ctx context.Context, id int64) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries e WHERE e.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// Entries lists the entries a glossary owns.
func (s *SQLiteStore) Entries(ctx context.Context, glossaryID int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries e WHERE e.glossary_id = ? ORDER BY e.id`, glossaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Aliases returns the aliases of an entry.
func (s *SQLiteStore) Aliases(ctx context.Context, entryID int64) ([]Alias, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_id, alias FROM aliases WHERE entry_id = ? ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alias
	for rows.Next() {
		var a Alias
		if err := rows.Scan(&a.ID, &a.EntryID, &a.Alias); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
