// write.go implements catalogue writes.
//
// Every Put is an upsert keyed by id so re-running an import leaves the
// catalogue unchanged. The same sqlWriter runs against the connection or a
// transaction (see Batch).

package store

import (
	"context"
	"fmt"
)

// sqlWriter performs writes through an execer.
type sqlWriter struct {
	ex execer
}

var _ Writer = sqlWriter{}

func (s *SQLiteStore) PutCourse(ctx context.Context, c *Course) error {
	return s.w.PutCourse(ctx, c)
}

func (s *SQLiteStore) PutGlossary(ctx context.Context, g *Glossary) error {
	return s.w.PutGlossary(ctx, g)
}

func (s *SQLiteStore) PutEntry(ctx context.Context, e *Entry) error {
	return s.w.PutEntry(ctx, e)
}

func (s *SQLiteStore) PutAlias(ctx context.Context, a *Alias) error {
	return s.w.PutAlias(ctx, a)
}

func (s *SQLiteStore) SetAliases(ctx context.Context, entryID int64, aliases []string) error {
	return s.Batch(ctx, func(w Writer) error {
		return w.SetAliases(ctx, entryID, aliases)
	})
}

func (s *SQLiteStore) Grant(ctx context.Context, g Grant) error {
	return s.w.Grant(ctx, g)
}

func (s *SQLiteStore) Revoke(ctx context.Context, g Grant) (bool, error) {
	return s.w.Revoke(ctx, g)
}

// upsert runs q with *id bound to the first placeholder. A zero id binds
// NULL so SQLite assigns one, which is written back into *id.
func (w sqlWriter) upsert(ctx context.Context, id *int64, q string, args ...any) error {
	var idArg any
	if *id != 0 {
		idArg = *id
	}
	res, err := w.ex.ExecContext(ctx, q, append([]any{idArg}, args...)...)
	if err != nil {
		return err
	}
	if *id == 0 {
		n, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		*id = n
	}
	return nil
}

func (w sqlWriter) PutCourse(ctx context.Context, c *Course) error {
	err := w.upsert(ctx, &c.ID,
		`INSERT INTO courses (id, short_name, full_name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET short_name = excluded.short_name, full_name = excluded.full_name`,
		c.ShortName, c.FullName)
	if err != nil {
		return fmt.Errorf("put course: %w", err)
	}
	return nil
}

func (w sqlWriter) PutGlossary(ctx context.Context, g *Glossary) error {
	err := w.upsert(ctx, &g.ID,
		`INSERT INTO glossaries (id, course_id, name, visible, display_format) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET course_id = excluded.course_id, name = excluded.name,
			visible = excluded.visible, display_format = excluded.display_format`,
		g.CourseID, g.Name, g.Visible, g.DisplayFormat)
	if err != nil {
		return fmt.Errorf("put glossary %q: %w", g.Name, err)
	}
	return nil
}

func (w sqlWriter) PutEntry(ctx context.Context, e *Entry) error {
	err := w.upsert(ctx, &e.ID,
		`INSERT INTO entries (id, glossary_id, source_glossary_id, concept, definition, approved, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET glossary_id = excluded.glossary_id,
			source_glossary_id = excluded.source_glossary_id, concept = excluded.concept,
			definition = excluded.definition, approved = excluded.approved, user_id = excluded.user_id`,
		e.GlossaryID, e.SourceGlossaryID, e.Concept, e.Definition, e.Approved, e.UserID)
	if err != nil {
		return fmt.Errorf("put entry %q: %w", e.Concept, err)
	}
	return nil
}

func (w sqlWriter) PutAlias(ctx context.Context, a *Alias) error {
	err := w.upsert(ctx, &a.ID,
		`INSERT INTO aliases (id, entry_id, alias) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET entry_id = excluded.entry_id, alias = excluded.alias`,
		a.EntryID, a.Alias)
	if err != nil {
		return fmt.Errorf("put alias %q: %w", a.Alias, err)
	}
	return nil
}

func (w sqlWriter) SetAliases(ctx context.Context, entryID int64, aliases []string) error {
	if _, err := w.ex.ExecContext(ctx, `DELETE FROM aliases WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("clear aliases of entry %d: %w", entryID, err)
	}
	for _, alias := range aliases {
		a := Alias{EntryID: entryID, Alias: alias}
		if err := w.PutAlias(ctx, &a); err != nil {
			return err
		}
	}
	return nil
}
