package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
)

// Import is one recorded import.
type Import struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	Courses    int       `json:"courses"`
	Glossaries int       `json:"glossaries"`
	Entries    int       `json:"entries"`
	Aliases    int       `json:"aliases"`
	Grants     int       `json:"grants"`
	ImportedAt time.Time `json:"imported_at"`
}

// History reads and writes the import_history table.
type History struct {
	db  *sql.DB
	now func() time.Time
}

func (h *History) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// Record stores an import and returns its id.
func (h *History) Record(ev extension.ImportEvent) (int64, error) {
	res, err := h.db.Exec(`INSERT INTO import_history
		(source, courses, glossaries, entries, aliases, grants, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Source, ev.Courses, ev.Glossaries, ev.Entries, ev.Aliases, ev.Grants, h.clock().Unix())
	if err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit imports, newest first. A limit of 0 returns all.
func (h *History) List(ctx context.Context, limit int) ([]Import, error) {
	q := `SELECT id, source, courses, glossaries, entries, aliases, grants, imported_at
		FROM import_history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var im Import
		var at int64
		if err := rows.Scan(&im.ID, &im.Source, &im.Courses, &im.Glossaries,
			&im.Entries, &im.Aliases, &im.Grants, &at); err != nil {
			return nil, err
		}
		im.ImportedAt = time.Unix(at, 0)
		out = append(out, im)
	}
	return out, rows.Err()
}

// Prune deletes the imports r does not retain. A dry run counts the rows
// that would go.
func (h *History) Prune(r extension.Retention, dryRun bool) (int64, error) {
	if r.Zero() {
		return 0, nil
	}
	var conds []string
	var args []any
	if r.Keep > 0 {
		conds = append(conds, `id NOT IN (SELECT id FROM import_history ORDER BY id DESC LIMIT ?)`)
		args = append(args, r.Keep)
	}
	if r.OlderThan > 0 {
		conds = append(conds, `imported_at < ?`)
		args = append(args, h.clock().Add(-r.OlderThan).Unix())
	}
	where := ` FROM import_history WHERE ` + strings.Join(conds, ` OR `)

	if dryRun {
		var n int64
		if err := h.db.QueryRow(`SELECT COUNT(*)`+where, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count imports: %w", err)
		}
		return n, nil
	}
	res, err := h.db.Exec(`DELETE`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("prune imports: %w", err)
	}
	return res.RowsAffected()
}
