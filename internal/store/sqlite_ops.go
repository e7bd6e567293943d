// sqlite_ops.go provides SQLite connection management and low-level operations.
//
// Kept apart from the catalogue queries so pragmas, transactions and row
// scanning live in one place. Search functions registered with the driver
// are in functions.go.
//
// WAL mode lets the MCP server answer searches while an import writes.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
	w  sqlWriter
}

var _ Store = (*SQLiteStore)(nil)

// Open opens the SQLite database file at path. The caller should call Close
// on the returned store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// WAL keeps readers unblocked during imports.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// NORMAL is safe against corruption under WAL.
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	return &SQLiteStore{db: db, w: sqlWriter{ex: db}}, nil
}

// Init creates tables and indexes if they don't exist. Safe to call multiple
// times.
func (s *SQLiteStore) Init() error {
	return execSchema(s.db)
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for extensions that need custom tables.
// Extensions should not modify core tables directly.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx so writes can run inside
// or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const entryColumns = `e.id, e.glossary_id, e.source_glossary_id, e.concept, e.definition, e.approved, e.user_id`

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	err := sc.Scan(&e.ID, &e.GlossaryID, &e.SourceGlossaryID, &e.Concept, &e.Definition, &e.Approved, &e.UserID)
	return e, err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanGlossary(sc scanner) (Glossary, error) {
	var g Glossary
	err := sc.Scan(&g.ID, &g.CourseID, &g.Name, &g.Visible, &g.DisplayFormat)
	return g, err
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// notFound converts sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Tx executes fn within a database transaction, handling Begin/Commit/Rollback
// automatically. If fn returns an error the transaction is rolled back.
//
//	err := s.Tx(ctx, func(tx *sql.Tx) error {
//	    if _, err := tx.ExecContext(ctx, `UPDATE ...`); err != nil {
//	        return err  // triggers rollback
//	    }
//	    return nil  // triggers commit
//	})
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Batch runs fn with a Writer bound to one transaction.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(w Writer) error) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		return fn(sqlWriter{ex: tx})
	})
}
