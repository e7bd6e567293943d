// Package log provides centralised audit logging for glossd operations.
// Logs are stored in ~/.glossd/log/glossd-log.db and record every CLI
// command and MCP tool invocation across projects.
//
// # Fluent API
//
//	log.Event("search:search", "search").
//		User(cmd.LogUser()).
//		Course(courseID).
//		Query(q).
//		Total(page.Total).
//		Write(err)
//
//	log.Event("catalog:import", "import").
//		User(cmd.LogUser()).
//		Detail("file", path).
//		Detail("entries", n).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "mcp:{tool}" for MCP tools.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g. "search:search", "mcp:glossd_search"
	User   string // display name of who performed the action
	UserID int64
	Action string // verb: search, import, grant, ...

	Course int64  // course searched or modified
	Query  string // search query as submitted
	Total  int    // matches across all pages

	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool
	Error   string
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write].
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// User sets who performed the operation. MCP tools pass "mcp" as the name.
func (b *Builder) User(name string, id int64) *Builder {
	b.entry.User = name
	b.entry.UserID = id
	return b
}

// Course sets the course the operation concerns.
func (b *Builder) Course(id int64) *Builder {
	b.entry.Course = id
	return b
}

// Query sets the search query.
func (b *Builder) Query(q string) *Builder {
	b.entry.Query = q
	return b
}

// Total sets the number of matches a search produced (output).
func (b *Builder) Total(n int) *Builder {
	b.entry.Total = n
	return b
}

// Detail adds a key-value pair to the entry's detail map. Use for
// operation-specific data that doesn't fit the standard fields.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry, deriving success/failure from err.
//
//	page, err := svc.Search(ctx, req)
//	log.Event("search:search", "search").Course(req.CourseID).Write(err)
//	if err != nil {
//		return err
//	}
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute path to the .glossd directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
