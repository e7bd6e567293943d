// Package catalog provides the catalogue management extension for glossd.
// It registers commands: import, imports, courses, glossaries, stats,
// grant, revoke, grants.
//
// Committed imports are recorded in the extension's own import_history
// table, which "glossd vacuum --keep N" prunes.
package catalog

import (
	"database/sql"
	"embed"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

//go:embed sql/*.sql
var schemas embed.FS

func init() {
	extension.Register(&Extension{})
}

// Extension implements the catalog extension.
type Extension struct {
	svc     service.Service
	history *History // nil for a catalogue held in memory
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.EventHandler  = (*Extension)(nil)
	_ extension.Vacuumable    = (*Extension)(nil)
)

// Name returns "catalog".
func (e *Extension) Name() string { return "catalog" }

// Init receives the shared service and creates the history table when a
// database is open.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	e.history = nil
	if ctx.DB() == nil {
		return nil
	}
	h, err := OpenHistory(ctx.DB())
	if err != nil {
		return err
	}
	e.history = h
	return nil
}

// Commands returns the catalogue commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newImportCmd(),
		e.newImportsCmd(),
		e.newExportCmd(),
		e.newCoursesCmd(),
		e.newGlossariesCmd(),
		e.newStatsCmd(),
		e.newGrantCmd(),
		e.newRevokeCmd(),
		e.newGrantsCmd(),
	}
}

// HandleEvent records committed imports. Grant changes are already in the
// audit log and need nothing more.
func (e *Extension) HandleEvent(_ extension.Context, evt extension.Event) error {
	ev, ok := evt.(extension.ImportEvent)
	if !ok || e.history == nil {
		return nil
	}
	id, err := e.history.Record(ev)
	log.Event("catalog:history", "record").
		Total(ev.Entries).
		Detail("source", ev.Source).
		Detail("id", id).
		Write(err)
	return err
}

// Vacuum prunes import history to what r retains.
func (e *Extension) Vacuum(ctx extension.Context, r extension.Retention, dryRun bool) (int64, error) {
	h := e.history
	if h == nil {
		if ctx.DB() == nil {
			return 0, nil
		}
		var err error
		if h, err = OpenHistory(ctx.DB()); err != nil {
			return 0, err
		}
	}
	return h.Prune(r, dryRun)
}

// OpenHistory creates the history table if needed and returns a History
// over db.
func OpenHistory(db *sql.DB) (*History, error) {
	if err := store.ExecEmbedded(db, schemas, "sql"); err != nil {
		return nil, err
	}
	return &History{db: db}, nil
}
