// Package glossary provides the glossary Service backed by a Store. It
// wires the catalogue, the configuration and the permission oracle into a
// search resolver and presenter, and records every operation in the audit
// log.
package glossary

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/repo"
	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// Compile-time interface compliance.
var _ service.Service = (*Service)(nil)

// Service provides glossary operations backed by a Store.
type Service struct {
	store     store.Store
	db        *sql.DB // nil for a catalogue loaded from a file
	dir       string
	path      string // database file, empty in memory
	cfg       *config.Config
	resolver  *search.Resolver
	presenter *search.Presenter
	extCtx    extension.Context // for firing events to extensions
}

// New creates a new Service, discovering the DB by walking up the directory tree.
// The db parameter specifies which database to use (empty for default).
// Returns repo.ErrNotInitialised if no matching database is found.
func New(db string) (*Service, error) {
	dbPath, err := repo.Discover(db)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err // config.Load provides detailed, actionable error messages
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	// Databases created by an older build may lack newer tables.
	if err := s.Init(); err != nil {
		s.Close()
		return nil, err
	}

	svc := newService(s, cfg)
	svc.db = s.DB()
	svc.dir = filepath.Dir(dbPath)
	svc.path = dbPath
	return svc, nil
}

// OpenCatalog loads a catalogue file into memory and returns a Service over
// it. Nothing is written to disk; imports and grants last until Close.
func OpenCatalog(ctx context.Context, path string) (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cat, err := importer.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewWithCatalog(ctx, cat, cfg)
}

// NewWithCatalog returns a Service over an in-memory store holding cat.
func NewWithCatalog(ctx context.Context, cat *importer.Catalog, cfg *config.Config) (*Service, error) {
	m := store.NewMemory()
	if _, err := importer.RunWith(ctx, m, cat, importer.Options{}, quietProgress()); err != nil {
		return nil, err
	}
	return newService(m, cfg), nil
}

// NewWithStore returns a Service over s. Used by tests and by callers that
// manage the store themselves.
func NewWithStore(s store.Store, cfg *config.Config) *Service {
	return newService(s, cfg)
}

func newService(s store.Store, cfg *config.Config) *Service {
	sc := SearchConfig(cfg)
	oracle := store.Oracle{Open: cfg.OpenAccess(), Source: s}
	return &Service{
		store:     s,
		cfg:       cfg,
		resolver:  search.NewResolver(s, oracle, sc),
		presenter: search.NewPresenter(sc),
	}
}

// SearchConfig maps the user configuration onto search settings.
func SearchConfig(cfg *config.Config) search.Config {
	return search.Config{
		FullText:        cfg.FullText(),
		KeepEmptyTokens: cfg.KeepEmptyTokens(),
		Format:          cfg.Format(),
	}
}

// Init initialises a new glossd repository.
// If dir is empty, uses current directory; otherwise uses dir.
// The db parameter specifies which database to create (empty for default).
// If local is true, the database is added to .gitignore (not committed).
func Init(force bool, db string, local bool, dir string) error {
	return repo.Init(force, db, local, dir)
}

// Close checkpoints the WAL and closes the store.
func (s *Service) Close() error {
	if err := s.store.Checkpoint(context.Background()); err != nil {
		log.Event("service:close", "checkpoint").
			Detail("error", err.Error()).
			Write(err)
	}
	return s.store.Close()
}

// ReloadConfig reloads configuration from disk and rebuilds the resolver.
// Call this after modifying config to ensure the service uses new settings.
func (s *Service) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fresh := newService(s.store, cfg)
	s.cfg, s.resolver, s.presenter = fresh.cfg, fresh.resolver, fresh.presenter
	return nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// SetExtensionContext sets the extension context for firing events.
// Called from cmd after creating the context.
func (s *Service) SetExtensionContext(ctx extension.Context) {
	s.extCtx = ctx
}

// fireEvent notifies all registered extension event handlers. Handler
// errors are logged, never returned: events cannot veto an operation.
func (s *Service) fireEvent(e extension.Event) {
	if s.extCtx == nil {
		return
	}
	for _, ext := range extension.All() {
		if h, ok := ext.(extension.EventHandler); ok {
			if err := h.HandleEvent(s.extCtx, e); err != nil {
				log.Event("event:error", "error").
					Detail("ext", ext.Name()).
					Detail("event", string(e.EventType())).
					Write(err)
			}
		}
	}
}

// DB returns the underlying database connection for extensions.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Dir returns the .glossd directory holding the database.
func (s *Service) Dir() string {
	return s.dir
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}
