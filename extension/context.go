// context.go defines what an extension can reach once initialised: the
// glossary service, the raw database for extension tables and the config.

package extension

import (
	"database/sql"

	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
)

// Context provides extensions controlled access to glossd internals.
// Extensions receive this during initialisation to access shared resources.
type Context interface {
	// Service returns the glossary service for search and catalogue
	// operations.
	Service() service.Service

	// DB exposes the database for extensions needing custom tables.
	// Extensions should create their own tables, not modify core tables.
	// It is nil when the catalogue was loaded from a file into memory.
	DB() *sql.DB

	// Config returns user configuration for respecting user preferences.
	Config() *config.Config
}

// extContext implements Context.
type extContext struct {
	svc service.Service
	db  *sql.DB
	cfg *config.Config
}

// NewContext creates a new extension context.
func NewContext(svc service.Service, db *sql.DB, cfg *config.Config) Context {
	return &extContext{
		svc: svc,
		db:  db,
		cfg: cfg,
	}
}

// Service returns the glossary service.
func (c *extContext) Service() service.Service {
	return c.svc
}

// DB returns the raw database connection for extensions needing custom tables.
func (c *extContext) DB() *sql.DB {
	return c.db
}

// Config returns the loaded user configuration for respecting preferences.
func (c *extContext) Config() *config.Config {
	return c.cfg
}
