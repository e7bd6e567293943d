// Package extension provides the plugin architecture for glossd. Extensions
// encapsulate related functionality (commands, MCP tools) and register at
// init time, enabling modular feature development without touching core code.
package extension

import (
	"time"

	"github.com/spf13/cobra"
)

// Extension defines the contract for glossd extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions can perform setup (migrations, etc).
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Storeless is an optional interface for extensions with commands that
// don't require a store. Commands returned by NoStoreCommands() will
// not trigger store initialisation in PersistentPreRunE.
//
// Use cases:
// 1. Bootstrap commands (like init) that run before store exists
// 2. Commands that manage their own service lifecycle
// 3. Utility commands that don't read the catalogue
type Storeless interface {
	NoStoreCommands() []string
}

// Retention limits how much extension history "glossd vacuum" keeps. A row
// is pruned when it breaks either limit. The zero value prunes nothing.
type Retention struct {
	Keep      int           // most recent rows to keep, 0 for no limit
	OlderThan time.Duration // prune rows older than this, 0 for no limit
}

// Zero reports whether r prunes nothing.
func (r Retention) Zero() bool { return r.Keep <= 0 && r.OlderThan <= 0 }

// Vacuumable extensions prune their custom tables when "glossd vacuum" runs.
// A dry run reports what would be pruned. Returns the rows affected.
type Vacuumable interface {
	Vacuum(ctx Context, r Retention, dryRun bool) (int64, error)
}
