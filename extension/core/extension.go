// Package core provides the core extension for glossd.
// It registers commands: init, config, serve, guide, vacuum, llm, db, version.
package core

import (
	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct{}

// Compile-time interface compliance.
var (
	_ extension.Extension = (*Extension)(nil)
	_ extension.Storeless = (*Extension)(nil)
)

// Name returns "core".
func (e *Extension) Name() string { return "core" }

// Commands returns the repository management commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newServeCmd(),
		newGuideCmd(),
		newVacuumCmd(),
		newLlmCmd(),
		newDBCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil. The server registers init, config and guide tools
// itself because they must work before a store exists.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns commands that manage their own service lifecycle.
// serve: Long-running MCP server needs its own service lifecycle.
// vacuum: Opens the database itself and refuses in-memory catalogues.
// db: Manages gitignore, doesn't need database connection.
// version: Displays build info, doesn't need database connection.
func (e *Extension) NoStoreCommands() []string {
	return []string{"serve", "vacuum", "db", "version"}
}
