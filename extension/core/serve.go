// serve.go implements "glossd serve", an MCP server on stdio. It owns its
// service so it can start before a store exists and let the client call
// glossd_init.

package core

import (
	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Use --db to serve a specific database:
  glossd serve --db archive    # serve glossd-archive.db

Use --catalog to serve a catalogue file from memory:
  glossd serve --catalog moodle-export.yaml`,
		RunE: runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	return mcp.Serve(mcp.Options{DB: cmd.DB(), Catalog: cmd.Catalog()})
}
