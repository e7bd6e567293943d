// tools_init.go implements the MCP tool for initialising a new store.
//
// This tool works without an existing store, allowing LLMs to bootstrap
// a new glossd repository. Other tools require initialisation first.

package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
)

// initStore handles glossd_init tool calls.
func (h *handlers) initStore(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.svc != nil {
		return mcp.NewToolResultError("store already initialised"), nil
	}

	local := getBool(req, "local", false)

	err := glossary.Init(false, h.db, local, "")

	log.Event("mcp:init", "init").User("mcp", 0).Detail("local", local).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Open the newly created store
	svc, err := glossary.New(h.db)
	if err != nil {
		return mcp.NewToolResultError("init succeeded but failed to open store: " + err.Error()), nil
	}
	h.svc = svc

	slog.Info("store initialised", "local", local)

	if local {
		return mcp.NewToolResultText("store initialised (local - gitignored)"), nil
	}
	return mcp.NewToolResultText("store initialised"), nil
}
