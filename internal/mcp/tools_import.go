// tools_import.go implements the MCP tool for importing catalogue files.
//
// Import reads a file from the server's filesystem. Dry-run mode lets an LLM
// validate a catalogue before committing it.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/internal/diff"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
)

// importCatalog handles glossd_import tool calls.
func (h *handlers) importCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}

	cat, err := importer.LoadFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var changes []diff.Change
	if getBool(req, "diff", false) {
		if changes, err = h.svc.Preview(ctx, cat); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	opts := importer.Options{
		DryRun: getBool(req, "dry_run", false),
		Source: path,
	}
	result, err := h.svc.Import(ctx, cat, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := map[string]any{
		"courses":    result.Courses,
		"glossaries": result.Glossaries,
		"entries":    result.Entries,
		"aliases":    result.Aliases,
		"grants":     result.Grants,
		"dry_run":    opts.DryRun,
		"persisted":  !h.inMemory,
	}
	if changes != nil {
		out["changes"] = changes
	}
	return jsonResult(out)
}
