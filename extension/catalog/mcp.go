// mcp.go exposes import history, grants and catalogue export to MCP clients.

package catalog

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/exporter"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// MCPTools returns the glossd_imports, glossd_grants and glossd_export tools.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{
		{
			Tool: mcp.NewTool("glossd_imports",
				mcp.WithDescription("List committed catalogue imports, newest first"),
				mcp.WithNumber("limit", mcp.Description("Number of imports to return (default 20, 0 for all)")),
			),
			Handler: e.mcpImports,
		},
		{
			Tool: mcp.NewTool("glossd_grants",
				mcp.WithDescription("List capability grants"),
				mcp.WithNumber("user", mcp.Description("Only this user's grants (default: everybody)")),
			),
			Handler: e.mcpGrants,
		},
		{
			Tool: mcp.NewTool("glossd_export",
				mcp.WithDescription("Return the catalogue in the JSON form glossd_import reads"),
				mcp.WithNumber("course", mcp.Description("Only this course and its grants (default: every course)")),
			),
			Handler: e.mcpExport,
		},
	}
}

func (e *Extension) mcpImports(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if extCtx.DB() == nil {
		return mcp.NewToolResultError(ErrNoHistory.Error()), nil
	}
	h, err := OpenHistory(extCtx.DB())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 20
	if v, ok := number(req, "limit"); ok {
		limit = int(v)
	}
	imports, err := h.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if imports == nil {
		imports = []Import{}
	}
	return jsonResult(imports)
}

func (e *Extension) mcpGrants(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var user int64
	if v, ok := number(req, "user"); ok {
		user = int64(v)
	}
	grants, err := extCtx.Service().Grants(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]store.GrantJSON, len(grants))
	for i, g := range grants {
		out[i] = g.ToJSON()
	}
	return jsonResult(out)
}

func (e *Extension) mcpExport(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var opts exporter.Options
	if v, ok := number(req, "course"); ok {
		opts.CourseID = int64(v)
	}
	cat, _, err := extCtx.Service().Export(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cat)
}

func number(req mcp.CallToolRequest, name string) (float64, bool) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := args[name].(float64)
	return v, ok
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := store.MarshalJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
