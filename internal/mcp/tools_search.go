// tools_search.go implements MCP tools for glossary search and browsing.
//
// Results are returned as JSON for easy LLM parsing. A course without
// glossaries is reported as a tool error carrying the same notice the CLI
// prints.

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
)

// searchGlossaries handles glossd_search tool calls.
func (h *handlers) searchGlossaries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}
	course := getInt(req, "course", 0)
	if course <= 0 {
		return mcp.NewToolResultError("course is required"), nil
	}

	page := getInt(req, "page", 0)
	if page < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("page must not be negative, got %d", page)), nil
	}

	sr := service.SearchRequest{
		Query:    q,
		CourseID: int64(course),
		Page:     page,
	}
	if user, ok := getOptionalInt(req, "user"); ok {
		if user < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid user %d: user ids are not negative", user)), nil
		}
		id := int64(user)
		sr.UserID = &id
	}

	l, err := h.svc.Search(ctx, sr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(l.ToJSON())
}

// highlightTerms handles glossd_highlight tool calls. It needs no store.
func (h *handlers) highlightTerms(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}
	terms := query.HighlightTerms(q)
	if terms == nil {
		terms = []string{}
	}
	return jsonResult(terms)
}

// listCourses handles glossd_courses tool calls.
func (h *handlers) listCourses(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}
	courses, err := h.svc.Courses(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(coursesJSON(courses))
}

// listGlossaries handles glossd_glossaries tool calls.
func (h *handlers) listGlossaries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}
	course := getInt(req, "course", 0)
	if course <= 0 {
		return mcp.NewToolResultError("course is required"), nil
	}
	gs, err := h.svc.Glossaries(ctx, int64(course))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(glossariesJSON(gs))
}

// stats handles glossd_stats tool calls.
func (h *handlers) stats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}
	st, err := h.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}
