// resources.go implements MCP resource handlers for catalogue browsing.
//
// Resources give read-only access by URI, so a client can load the course
// list or a course's glossaries as context without calling a tool.
// URIs follow glossd://courses and glossd://courses/{id}/glossaries.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

var (
	// ErrInvalidURI indicates a malformed resource URI, helping clients
	// debug URI construction issues.
	ErrInvalidURI = errors.New("invalid URI")
)

// readCourses handles glossd://courses resource requests.
func (h *handlers) readCourses(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}
	courses, err := h.svc.Courses(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, coursesJSON(courses))
}

// readGlossaries handles glossd://courses/{id}/glossaries resource requests.
func (h *handlers) readGlossaries(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}
	id, err := parseCourseURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	gs, err := h.svc.Glossaries(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, glossariesJSON(gs))
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := store.MarshalJSON(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// parseCourseURI extracts the course id from glossd://courses/{id}/glossaries.
func parseCourseURI(uri string) (int64, error) {
	const prefix, suffix = "glossd://courses/", "/glossaries"
	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid course id %q", ErrInvalidURI, raw)
	}
	return id, nil
}
