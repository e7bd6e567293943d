// tools_util.go holds argument and result helpers shared by the tool handlers.
//
// Arguments are read leniently: a missing or mistyped optional argument
// yields its default, and required ones are checked by the handler.

package mcp

import (
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// arg returns the named argument when present with type T.
func arg[T any](req mcp.CallToolRequest, name string) (T, bool) {
	var zero T
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return zero, false
	}
	v, ok := args[name].(T)
	return v, ok
}

func getString(req mcp.CallToolRequest, name, def string) string {
	if v, ok := arg[string](req, name); ok {
		return v
	}
	return def
}

func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	if v, ok := arg[bool](req, name); ok {
		return v
	}
	return def
}

// getInt reads a JSON number. A course id sent as a string is treated as
// absent, so the handler reports it as missing.
func getInt(req mcp.CallToolRequest, name string, def int) int { //nolint:unparam
	if v, ok := getOptionalInt(req, name); ok {
		return v
	}
	return def
}

// getOptionalInt reports whether the argument was given, for parameters
// such as user where 0 (anonymous) is a meaningful value. Numbers beyond
// the int range saturate.
func getOptionalInt(req mcp.CallToolRequest, name string) (int, bool) {
	v, ok := arg[float64](req, name)
	switch {
	case !ok:
		return 0, false
	case v >= float64(math.MaxInt):
		return math.MaxInt, true
	case v <= float64(math.MinInt):
		return math.MinInt, true
	}
	return int(v), true
}

// jsonResult wraps v as indented JSON text. Encoding failures become tool
// errors.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := store.MarshalJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func coursesJSON(courses []store.Course) []store.CourseJSON {
	out := make([]store.CourseJSON, len(courses))
	for i := range courses {
		out[i] = courses[i].ToJSON()
	}
	return out
}

func glossariesJSON(gs []store.Glossary) []store.GlossaryJSON {
	out := make([]store.GlossaryJSON, len(gs))
	for i := range gs {
		out[i] = gs[i].ToJSON()
	}
	return out
}
