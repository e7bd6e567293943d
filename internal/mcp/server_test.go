package mcp

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogue = `
courses:
  - id: 1
    short_name: BIO101
    glossaries:
      - id: 10
        name: Biology
        entries:
          - {id: 100, concept: Cell, definition: The basic unit of life.}
          - {id: 101, concept: Category, definition: A group.}
  - id: 2
    short_name: EMPTY
`

// setupHandlers serves catalogue from memory.
func setupHandlers(t *testing.T) *handlers {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogue), 0o644))

	h, err := open(context.Background(), Options{Catalog: path})
	require.NoError(t, err)
	t.Cleanup(func() { h.svc.Close() })
	return h
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestSearchTool(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	res, err := h.searchGlossaries(ctx, call(map[string]any{"query": "+cell", "course": float64(1)}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var got struct {
		Total int `json:"total"`
		Items []struct {
			Concept  string `json:"concept"`
			Glossary string `json:"glossary"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Cell", got.Items[0].Concept)
	assert.Equal(t, "Biology", got.Items[0].Glossary)
}

func TestSearchTool_Errors(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing query", map[string]any{"course": float64(1)}, "query is required"},
		{"missing course", map[string]any{"query": "cell"}, "course is required"},
		{"unknown course", map[string]any{"query": "cell", "course": float64(9)}, "invalid course id"},
		{"no glossaries", map[string]any{"query": "cell", "course": float64(2)}, "there are no glossaries"},
		{"negative user", map[string]any{"query": "cell", "course": float64(1), "user": float64(-3)}, "user ids are not negative"},
		{"negative page", map[string]any{"query": "cell", "course": float64(1), "page": float64(-1)}, "page must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.searchGlossaries(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestHighlightTool(t *testing.T) {
	h := &handlers{}
	res, err := h.highlightTerms(context.Background(), call(map[string]any{"query": "+cell -wall a"}))
	require.NoError(t, err)

	var terms []string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &terms))
	assert.Equal(t, []string{"cell"}, terms)

	res, err = h.highlightTerms(context.Background(), call(map[string]any{"query": "-wall"}))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", text(t, res))
}

func TestGlossariesTool(t *testing.T) {
	h := setupHandlers(t)

	res, err := h.listGlossaries(context.Background(), call(map[string]any{"course": float64(1)}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"name": "Biology"`)

	res, err = h.listCourses(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"short_name": "EMPTY"`)
}

func TestImportTool_Diff(t *testing.T) {
	h := setupHandlers(t)
	path := filepath.Join(t.TempDir(), "changed.yaml")
	changed := strings.Replace(catalogue, "A group.", "A class of things.", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	res, err := h.importCatalog(context.Background(), call(map[string]any{"path": path, "dry_run": true, "diff": true}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var got struct {
		DryRun    bool `json:"dry_run"`
		Persisted bool `json:"persisted"`
		Changes   []struct {
			Kind    string `json:"kind"`
			EntryID int64  `json:"entry_id"`
			Diff    string `json:"diff"`
		} `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.True(t, got.DryRun)
	assert.False(t, got.Persisted)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, int64(101), got.Changes[0].EntryID)
	assert.Contains(t, got.Changes[0].Diff, "+   A class of things.")
}

func TestUninitialised(t *testing.T) {
	h := &handlers{}
	res, err := h.searchGlossaries(context.Background(), call(map[string]any{"query": "cell", "course": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, ErrNotInitialised, text(t, res))
}

func TestParseCourseURI(t *testing.T) {
	id, err := parseCourseURI("glossd://courses/12/glossaries")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"glossd://courses/x/glossaries", "glossd://courses/0/glossaries", "file:///courses/1/glossaries"} {
		_, err := parseCourseURI(bad)
		assert.ErrorIs(t, err, ErrInvalidURI, bad)
	}
}

func TestNewServer(t *testing.T) {
	h := setupHandlers(t)
	assert.NotNil(t, NewServer(h))
}

func TestArgs(t *testing.T) {
	req := call(map[string]any{"course": float64(3), "user": float64(0), "topic": "search", "diff": "true"})

	assert.Equal(t, 3, getInt(req, "course", 0))
	assert.Equal(t, 7, getInt(req, "page", 7))
	assert.Equal(t, "search", getString(req, "topic", ""))
	assert.False(t, getBool(req, "diff", false), "string is not a bool")

	user, ok := getOptionalInt(req, "user")
	assert.True(t, ok)
	assert.Equal(t, 0, user)
	_, ok = getOptionalInt(req, "missing")
	assert.False(t, ok)

	assert.Equal(t, "x", getString(call(nil), "topic", "x"))

	huge := call(map[string]any{"page": 1e300, "low": -1e300})
	assert.Equal(t, math.MaxInt, getInt(huge, "page", 0))
	assert.Equal(t, math.MinInt, getInt(huge, "low", 0))
}

func TestSearchTool_HugePage(t *testing.T) {
	h := setupHandlers(t)
	res, err := h.searchGlossaries(context.Background(), call(map[string]any{"query": "cell", "course": float64(1), "page": 1e300}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var got struct {
		Total int               `json:"total"`
		Items []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, 1, got.Total)
	assert.Empty(t, got.Items)
}
