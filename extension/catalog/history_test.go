package catalog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "glossd.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistory(t *testing.T) {
	s := openStore(t)
	h, err := OpenHistory(s.DB())
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { at = at.Add(time.Hour); return at }

	for _, src := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		_, err := h.Record(extension.ImportEvent{Source: src, Entries: 4})
		require.NoError(t, err)
	}

	ctx := context.Background()
	all, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.yaml", all[0].Source)
	assert.Equal(t, 4, all[0].Entries)
	assert.True(t, all[0].ImportedAt.After(all[1].ImportedAt))

	last, err := h.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	n, err := h.Prune(extension.Retention{Keep: 2}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, _ = h.List(ctx, 0)
	assert.Len(t, all, 3, "dry run deletes nothing")

	n, err = h.Prune(extension.Retention{Keep: 2}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, _ = h.List(ctx, 0)
	require.Len(t, all, 2)
	assert.Equal(t, "b.yaml", all[1].Source)

	n, err = h.Prune(extension.Retention{}, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistory_PruneOlderThan(t *testing.T) {
	s := openStore(t)
	h, err := OpenHistory(s.DB())
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return at }
	for i, src := range []string{"old.yaml", "older.yaml", "new.yaml"} {
		at = time.Date(2026, 3, 1+10*i, 9, 0, 0, 0, time.UTC)
		_, err := h.Record(extension.ImportEvent{Source: src})
		require.NoError(t, err)
	}
	// Now is 2026-03-31; "old" is 30 days old and "older" 20.
	at = time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)

	n, err := h.Prune(extension.Retention{OlderThan: 15 * 24 * time.Hour}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = h.Prune(extension.Retention{OlderThan: 25 * 24 * time.Hour}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := h.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "older.yaml", all[1].Source)

	// Either limit prunes.
	n, err = h.Prune(extension.Retention{Keep: 1, OlderThan: 25 * 24 * time.Hour}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpenHistory_Repeatable(t *testing.T) {
	s := openStore(t)
	_, err := OpenHistory(s.DB())
	require.NoError(t, err)
	_, err = OpenHistory(s.DB())
	assert.NoError(t, err)
}

func TestExtension_RecordsImports(t *testing.T) {
	s := openStore(t)
	cfg := &config.Config{}
	svc := glossary.NewWithStore(s, cfg)

	ext := &Extension{}
	extCtx := extension.NewContext(svc, s.DB(), cfg)
	require.NoError(t, ext.Init(extCtx))
	require.NotNil(t, ext.history)

	ev := extension.ImportEvent{Source: "moodle.yaml", Courses: 1, Entries: 2}
	require.NoError(t, ext.HandleEvent(extCtx, ev))
	require.NoError(t, ext.HandleEvent(extCtx, extension.GrantEvent{UserID: 3}))

	got, err := ext.history.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "moodle.yaml", got[0].Source)

	n, err := ext.Vacuum(extCtx, extension.Retention{Keep: 1}, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExtension_InMemory(t *testing.T) {
	cat := &importer.Catalog{Courses: []importer.CourseDoc{{ID: 1, ShortName: "A"}}}
	svc, err := glossary.NewWithCatalog(context.Background(), cat, &config.Config{})
	require.NoError(t, err)
	defer svc.Close()

	ext := &Extension{}
	extCtx := extension.NewContext(svc, nil, svc.Config())
	require.NoError(t, ext.Init(extCtx))
	assert.Nil(t, ext.history)

	// Events are ignored without a table to write to.
	assert.NoError(t, ext.HandleEvent(extCtx, extension.ImportEvent{Source: "x"}))

	n, err := ext.Vacuum(extCtx, extension.Retention{Keep: 1}, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMCPExport(t *testing.T) {
	cat := &importer.Catalog{Courses: []importer.CourseDoc{
		{ID: 1, ShortName: "A", Glossaries: []importer.GlossaryDoc{
			{ID: 10, Name: "Terms", Entries: []importer.EntryDoc{{ID: 100, Concept: "Cell"}}},
		}},
		{ID: 2, ShortName: "B"},
	}}
	svc, err := glossary.NewWithCatalog(context.Background(), cat, &config.Config{})
	require.NoError(t, err)
	defer svc.Close()

	ext := &Extension{}
	extCtx := extension.NewContext(svc, nil, svc.Config())

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"course": float64(1)}
	res, err := ext.mcpExport(context.Background(), extCtx, req)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got importer.Catalog
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &got))
	require.Len(t, got.Courses, 1)
	assert.Equal(t, "Cell", got.Courses[0].Glossaries[0].Entries[0].Concept)

	req.Params.Arguments = map[string]any{"course": float64(9)}
	res, err = ext.mcpExport(context.Background(), extCtx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
