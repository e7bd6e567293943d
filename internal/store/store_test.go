package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// setupStore creates a temporary SQLite store for testing.
// Returns the store and a cleanup function.
func setupStore(t *testing.T) (*store.SQLiteStore, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "glossd-store-test-*")
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

// eachStore runs fn against a SQLite store and a memory store so both
// implementations are held to the same behaviour.
func eachStore(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("sqlite", func(t *testing.T) {
		s, cleanup := setupStore(t)
		defer cleanup()
		fn(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, store.NewMemory())
	})
}

// seed writes a course with two glossaries:
//
//	10 Biology (visible): Cell, Cell wall, Category, Mitosis (alias "cell division"),
//	                      Pending (unapproved, author 7)
//	11 Drafts (hidden):   Cell membrane
func seed(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	err := s.Batch(ctx, func(w store.Writer) error {
		if err := w.PutCourse(ctx, &store.Course{ID: 1, ShortName: "BIO101", FullName: "Biology"}); err != nil {
			return err
		}
		for _, g := range []store.Glossary{
			{ID: 10, CourseID: 1, Name: "Biology", Visible: true},
			{ID: 11, CourseID: 1, Name: "Drafts"},
		} {
			if err := w.PutGlossary(ctx, &g); err != nil {
				return err
			}
		}
		for _, e := range []store.Entry{
			{ID: 100, GlossaryID: 10, Concept: "Cell", Definition: "The basic unit of life.", Approved: true},
			{ID: 101, GlossaryID: 10, Concept: "cell wall", Definition: "A rigid layer around plant cells.", Approved: true},
			{ID: 102, GlossaryID: 10, Concept: "Category", Definition: "A group.", Approved: true},
			{ID: 103, GlossaryID: 10, Concept: "Mitosis", Definition: "Division of the nucleus.", Approved: true},
			{ID: 104, GlossaryID: 10, Concept: "Pending cell", Definition: "Not yet approved.", UserID: 7},
			{ID: 110, GlossaryID: 11, Concept: "Cell membrane", Definition: "Encloses the cell.", Approved: true},
		} {
			if err := w.PutEntry(ctx, &e); err != nil {
				return err
			}
		}
		return w.PutAlias(ctx, &store.Alias{ID: 1, EntryID: 103, Alias: "cell division"})
	})
	require.NoError(t, err)
}

func match(raw string, fullText bool) store.EntryMatch {
	p := query.Build(query.Parse(raw))
	return store.EntryMatch{Concept: p.Concept, Definition: p.Definition, FullText: fullText}
}

func concepts(entries []store.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Concept
	}
	return out
}

func TestStore_CourseAndGlossaries(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()

		c, err := s.Course(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "BIO101", c.ShortName)

		_, err = s.Course(ctx, 99)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		gs, err := s.Glossaries(ctx, 1)
		require.NoError(t, err)
		require.Len(t, gs, 2)
		assert.Equal(t, "Biology", gs[0].Name)
		assert.False(t, gs[1].Visible)

		gs, err = s.Glossaries(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, gs)
	})
}

func TestStore_Entry(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()

		e, err := s.Entry(ctx, 104)
		require.NoError(t, err)
		assert.Equal(t, "Pending cell", e.Concept)
		assert.Equal(t, int64(10), e.GlossaryID)
		assert.False(t, e.Approved)
		assert.Equal(t, int64(7), e.UserID)

		_, err = s.Entry(ctx, 999)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		entries, err := s.Entries(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cell", "cell wall", "Category", "Mitosis", "Pending cell"}, concepts(entries))

		entries, err = s.Entries(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStore_FindEntries_Ordering(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		scope := store.Scope{GlossaryIDs: []int64{10, 11}}

		got, total, err := s.FindEntries(context.Background(), scope, match("cell", false), 100, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []string{"Cell", "cell wall", "Cell membrane"}, concepts(got))
	})
}

func TestStore_FindEntries_WholeWord(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()
		scope := store.Scope{GlossaryIDs: []int64{10}}

		got, _, err := s.FindEntries(ctx, scope, match("cat", false), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Category"}, concepts(got))

		got, total, err := s.FindEntries(ctx, scope, match("+cat", false), 0, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)

		got, _, err = s.FindEntries(ctx, scope, match("+cell -wall", false), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cell"}, concepts(got))
	})
}

func TestStore_FindEntries_FullText(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()
		scope := store.Scope{GlossaryIDs: []int64{10}}

		got, _, err := s.FindEntries(ctx, scope, match("nucleus", false), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, _, err = s.FindEntries(ctx, scope, match("nucleus", true), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mitosis"}, concepts(got))
	})
}

func TestStore_FindEntries_Visibility(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()

		anon, _, err := s.FindEntries(ctx, store.Scope{GlossaryIDs: []int64{10}}, match("pending", false), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, anon)

		other, _, err := s.FindEntries(ctx, store.Scope{GlossaryIDs: []int64{10}, UserID: 8}, match("pending", false), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, other)

		author, _, err := s.FindEntries(ctx, store.Scope{GlossaryIDs: []int64{10}, UserID: 7}, match("pending", false), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pending cell"}, concepts(author))
	})
}

func TestStore_FindEntries_EmptyScope(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		got, total, err := s.FindEntries(context.Background(), store.Scope{}, match("cell", true), 100, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)

		ids, err := s.AliasEntryIDs(context.Background(), store.Scope{}, query.Build(query.Parse("cell")).Alias)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestStore_AliasEntryIDs(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()
		scope := store.Scope{GlossaryIDs: []int64{10}}

		// A second matching alias on the same entry must not duplicate it.
		require.NoError(t, s.PutAlias(ctx, &store.Alias{ID: 2, EntryID: 103, Alias: "cell splitting"}))

		p := query.Build(query.Parse("+cell"))
		ids, err := s.AliasEntryIDs(ctx, scope, p.Alias)
		require.NoError(t, err)
		assert.Equal(t, []int64{103}, ids)

		m := store.EntryMatch{Concept: p.Concept, Definition: p.Definition, EntryIDs: ids}
		got, _, err := s.FindEntries(ctx, scope, m, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cell", "cell wall", "Mitosis"}, concepts(got))

		ids, err = s.AliasEntryIDs(ctx, store.Scope{GlossaryIDs: []int64{11}}, p.Alias)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestStore_FindEntries_Pagination(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.Batch(ctx, func(w store.Writer) error {
			if err := w.PutCourse(ctx, &store.Course{ID: 1}); err != nil {
				return err
			}
			if err := w.PutGlossary(ctx, &store.Glossary{ID: 1, CourseID: 1, Name: "G", Visible: true}); err != nil {
				return err
			}
			for i := 0; i < 150; i++ {
				e := store.Entry{ID: int64(1000 + i), GlossaryID: 1, Concept: fmt.Sprintf("term %03d", i), Approved: true}
				if err := w.PutEntry(ctx, &e); err != nil {
					return err
				}
			}
			return nil
		}))
		scope := store.Scope{GlossaryIDs: []int64{1}}

		first, total, err := s.FindEntries(ctx, scope, match("term", false), 100, 0)
		require.NoError(t, err)
		assert.Equal(t, 150, total)
		require.Len(t, first, 100)
		assert.Equal(t, "term 000", first[0].Concept)

		second, total, err := s.FindEntries(ctx, scope, match("term", false), 100, 100)
		require.NoError(t, err)
		assert.Equal(t, 150, total)
		require.Len(t, second, 50)
		assert.Equal(t, "term 100", second[0].Concept)
		assert.Equal(t, "term 149", second[49].Concept)

		past, total, err := s.FindEntries(ctx, scope, match("term", false), 100, 200)
		require.NoError(t, err)
		assert.Equal(t, 150, total)
		assert.Empty(t, past)
	})
}

func TestStore_FindEntries_ManyAliasMatches(t *testing.T) {
	// More alias-matched ids than SQLite allows bind variables.
	const n = 33000
	eachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.Batch(ctx, func(w store.Writer) error {
			if err := w.PutCourse(ctx, &store.Course{ID: 1}); err != nil {
				return err
			}
			if err := w.PutGlossary(ctx, &store.Glossary{ID: 1, CourseID: 1, Name: "G", Visible: true}); err != nil {
				return err
			}
			for i := range n {
				e := store.Entry{ID: int64(1 + i), GlossaryID: 1, Concept: fmt.Sprintf("term %05d", i), Approved: true}
				if err := w.PutEntry(ctx, &e); err != nil {
					return err
				}
				if err := w.PutAlias(ctx, &store.Alias{EntryID: e.ID, Alias: "syn"}); err != nil {
					return err
				}
			}
			return nil
		}))
		scope := store.Scope{GlossaryIDs: []int64{1}}
		p := query.Build(query.Parse("syn"))

		ids, err := s.AliasEntryIDs(ctx, scope, p.Alias)
		require.NoError(t, err)
		require.Len(t, ids, n)

		m := store.EntryMatch{Concept: p.Concept, Definition: p.Definition, EntryIDs: ids}
		page, total, err := s.FindEntries(ctx, scope, m, 100, 32900)
		require.NoError(t, err)
		assert.Equal(t, n, total)
		require.Len(t, page, 100)
		assert.Equal(t, "term 32900", page[0].Concept)
	})
}

func TestStore_SharedEntries(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()
		require.NoError(t, s.PutCourse(ctx, &store.Course{ID: 2}))
		require.NoError(t, s.PutGlossary(ctx, &store.Glossary{ID: 20, CourseID: 2, Name: "Other", Visible: true}))
		require.NoError(t, s.PutEntry(ctx, &store.Entry{
			ID: 200, GlossaryID: 20, SourceGlossaryID: 10, Concept: "Exported cell", Approved: true,
		}))

		got, _, err := s.FindEntries(ctx, store.Scope{GlossaryIDs: []int64{10}}, match("exported", false), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Exported cell"}, concepts(got))
	})
}

func TestStore_PutIsIdempotent(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		seed(t, s)
		ctx := context.Background()

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), st.Courses)
		assert.Equal(t, int64(2), st.Glossaries)
		assert.Equal(t, int64(1), st.Hidden)
		assert.Equal(t, int64(6), st.Entries)
		assert.Equal(t, int64(1), st.Pending)
		assert.Equal(t, int64(1), st.Aliases)
	})
}

func TestStore_PutAssignsID(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		c := &store.Course{ShortName: "NEW"}
		require.NoError(t, s.PutCourse(ctx, c))
		assert.NotZero(t, c.ID)

		got, err := s.Course(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "NEW", got.ShortName)
	})
}

func TestStore_BatchRollsBack(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		boom := errors.New("boom")
		err := s.Batch(ctx, func(w store.Writer) error {
			if err := w.PutCourse(ctx, &store.Course{ID: 5}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = s.Course(ctx, 5)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestStore_Grants(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.Grant(ctx, store.Grant{UserID: 3, Capability: store.CapViewHidden, GlossaryID: 11}))
		require.NoError(t, s.Grant(ctx, store.Grant{UserID: 3, Capability: store.CapViewHidden, GlossaryID: 11}))
		require.NoError(t, s.Grant(ctx, store.Grant{UserID: 4, Capability: store.CapView}))

		ok, err := s.HasGrant(ctx, 3, store.CapViewHidden, 11)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.HasGrant(ctx, 3, store.CapViewHidden, 12)
		require.NoError(t, err)
		assert.False(t, ok)

		// A grant on glossary 0 covers every glossary.
		ok, err = s.HasGrant(ctx, 4, store.CapView, 12)
		require.NoError(t, err)
		assert.True(t, ok)

		all, err := s.Grants(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		removed, err := s.Revoke(ctx, store.Grant{UserID: 3, Capability: store.CapViewHidden, GlossaryID: 11})
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = s.Revoke(ctx, store.Grant{UserID: 3, Capability: store.CapViewHidden, GlossaryID: 11})
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestOracle(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Grant(ctx, store.Grant{UserID: 2, Capability: store.CapView, GlossaryID: 10}))
	require.NoError(t, m.Grant(ctx, store.Grant{UserID: 2, Capability: store.CapViewHidden, GlossaryID: 10}))

	closed := store.Oracle{Source: m}
	ok, err := closed.CanViewContainer(ctx, 10, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = closed.CanViewContainer(ctx, 10, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	open := store.Oracle{Open: true, Source: m}
	ok, err = open.CanViewContainer(ctx, 10, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = open.CanViewHidden(ctx, 10, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = open.CanViewHidden(ctx, 10, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_InitIsRepeatable(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	require.NoError(t, s.Init())
	require.NoError(t, s.Checkpoint(context.Background()))
}

func TestStore_SetAliases(t *testing.T) {
	eachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s)
		ctx := context.Background()

		require.NoError(t, s.SetAliases(ctx, 103, []string{"karyokinesis", "nuclear division"}))
		require.NoError(t, s.SetAliases(ctx, 103, []string{"karyokinesis", "nuclear division"}))

		aliases, err := s.Aliases(ctx, 103)
		require.NoError(t, err)
		require.Len(t, aliases, 2)
		assert.Equal(t, "karyokinesis", aliases[0].Alias)

		ids, err := s.AliasEntryIDs(ctx, store.Scope{GlossaryIDs: []int64{10}}, query.Build(query.Parse("+cell")).Alias)
		require.NoError(t, err)
		assert.Empty(t, ids, "old aliases are gone")
	})
}
