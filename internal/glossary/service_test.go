package glossary_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
	"github.com/stronk7/moodle-block-search-glossaries/internal/diff"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/repo"
	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
	"github.com/stronk7/moodle-block-search-glossaries/internal/validate"
)

const catalogue = `
courses:
  - id: 1
    short_name: BIO101
    glossaries:
      - id: 10
        name: Biology
        entries:
          - {id: 100, concept: Cell, definition: The basic unit of life., aliases: [cellula]}
          - {id: 101, concept: Cell wall, definition: A rigid layer around plant cells.}
          - {id: 102, concept: Category, definition: A group.}
          - {id: 103, concept: Draft cell, approved: false, user_id: 7}
      - id: 11
        name: Staff
        visible: false
        entries:
          - {id: 110, concept: Cell culture, definition: Grown in a lab.}
  - id: 2
    short_name: EMPTY
grants:
  - {user_id: 2, capability: moodle/course:viewhiddenactivities}
`

func loadCatalog(t *testing.T) *importer.Catalog {
	t.Helper()
	cat, err := importer.Load(strings.NewReader(catalogue))
	require.NoError(t, err)
	return cat
}

// setupService returns a service over an in-memory copy of catalogue.
func setupService(t *testing.T, cfg *config.Config) service.Service {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	svc, err := glossary.NewWithCatalog(context.Background(), loadCatalog(t), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func user(id int64) *int64 { return &id }

func concepts(l search.Listing) []string {
	out := make([]string, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Entry.Concept
	}
	return out
}

func TestService_Search(t *testing.T) {
	svc := setupService(t, nil)
	ctx := context.Background()

	l, err := svc.Search(ctx, service.SearchRequest{Query: "  <b>+cell</b> -wall ", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, "+cell -wall", l.Query)
	assert.Equal(t, []string{"Cell"}, concepts(l))
	assert.Equal(t, []string{"cell"}, l.Highlights)
	assert.Equal(t, 1, l.First)
	assert.Equal(t, 1, l.Last)
	assert.Equal(t, "dictionary", l.Items[0].Format)
}

func TestService_Search_Aliases(t *testing.T) {
	svc := setupService(t, nil)

	l, err := svc.Search(context.Background(), service.SearchRequest{Query: "cellula", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cell"}, concepts(l))
}

func TestService_Search_Users(t *testing.T) {
	svc := setupService(t, &config.Config{User: config.User{ID: user(7)}})
	ctx := context.Background()

	// Configured user 7 sees their own unapproved entry.
	l, err := svc.Search(ctx, service.SearchRequest{Query: "draft", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft cell"}, concepts(l))

	// An explicit anonymous request does not.
	l, err = svc.Search(ctx, service.SearchRequest{Query: "draft", CourseID: 1, UserID: user(0)})
	require.NoError(t, err)
	assert.True(t, l.Empty())

	// User 2 may see the hidden glossary.
	l, err = svc.Search(ctx, service.SearchRequest{Query: "culture", CourseID: 1, UserID: user(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cell culture"}, concepts(l))

	l, err = svc.Search(ctx, service.SearchRequest{Query: "culture", CourseID: 1, UserID: user(3)})
	require.NoError(t, err)
	assert.True(t, l.Empty())
}

func TestService_Search_Config(t *testing.T) {
	off := false
	svc := setupService(t, &config.Config{Search: config.Search{FullText: &off, Format: "entrylist"}})

	l, err := svc.Search(context.Background(), service.SearchRequest{Query: "plant", CourseID: 1})
	require.NoError(t, err)
	assert.True(t, l.Empty(), "definitions are not searched")

	l, err = svc.Search(context.Background(), service.SearchRequest{Query: "category", CourseID: 1})
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "entrylist", l.Items[0].Format)
}

func TestService_Search_Errors(t *testing.T) {
	limit := 5
	svc := setupService(t, &config.Config{Limits: config.Limits{MaxQuery: &limit}})
	ctx := context.Background()

	_, err := svc.Search(ctx, service.SearchRequest{Query: "mitochondria", CourseID: 1})
	assert.True(t, errors.Is(err, validate.ErrQueryTooLong))

	_, err = svc.Search(ctx, service.SearchRequest{Query: "cell", CourseID: 99})
	assert.True(t, errors.Is(err, search.ErrInvalidCourse))

	_, err = svc.Search(ctx, service.SearchRequest{Query: "cell", CourseID: 2})
	assert.True(t, errors.Is(err, search.ErrNoGlossaries))
}

func TestService_Glossaries(t *testing.T) {
	svc := setupService(t, nil)
	ctx := context.Background()

	gs, err := svc.Glossaries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, gs, 2)
	assert.Equal(t, "Staff", gs[1].Name)

	gs, err = svc.Glossaries(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, gs)

	_, err = svc.Glossaries(ctx, 99)
	assert.True(t, errors.Is(err, search.ErrInvalidCourse))
}

func TestService_GrantRevoke(t *testing.T) {
	open := false
	svc := setupService(t, &config.Config{Access: config.Access{Open: &open}})
	ctx := context.Background()
	req := service.SearchRequest{Query: "cell", CourseID: 1, UserID: user(3)}

	l, err := svc.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, l.Empty(), "closed access needs a view grant")

	g := store.Grant{UserID: 3, Capability: store.CapView, GlossaryID: 10}
	require.NoError(t, svc.Grant(ctx, g))

	l, err = svc.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Total)

	removed, err := svc.Revoke(ctx, g)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Revoke(ctx, g)
	require.NoError(t, err)
	assert.False(t, removed)

	err = svc.Grant(ctx, store.Grant{UserID: 3, Capability: "mod/forum:view"})
	assert.True(t, errors.Is(err, validate.ErrInvalidCapability))

	assert.Error(t, svc.Grant(ctx, store.Grant{Capability: store.CapView}))
}

func TestService_Import(t *testing.T) {
	svc := setupService(t, nil)
	ctx := context.Background()

	before, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), before.Courses)
	assert.Equal(t, int64(5), before.Entries)

	dry, err := svc.Import(ctx, loadCatalog(t), importer.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 5, dry.Entries)

	_, err = svc.Import(ctx, loadCatalog(t), importer.Options{Source: "again.yaml"})
	require.NoError(t, err)

	after, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_Preview(t *testing.T) {
	svc := setupService(t, nil)
	ctx := context.Background()

	changes, err := svc.Preview(ctx, loadCatalog(t))
	require.NoError(t, err)
	assert.Empty(t, changes, "the stored catalogue matches its file")

	cat := loadCatalog(t)
	cat.Courses[0].Glossaries[0].Entries[2].Definition = "A class of things."
	cat.Courses[0].Glossaries[0].Entries = append(cat.Courses[0].Glossaries[0].Entries,
		importer.EntryDoc{ID: 104, Concept: "Nucleus"})

	changes, err = svc.Preview(ctx, cat)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, diff.Changed, changes[0].Kind)
	assert.Equal(t, int64(102), changes[0].EntryID)
	assert.Contains(t, changes[0].Diff, "+   A class of things.")
	assert.Equal(t, diff.Added, changes[1].Kind)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Entries, "preview writes nothing")
}

func TestNew(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	_, err = glossary.New("")
	assert.True(t, errors.Is(err, repo.ErrNotInitialised))

	require.NoError(t, glossary.Init(false, "", false, ""))
	svc, err := glossary.New("")
	require.NoError(t, err)
	defer svc.Close()

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, repo.Dir), svc.Dir())
	assert.NotNil(t, svc.DB())

	ctx := context.Background()
	_, err = svc.Import(ctx, loadCatalog(t), importer.Options{})
	require.NoError(t, err)

	l, err := svc.Search(ctx, service.SearchRequest{Query: "+cell", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cell", "Cell wall"}, concepts(l))

	dry, err := svc.Compact(ctx, true)
	require.NoError(t, err)
	assert.Positive(t, dry.Before)
	assert.Equal(t, dry.Before, dry.After)

	c, err := svc.Compact(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Dir(), repo.DBFile), c.Path)
	assert.Positive(t, c.After)

	l, err = svc.Search(ctx, service.SearchRequest{Query: "+cell", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Total, "compaction keeps the catalogue")
}

func TestOpenCatalog(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "biology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogue), 0o644))

	svc, err := glossary.OpenCatalog(context.Background(), path)
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.DB())
	assert.Empty(t, svc.Dir())

	courses, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	_, err = svc.Compact(context.Background(), false)
	assert.True(t, errors.Is(err, glossary.ErrInMemory))
}
