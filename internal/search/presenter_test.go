package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

func TestPresent_RangeAndHighlights(t *testing.T) {
	r := newResolver(catalogue(t), search.DefaultConfig())
	q := "cat -food a"
	page, err := r.Search(context.Background(), search.Request{Query: q, CourseID: 1, UserID: staff})
	require.NoError(t, err)

	l := search.NewPresenter(search.DefaultConfig()).Present(q, page)
	assert.Equal(t, []string{"cat"}, l.Highlights)
	assert.Equal(t, page.Total, l.Total)
	assert.Equal(t, 1, l.First)
	assert.Equal(t, len(page.Entries), l.Last)
	assert.Equal(t, 0, l.Page)
	assert.Equal(t, 1, l.Pages)
	assert.False(t, l.Empty())
}

func TestPresent_OwnerAndFormat(t *testing.T) {
	r := newResolver(catalogue(t), search.DefaultConfig())
	page, err := r.Search(context.Background(), search.Request{Query: "+cat", CourseID: 1, UserID: staff})
	require.NoError(t, err)

	l := search.NewPresenter(search.Config{Format: "continuous"}).Present("+cat", page)
	require.Len(t, l.Items, 2)

	byConcept := map[string]search.Item{}
	for _, it := range l.Items {
		byConcept[it.Entry.Concept] = it
	}
	assert.Equal(t, "Biology", byConcept["Cat food"].Glossary.Name)
	assert.Equal(t, "continuous", byConcept["Cat food"].Format)
	assert.Equal(t, "Drafts", byConcept["Hidden cat"].Glossary.Name)
	assert.Equal(t, "entrylist", byConcept["Hidden cat"].Format)
}

func TestPresent_SharedEntryListedUnderSource(t *testing.T) {
	page := &search.Page{
		PageSize:   search.PageSize,
		Total:      1,
		Glossaries: []store.Glossary{{ID: 10, CourseID: 1, Name: "Biology", Visible: true}},
		Entries:    []store.Entry{{ID: 400, GlossaryID: 40, SourceGlossaryID: 10, Concept: "Shared"}},
	}
	l := search.NewPresenter(search.DefaultConfig()).Present("shared", page)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "Biology", l.Items[0].Glossary.Name)
	assert.Equal(t, search.DefaultFormat, l.Items[0].Format)
}

func TestPresent_SecondPage(t *testing.T) {
	page := &search.Page{
		Offset:   100,
		PageSize: search.PageSize,
		Total:    150,
		Entries:  make([]store.Entry, 50),
	}
	l := search.NewPresenter(search.DefaultConfig()).Present("term", page)
	assert.Equal(t, 101, l.First)
	assert.Equal(t, 150, l.Last)
	assert.Equal(t, 1, l.Page)
	assert.Equal(t, 2, l.Pages)
}

func TestPresent_Empty(t *testing.T) {
	l := search.NewPresenter(search.DefaultConfig()).Present("-x", &search.Page{PageSize: search.PageSize})
	assert.True(t, l.Empty())
	assert.Zero(t, l.First)
	assert.Zero(t, l.Last)
	assert.Zero(t, l.Pages)
	assert.Empty(t, l.Highlights)
	assert.NotNil(t, l.ToJSON().Entries)
}

func TestListing_ToJSON(t *testing.T) {
	r := newResolver(catalogue(t), search.DefaultConfig())
	page, err := r.Search(context.Background(), search.Request{Query: "+cell", CourseID: 1, UserID: student})
	require.NoError(t, err)

	j := search.NewPresenter(search.DefaultConfig()).Present("+cell", page).ToJSON()
	require.Len(t, j.Entries, 1)
	assert.Equal(t, "Mitosis", j.Entries[0].Concept)
	assert.Equal(t, "Biology", j.Entries[0].Glossary)
	assert.Equal(t, "Division of a cell nucleus.", j.Entries[0].Definition)
	assert.Equal(t, []string{"cell"}, j.Highlights)
}
