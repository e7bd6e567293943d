package store

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

func TestCompile(t *testing.T) {
	p := query.For(query.FieldConcept, query.Parse("+cell -wall plant"))
	cond, args, err := compile(p)
	require.NoError(t, err)
	assert.Equal(t, "(gl_wholeword(e.concept, ?) AND NOT (gl_wholeword(e.concept, ?)) AND gl_contains(e.concept, ?))", cond)
	assert.Equal(t, []any{"cell", "wall", "plant"}, args)
}

func TestCompile_EmptyIsTrue(t *testing.T) {
	cond, args, err := compile(query.For(query.FieldAlias, nil))
	require.NoError(t, err)
	assert.Equal(t, "1", cond)
	assert.Empty(t, args)
}

func TestCompileMatch(t *testing.T) {
	p := query.Build(query.Parse("cell"))

	cond, args, err := compileMatch(EntryMatch{Concept: p.Concept, Definition: p.Definition})
	require.NoError(t, err)
	assert.Equal(t, "((gl_contains(e.concept, ?)))", cond)
	assert.Equal(t, []any{"cell"}, args)

	cond, args, err = compileMatch(EntryMatch{Concept: p.Concept, Definition: p.Definition, FullText: true, EntryIDs: []int64{4, 9}})
	require.NoError(t, err)
	assert.Equal(t, "((gl_contains(e.concept, ?)) OR e.id IN (SELECT value FROM json_each(?)) OR (gl_contains(e.definition, ?)))", cond)
	assert.Equal(t, []any{"cell", "[4,9]", "cell"}, args)
}

func TestScopeCondition(t *testing.T) {
	cond, args := scopeCondition(Scope{GlossaryIDs: []int64{1, 2}})
	assert.Equal(t, "(e.glossary_id IN (?, ?) OR e.source_glossary_id IN (?, ?)) AND e.approved != 0", cond)
	assert.Equal(t, []any{int64(1), int64(2), int64(1), int64(2)}, args)

	cond, args = scopeCondition(Scope{GlossaryIDs: []int64{1}, UserID: 5})
	assert.Equal(t, "(e.glossary_id IN (?) OR e.source_glossary_id IN (?)) AND (e.approved != 0 OR e.user_id = ?)", cond)
	assert.Equal(t, []any{int64(1), int64(1), int64(5)}, args)
}

func TestDriverFunctions(t *testing.T) {
	v, err := wholeWordFunc(nil, []driver.Value{"Cell wall", "cell"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = containsFunc(nil, []driver.Value{nil, "cell"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = containsFunc(nil, []driver.Value{"x"})
	assert.Error(t, err)
}
