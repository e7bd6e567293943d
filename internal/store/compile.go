// compile.go turns query predicates into SQL conditions.

package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

// columns maps searchable fields to their column in the search queries.
// Entries are aliased e and aliases a.
var columns = map[query.Field]string{
	query.FieldConcept:    "e.concept",
	query.FieldAlias:      "a.alias",
	query.FieldDefinition: "e.definition",
}

// compile returns a SQL boolean expression for p and its bind arguments.
func compile(p query.Predicate) (string, []any, error) {
	switch n := p.(type) {
	case query.ContainsText:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return "gl_contains(" + col + ", ?)", []any{n.Text}, nil
	case query.WholeWord:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return "gl_wholeword(" + col + ", ?)", []any{n.Text}, nil
	case query.Not:
		cond, args, err := compile(n.Inner)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + cond + ")", args, nil
	case query.FieldPredicate:
		if n.Empty() {
			return "1", nil, nil
		}
		parts := make([]string, 0, len(n.Clauses))
		var args []any
		for _, c := range n.Clauses {
			cond, a, err := compile(c)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, cond)
			args = append(args, a...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", args, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

func column(f query.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown field %s", f)
	}
	return col, nil
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// idSet returns a subquery over ids bound as one JSON array argument, so
// any number of ids stays within SQLite's bind variable limit.
func idSet(ids []int64) (string, any) {
	b := []byte{'['}
	for i, id := range ids {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, id, 10)
	}
	b = append(b, ']')
	return "(SELECT value FROM json_each(?))", string(b)
}

// scopeCondition restricts entries to the scope's glossaries and to what the
// scope's user may see. It must not be called with an empty scope.
func scopeCondition(scope Scope) (string, []any) {
	in := placeholders(len(scope.GlossaryIDs))
	ids := int64Args(scope.GlossaryIDs)

	var b strings.Builder
	b.WriteString("(e.glossary_id IN (" + in + ") OR e.source_glossary_id IN (" + in + "))")
	args := append(append([]any{}, ids...), ids...)

	if scope.UserID != 0 {
		b.WriteString(" AND (e.approved != 0 OR e.user_id = ?)")
		args = append(args, scope.UserID)
	} else {
		b.WriteString(" AND e.approved != 0")
	}
	return b.String(), args
}
