// predicate.go defines the match predicates built from tokens.
//
// Predicates are plain values. They evaluate in memory through Match and the
// SQLite store compiles the same values to SQL, calling back into
// ContainsFold and HasWholeWord so both paths agree on every edge case.

package query

import "strings"

// Field names a searchable text field of a glossary entry or alias.
type Field int

const (
	FieldConcept Field = iota
	FieldAlias
	FieldDefinition
)

func (f Field) String() string {
	switch f {
	case FieldAlias:
		return "alias"
	case FieldDefinition:
		return "definition"
	default:
		return "concept"
	}
}

// Record exposes field values to in-memory matching.
type Record interface {
	Value(f Field) string
}

// Predicate is a boolean rule over a Record.
// Implementations: ContainsText, WholeWord, Not, FieldPredicate.
type Predicate interface {
	predicateNode()
	Match(r Record) bool
}

// ContainsText holds when the field contains Text, ignoring case.
type ContainsText struct {
	Field Field
	Text  string
}

func (ContainsText) predicateNode() {}

func (p ContainsText) Match(r Record) bool {
	return ContainsFold(r.Value(p.Field), p.Text)
}

// WholeWord holds when the field contains Text bounded on both sides by the
// string edge or a character outside [a-zA-Z0-9], ignoring case.
type WholeWord struct {
	Field Field
	Text  string
}

func (WholeWord) predicateNode() {}

func (p WholeWord) Match(r Record) bool {
	return HasWholeWord(r.Value(p.Field), p.Text)
}

// Not negates Inner.
type Not struct {
	Inner Predicate
}

func (Not) predicateNode() {}

func (p Not) Match(r Record) bool {
	return !p.Inner.Match(r)
}

// FieldPredicate is the conjunction of one clause per token over a single
// field. With no clauses it places no constraint and always holds.
type FieldPredicate struct {
	Field   Field
	Clauses []Predicate
}

func (FieldPredicate) predicateNode() {}

func (p FieldPredicate) Match(r Record) bool {
	for _, c := range p.Clauses {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// Empty reports whether the predicate places no constraint.
func (p FieldPredicate) Empty() bool {
	return len(p.Clauses) == 0
}

// Clause returns the condition a single token contributes to field f.
func Clause(f Field, t Token) Predicate {
	switch t.Mode {
	case Require:
		return WholeWord{Field: f, Text: t.Text}
	case Exclude:
		return Not{Inner: WholeWord{Field: f, Text: t.Text}}
	default:
		return ContainsText{Field: f, Text: t.Text}
	}
}

// For builds the predicate for field f, one clause per token in order.
func For(f Field, tokens []Token) FieldPredicate {
	p := FieldPredicate{Field: f, Clauses: make([]Predicate, 0, len(tokens))}
	for _, t := range tokens {
		p.Clauses = append(p.Clauses, Clause(f, t))
	}
	return p
}

// Predicates groups the independently built predicates of the three fields.
type Predicates struct {
	Concept    FieldPredicate
	Alias      FieldPredicate
	Definition FieldPredicate
}

// Build builds the concept, alias and definition predicates for tokens.
func Build(tokens []Token) Predicates {
	return Predicates{
		Concept:    For(FieldConcept, tokens),
		Alias:      For(FieldAlias, tokens),
		Definition: For(FieldDefinition, tokens),
	}
}

// ContainsFold reports whether sub is within s, ignoring case.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// HasWholeWord reports whether word occurs in s with a word boundary on
// each side, ignoring case. A boundary is the start or end of s or any byte
// that is not an ASCII letter or digit.
func HasWholeWord(s, word string) bool {
	s = strings.ToLower(s)
	word = strings.ToLower(word)

	for i := 0; i <= len(s)-len(word); {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(word)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		i = start + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
