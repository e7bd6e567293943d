package query

import "unicode/utf8"

// MinHighlightLen is the shortest term worth highlighting. Single
// characters would light up most of a definition.
const MinHighlightLen = 2

// Highlights derives the terms a renderer should emphasise from parsed
// tokens: excluded words are dropped, required words lose their marker
// (Token.Text never carries it) and terms shorter than MinHighlightLen
// characters are skipped. Order follows the query.
func Highlights(tokens []Token) []string {
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Mode == Exclude {
			continue
		}
		if utf8.RuneCountInString(t.Text) < MinHighlightLen {
			continue
		}
		terms = append(terms, t.Text)
	}
	return terms
}

// HighlightTerms parses raw and returns its highlight terms. Renderers can
// call it without running a search.
func HighlightTerms(raw string) []string {
	return Highlights(Parse(raw))
}
