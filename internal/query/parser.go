// Package query turns a free-text glossary search into classified tokens and
// field-level match predicates.
//
// A query is a space separated list of words. A leading '+' asks for the word
// as a whole word, a leading '-' excludes entries containing the whole word,
// and anything else is a case-insensitive substring match:
//
//	+cell -plant membrane
//
// matches entries that contain the word "cell", do not contain the word
// "plant" and contain "membrane" anywhere (so "membranes" matches too).
package query

import "strings"

// Mode classifies how a token takes part in matching.
type Mode int

const (
	// Contains matches the token as a case-insensitive substring.
	Contains Mode = iota
	// Require matches the token as a whole word.
	Require
	// Exclude rejects fields containing the token as a whole word.
	Exclude
)

func (m Mode) String() string {
	switch m {
	case Require:
		return "require"
	case Exclude:
		return "exclude"
	default:
		return "contains"
	}
}

// Token is a single classified word of a query. Text never carries the
// '+' or '-' marker.
type Token struct {
	Text string
	Mode Mode
}

// String returns the token as it would be typed, marker included.
func (t Token) String() string {
	switch t.Mode {
	case Require:
		return "+" + t.Text
	case Exclude:
		return "-" + t.Text
	default:
		return t.Text
	}
}

// Options configures ParseWith.
type Options struct {
	// KeepEmpty keeps the empty tokens produced by consecutive spaces and the
	// empty text left by a bare "+" or "-". An empty Contains token matches
	// every field, which is how the original block behaved.
	KeepEmpty bool
}

// Parse splits raw on single spaces and classifies each token, dropping
// empty ones. The caller is expected to have trimmed raw and stripped markup.
func Parse(raw string) []Token {
	return ParseWith(raw, Options{})
}

// ParseWith is Parse with explicit options.
func ParseWith(raw string, opts Options) []Token {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, " ")
	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		t := classify(p)
		if t.Text == "" && !opts.KeepEmpty {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func classify(word string) Token {
	switch {
	case strings.HasPrefix(word, "+"):
		return Token{Text: word[1:], Mode: Require}
	case strings.HasPrefix(word, "-"):
		return Token{Text: word[1:], Mode: Exclude}
	default:
		return Token{Text: word, Mode: Contains}
	}
}
