package validate

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and keeps only text.
var strict = bluemonday.StrictPolicy()

// Query returns raw with markup removed and surrounding whitespace trimmed,
// ready for query.Parse.
//
// Validation rules:
//   - Null bytes rejected
//   - Max length in characters enforced after cleaning if maxLen > 0
//
// An empty result is valid and matches every permitted entry.
func Query(raw string, maxLen int) (string, error) {
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: null byte in query", ErrInvalidQuery)
	}

	// The policy escapes the text it keeps, so "AT&T" would come back as
	// "AT&amp;T" without the unescape.
	q := html.UnescapeString(strict.Sanitize(raw))
	q = strings.TrimSpace(q)

	if maxLen > 0 && utf8.RuneCountInString(q) > maxLen {
		return "", fmt.Errorf("%w: %d characters, limit is %d", ErrQueryTooLong, utf8.RuneCountInString(q), maxLen)
	}
	return q, nil
}
