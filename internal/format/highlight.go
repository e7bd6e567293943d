package format

import (
	"sort"
	"strings"
)

// Highlight wraps every case-insensitive occurrence of terms in text with
// pre and post. Where terms overlap at a position the longest wins, and a
// highlighted span is never searched again.
func Highlight(text string, terms []string, pre, post string) string {
	if text == "" || len(terms) == 0 {
		return text
	}

	sorted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			sorted = append(sorted, t)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	var b strings.Builder
	for i := 0; i < len(text); {
		n := matchAt(text, i, sorted)
		if n == 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(pre)
		b.WriteString(text[i : i+n])
		b.WriteString(post)
		i += n
	}
	return b.String()
}

// matchAt returns the byte length of the first term found at text[i:], or 0.
func matchAt(text string, i int, terms []string) int {
	for _, t := range terms {
		if i+len(t) <= len(text) && strings.EqualFold(text[i:i+len(t)], t) {
			return len(t)
		}
	}
	return 0
}
