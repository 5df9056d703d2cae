package suggest

import (
	"html"
	"slices"
	"strings"
)

// Markup wrapped around highlighted spans of a suggestion's display text.
const (
	EmphasisOpen  = "<strong>"
	EmphasisClose = "</strong>"
)

// Highlight wraps every word-boundary occurrence of query in candidate with
// emphasis markup. Positions are found in the normalized candidate and cut
// from display, which must be the un-normalized text candidate came from.
// All text is HTML escaped. ok is false when no occurrence starts at a word
// boundary.
func Highlight(candidate, display, query string) (formatted string, ok bool) {
	cand := []rune(candidate)
	disp := []rune(display)
	q := []rune(query)
	if len(q) == 0 {
		return "", false
	}
	// ToLower and whitespace folding keep rune counts, but don't cut the
	// display text at positions that could be off.
	if len(disp) != len(cand) {
		disp = cand
	}

	var b strings.Builder
	cursor, index := 0, 0
	matched := false
	for {
		pos := indexRunes(cand[index:], q)
		if pos < 0 {
			break
		}
		start := index + pos
		end := start + len(q)
		if start == 0 || cand[start-1] == ' ' {
			b.WriteString(html.EscapeString(string(disp[cursor:start])))
			b.WriteString(EmphasisOpen)
			b.WriteString(html.EscapeString(string(disp[start:end])))
			b.WriteString(EmphasisClose)
			cursor = end
			matched = true
			index = end
			continue
		}
		// a later boundary occurrence may overlap this one
		index = start + 1
	}

	if !matched {
		return "", false
	}
	b.WriteString(html.EscapeString(string(disp[cursor:])))
	return b.String(), true
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
