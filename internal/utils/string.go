package utils

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ContainsControlChars checks if a string holds control characters other
// than ordinary whitespace
func ContainsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// IsValidQuery checks if a query should be resolved at all.
// Invalid UTF-8, control characters and queries above maxLen runes are rejected.
func IsValidQuery(s string, maxLen int) bool {
	if !utf8.ValidString(s) {
		return false
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return false
	}
	return !ContainsControlChars(s)
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}
	out := make([]byte, 0, len(str)+len(str)/3)
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, str[i])
	}
	return string(out)
}
