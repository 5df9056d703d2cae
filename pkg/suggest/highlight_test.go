package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		display   string
		query     string
		expected  string
		ok        bool
	}{
		{"prefix of first word", "red apple", "Red Apple", "red", "<strong>Red</strong> Apple", true},
		{"later word", "red apple", "Red Apple", "app", "Red <strong>App</strong>le", true},
		{"mid-word only", "strawberry", "strawberry", "berry", "", false},
		{"mid-word skipped, later boundary kept", "strawberry berry", "Strawberry Berry", "berry", "Strawberry <strong>Berry</strong>", true},
		{"overlap with a mid-word hit", "ola la land", "Ola La Land", "la la", "Ola <strong>La La</strong>nd", true},
		{"escaped spans", "a<b c", "A<B C", "c", "A&lt;B <strong>C</strong>", true},
		{"multibyte display", "ünïcode ärger", "ÜNÏCODE Ärger", "är", "ÜNÏCODE <strong>Är</strong>ger", true},
		{"empty query", "anything", "anything", "", "", false},
		{"absent", "red apple", "red apple", "pear", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Highlight(tc.candidate, tc.display, tc.query)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}
