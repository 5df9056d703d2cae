package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/wordoracle/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func TestRender(t *testing.T) {
	h := &InputHandler{noColor: true}

	tests := []struct {
		display  string
		expected string
	}{
		{"<strong>Red App</strong>le", "[Red App]le"},
		{"A&lt;B <strong>C</strong>", "A<B [C]"},
		{"<strong>a</strong> b <strong>a</strong>", "[a] b [a]"},
		{"plain &amp; simple", "plain & simple"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, h.render(tc.display))
	}
}

func TestInputHandlerSession(t *testing.T) {
	oracle := suggest.NewOracle()
	oracle.AddAll("Red Apple", "Green Apple")

	var out bytes.Buffer
	h := NewInputHandler(oracle, 5, 20, true)
	h.in = strings.NewReader("+ Red Apple Pie\napp\nred apple p\npear\n\x01bad\n+\nred")
	h.out = &out

	require.NoError(t, h.Start())

	expected := strings.Join([]string{
		"added: Red Apple Pie",
		"Found 3 suggestions for 'app':",
		" 1. Green [App]le",
		" 2. Red [App]le",
		" 3. Red [App]le Pie",
		"Found 1 suggestions for 'red apple p':",
		" 1. [Red Apple P]ie",
		"No suggestions found for 'pear'",
		"Found 2 suggestions for 'red':",
		" 1. [Red] Apple",
		" 2. [Red] Apple Pie",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())
}
