// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordoracle/internal/utils"
	"github.com/bastiangx/wordoracle/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var matchStyle = lipgloss.NewStyle().Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})

// InputHandler processes user input from stdin, providing suggestions.
// A line starting with '+' adds the rest of the line as a suggestion,
// any other line is a query.
type InputHandler struct {
	oracle       suggest.Suggester
	suggestLimit int
	maxQuery     int
	noColor      bool
	in           io.Reader
	out          io.Writer
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(oracle suggest.Suggester, limit, maxQuery int, noColor bool) *InputHandler {
	return &InputHandler{
		oracle:       oracle,
		suggestLimit: limit,
		maxQuery:     maxQuery,
		noColor:      noColor,
		in:           os.Stdin,
		out:          os.Stdout,
	}
}

// Start begins the interface loop. It returns nil once stdin is closed.
func (h *InputHandler) Start() error {
	log.Print("WordOracle CLI [BETA]")
	log.Print("type a query and press Enter to see the suggestions, '+text' adds one (Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput runs a single line against the oracle and prints the results.
func (h *InputHandler) handleInput(line string) {
	if added, ok := strings.CutPrefix(line, "+"); ok {
		added = strings.TrimSpace(added)
		if added == "" {
			log.Warn("Nothing to add")
			return
		}
		h.oracle.Add(added)
		fmt.Fprintf(h.out, "added: %s\n", added)
		return
	}

	if !utils.IsValidQuery(line, h.maxQuery) {
		log.Errorf("Query rejected (max %d printable characters): %q", h.maxQuery, line)
		return
	}

	start := time.Now()
	var resp suggest.Response
	h.oracle.RequestSuggestions(suggest.Request{Query: line, Limit: h.suggestLimit}, func(r suggest.Response) {
		resp = r
	})
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), line)

	if len(resp.Suggestions) == 0 {
		fmt.Fprintf(h.out, "No suggestions found for '%s'\n", line)
		return
	}

	fmt.Fprintf(h.out, "Found %d suggestions for '%s':\n", len(resp.Suggestions), line)
	for i, s := range resp.Suggestions {
		fmt.Fprintf(h.out, "%2d. %s\n", i+1, h.render(s.Display))
	}
}

// render turns highlighted HTML into terminal text. Matched spans are styled,
// or bracketed when colors are off.
func (h *InputHandler) render(display string) string {
	var b strings.Builder
	rest := display
	for {
		open := strings.Index(rest, suggest.EmphasisOpen)
		if open < 0 {
			break
		}
		b.WriteString(html.UnescapeString(rest[:open]))
		rest = rest[open+len(suggest.EmphasisOpen):]

		end := strings.Index(rest, suggest.EmphasisClose)
		if end < 0 {
			end = len(rest)
		}
		match := html.UnescapeString(rest[:end])
		if h.noColor {
			b.WriteString("[" + match + "]")
		} else {
			b.WriteString(matchStyle.Render(match))
		}
		rest = rest[min(end+len(suggest.EmphasisClose), len(rest)):]
	}
	b.WriteString(html.UnescapeString(rest))
	return b.String()
}
