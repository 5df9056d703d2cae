package suggest

import (
	"fmt"
	"html"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/bastiangx/wordoracle/pkg/prefixtree"
	"github.com/charmbracelet/log"
)

const (
	// DefaultMinIntersection stops narrowing a multi-word query once the
	// running candidate set holds fewer entries than this.
	DefaultMinIntersection = 2

	// DefaultWhitespace lists the characters folded to a space by Normalize.
	DefaultWhitespace = " "

	// BackendChunked selects prefixtree.Tree as the word index.
	BackendChunked = "chunked"

	// BackendPatricia selects PatriciaIndex as the word index.
	BackendPatricia = "patricia"
)

// Oracle resolves multi-word AND queries against indexed suggestions.
//
// Every suggestion is normalized into a candidate key, split into words, and
// each word is stored in a WordIndex plus an inverted word -> candidates map.
// A query word matches every candidate holding a word that starts with it.
type Oracle struct {
	words       WordIndex
	wordIndex   map[string]map[string]struct{}
	displayText map[string]string
	whitespace  map[rune]struct{}
	minIntersec int
	defaults    []string
	logger      *log.Logger
	mu          sync.RWMutex
}

var _ Suggester = (*Oracle)(nil)

// Option configures an Oracle.
type Option func(*Oracle)

// WithWhitespace sets the characters treated as word separators, in addition
// to the space itself.
func WithWhitespace(chars string) Option {
	return func(o *Oracle) {
		o.whitespace = whitespaceSet(chars)
	}
}

// WithMinIntersection sets the early-exit threshold for multi-word queries.
// Zero disables the early exit.
func WithMinIntersection(n int) Option {
	return func(o *Oracle) {
		if n >= 0 {
			o.minIntersec = n
		}
	}
}

// WithWordIndex swaps the word index backend.
func WithWordIndex(idx WordIndex) Option {
	return func(o *Oracle) {
		if idx != nil {
			o.words = idx
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *Oracle) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOracle creates an empty oracle backed by a prefixtree.Tree by default.
func NewOracle(opts ...Option) *Oracle {
	o := &Oracle{
		words:       prefixtree.New(),
		wordIndex:   make(map[string]map[string]struct{}),
		displayText: make(map[string]string),
		whitespace:  whitespaceSet(DefaultWhitespace),
		minIntersec: DefaultMinIntersection,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewWordIndex builds a word index for the named backend.
func NewWordIndex(backend string, chunkSize int, truncate bool) (WordIndex, error) {
	switch backend {
	case "", BackendChunked:
		return prefixtree.New(prefixtree.WithChunkSize(chunkSize), prefixtree.WithTruncation(truncate)), nil
	case BackendPatricia:
		return NewPatriciaIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", backend)
	}
}

func whitespaceSet(chars string) map[rune]struct{} {
	set := map[rune]struct{}{' ': {}}
	for _, r := range chars {
		set[r] = struct{}{}
	}
	return set
}

// Normalize lowercases text and folds whitespace equivalents to a space.
func (o *Oracle) Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := o.whitespace[r]; ok {
			return ' '
		}
		return r
	}, strings.ToLower(text))
}

// normalizeQuery also collapses whitespace runs and trims the ends.
func (o *Oracle) normalizeQuery(query string) string {
	return strings.Join(strings.Fields(o.Normalize(query)), " ")
}

// Add indexes suggestion. Empty suggestions are ignored; a suggestion that
// normalizes to an existing candidate replaces its display text.
func (o *Oracle) Add(suggestion string) {
	if suggestion == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.add(suggestion)
}

// AddAll indexes every suggestion under a single lock.
func (o *Oracle) AddAll(suggestions ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range suggestions {
		if s != "" {
			o.add(s)
		}
	}
}

func (o *Oracle) add(suggestion string) {
	candidate := o.Normalize(suggestion)
	o.displayText[candidate] = suggestion

	for _, word := range strings.Split(candidate, " ") {
		if word == "" {
			continue
		}
		o.words.Add(word)
		set, ok := o.wordIndex[word]
		if !ok {
			set = make(map[string]struct{})
			o.wordIndex[word] = set
		}
		set[candidate] = struct{}{}
	}
}

// Suggest resolves req. Candidates are ordered lexicographically by their
// normalized key and the first req.Limit are kept before highlighting.
func (o *Oracle) Suggest(req Request) Response {
	resp := Response{Suggestions: []Suggestion{}}

	query := o.normalizeQuery(req.Query)
	if query == "" || req.Limit <= 0 {
		return resp
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	candidates := o.candidates(query)
	keys := slices.Sorted(maps.Keys(candidates))
	if len(keys) > req.Limit {
		keys = keys[:req.Limit]
	}

	for _, key := range keys {
		original := o.displayText[key]
		display, ok := Highlight(key, original, query)
		if !ok {
			o.logger.Debug("Dropping candidate without word-boundary match", "candidate", key, "query", query)
			continue
		}
		resp.Suggestions = append(resp.Suggestions, Suggestion{
			Replacement: original,
			Display:     display,
		})
	}
	return resp
}

// RequestSuggestions calls cb exactly once with the result of Suggest before
// returning.
func (o *Oracle) RequestSuggestions(req Request, cb Callback) {
	resp := o.Suggest(req)
	if cb != nil {
		cb(resp)
	}
}

// candidates intersects the per-word candidate sets of query.
func (o *Oracle) candidates(query string) map[string]struct{} {
	var result map[string]struct{}
	for _, word := range strings.Split(query, " ") {
		if strings.TrimSpace(word) == "" {
			continue
		}

		set := o.candidatesForWord(word)
		if result == nil {
			result = set
			continue
		}

		for c := range result {
			if _, ok := set[c]; !ok {
				delete(result, c)
			}
		}
		if o.minIntersec > 0 && len(result) < o.minIntersec {
			break
		}
	}
	return result
}

// candidatesForWord unions the candidates of every indexed word starting with word.
func (o *Oracle) candidatesForWord(word string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range o.words.Suggestions(word, math.MaxInt) {
		for c := range o.wordIndex[w] {
			set[c] = struct{}{}
		}
	}
	return set
}

// SetDefaultSuggestions sets the list RequestDefaultSuggestions answers with.
func (o *Oracle) SetDefaultSuggestions(suggestions []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.defaults = slices.Clone(suggestions)
}

// DefaultSuggestions returns a copy of the default suggestion list.
func (o *Oracle) DefaultSuggestions() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.defaults)
}

// RequestDefaultSuggestions answers with the default list, unhighlighted,
// truncated to req.Limit. The query is ignored.
func (o *Oracle) RequestDefaultSuggestions(req Request, cb Callback) {
	resp := Response{Suggestions: []Suggestion{}}

	o.mu.RLock()
	for _, s := range o.defaults {
		if len(resp.Suggestions) >= req.Limit {
			break
		}
		resp.Suggestions = append(resp.Suggestions, Suggestion{
			Replacement: s,
			Display:     html.EscapeString(s),
		})
	}
	o.mu.RUnlock()

	if cb != nil {
		cb(resp)
	}
}

// Clear drops every indexed suggestion. Default suggestions are kept.
func (o *Oracle) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.words.Clear()
	o.wordIndex = make(map[string]map[string]struct{})
	o.displayText = make(map[string]string)
}

// Len returns the number of distinct candidates.
func (o *Oracle) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.displayText)
}

// Stats returns index counters. Chunked backends also report their root chunk size.
func (o *Oracle) Stats() map[string]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	stats := map[string]int{
		"candidates":   len(o.displayText),
		"words":        len(o.wordIndex),
		"indexedWords": o.words.Len(),
		"defaults":     len(o.defaults),
	}
	if chunked, ok := o.words.(interface{ ChunkSize() int }); ok {
		stats["chunkSize"] = chunked.ChunkSize()
	}
	return stats
}
