// Package suggest is the core, resolving multi-word queries against a word index and formatting highlighted results.
package suggest

// Suggester defines the interface for multi-word suggestion oracles
type Suggester interface {
	// Add indexes a suggestion under every word it contains
	Add(suggestion string)

	// AddAll indexes many suggestions at once
	AddAll(suggestions ...string)

	// Suggest resolves a query and returns its highlighted matches
	Suggest(req Request) Response

	// RequestSuggestions resolves a query and hands the result to cb exactly once
	RequestSuggestions(req Request, cb Callback)

	// Stats returns counters about the indexed suggestions
	Stats() map[string]int
}

// WordIndex stores normalized words and answers prefix lookups over them.
type WordIndex interface {
	Add(word string) bool
	Suggestions(prefix string, limit int) []string
	Len() int
	Clear()
}

// Request is a single lookup.
type Request struct {
	Query string
	Limit int
}

// Suggestion pairs the original text with its highlighted HTML rendering.
type Suggestion struct {
	Replacement string
	Display     string
}

// Response carries the suggestions for one Request.
type Response struct {
	Suggestions []Suggestion
}

// Callback receives the Response of RequestSuggestions.
type Callback func(Response)
