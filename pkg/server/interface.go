/*
Package server implements msgpack IPC for multi-word suggestion services.

The server reads a stream of msgpack encoded requests from stdin and writes one
msgpack response per request to stdout. Requests are processed synchronously
with timing info included in suggestion responses.

# IPC

Every request carries an ID and an action. An empty action is a suggest request:

	{"id": "req_001", "q": "red app", "l": 5}

The server responds with highlighted suggestions in lexicographic order:

	{"id": "req_001", "s": [{"r": "Red Apple", "d": "<strong>Red App</strong>le"}], "c": 1, "t": 42}

Suggestion lists can be extended at runtime, which drops every cached response:

	{"id": "add_001", "action": "add", "items": ["Red Apple Pie"]}

Other actions are "stats", "health" and "config":

	{"id": "cfg_001", "action": "config", "max_limit": 32, "default_limit": 8}

Failures are reported as error frames with an HTTP style code:

	{"id": "req_002", "e": "query too long", "c": 400}

400 is a malformed request, 404 an unknown action, 429 a rate limited request
and 500 an internal failure.
*/
package server

// Action names
const (
	ActionSuggest = "suggest"
	ActionAdd     = "add"
	ActionStats   = "stats"
	ActionHealth  = "health"
	ActionConfig  = "config"
)

// Request is the envelope for every IPC request
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"action,omitempty"`
	Query  string   `msgpack:"q,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
	Items  []string `msgpack:"items,omitempty"`

	// config action
	MaxLimit      *int  `msgpack:"max_limit,omitempty"`
	DefaultLimit  *int  `msgpack:"default_limit,omitempty"`
	ServeDefaults *bool `msgpack:"serve_defaults,omitempty"`
}

// SuggestionItem - minimal suggestion
type SuggestionItem struct {
	Replacement string `msgpack:"r"`
	Display     string `msgpack:"d"`
}

// SuggestResponse - suggest response, TimeTaken in microseconds
type SuggestResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []SuggestionItem `msgpack:"s"`
	Count       int              `msgpack:"c"`
	TimeTaken   int64            `msgpack:"t"`
}

// AddResponse reports how many new candidates an add request created
type AddResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Added  int    `msgpack:"added"`
}

// StatsResponse - index counters, metrics snapshot and process usage
type StatsResponse struct {
	ID      string             `msgpack:"id"`
	Status  string             `msgpack:"status"`
	Index   map[string]int     `msgpack:"index"`
	Metrics map[string]float64 `msgpack:"metrics"`
	RSS     uint64             `msgpack:"rss"`
	CPU     float64            `msgpack:"cpu"`
}

// HealthResponse - liveness reply, also sent as the ready frame
type HealthResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ConfigResponse - server limits after a config update
type ConfigResponse struct {
	ID            string `msgpack:"id"`
	Status        string `msgpack:"status"`
	MaxLimit      int    `msgpack:"max_limit"`
	DefaultLimit  int    `msgpack:"default_limit"`
	ServeDefaults bool   `msgpack:"serve_defaults"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
