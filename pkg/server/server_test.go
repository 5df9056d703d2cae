package server

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordoracle/pkg/config"
	"github.com/bastiangx/wordoracle/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newOracle() *suggest.Oracle {
	o := suggest.NewOracle()
	o.AddAll("Red Apple", "Green Apple", "Red Banana", "Blue Berry Muffin")
	return o
}

// serve runs srv over the encoded frames and returns a decoder positioned
// after the ready frame.
func serve(t *testing.T, oracle Oracle, cfg *config.Config, configPath string, frames ...any) (*Server, *msgpack.Decoder) {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, f := range frames {
		require.NoError(t, enc.Encode(f))
	}

	srv := NewServer(oracle, cfg, configPath, WithIO(&in, &out))
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	ready := next[HealthResponse](t, dec)
	require.Equal(t, "ready", ready.Status)
	return srv, dec
}

func next[T any](t *testing.T, dec *msgpack.Decoder) T {
	t.Helper()
	var v T
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestSuggest(t *testing.T) {
	_, dec := serve(t, newOracle(), nil, "",
		Request{ID: "1", Query: "red app", Limit: 5},
		Request{ID: "2", Action: ActionSuggest, Query: "APP"},
		Request{ID: "3", Query: "pear"},
	)

	resp := next[SuggestResponse](t, dec)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []SuggestionItem{{Replacement: "Red Apple", Display: "<strong>Red App</strong>le"}}, resp.Suggestions)

	resp = next[SuggestResponse](t, dec)
	assert.Equal(t, []SuggestionItem{
		{Replacement: "Green Apple", Display: "Green <strong>App</strong>le"},
		{Replacement: "Red Apple", Display: "Red <strong>App</strong>le"},
	}, resp.Suggestions)

	resp = next[SuggestResponse](t, dec)
	assert.Equal(t, "3", resp.ID)
	assert.Empty(t, resp.Suggestions)
	assert.Zero(t, resp.Count)
}

func TestSuggestLimits(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxLimit = 1
	cfg.Server.DefaultLimit = 1
	cfg.Server.MaxQuery = 5

	_, dec := serve(t, newOracle(), cfg, "",
		Request{ID: "capped", Query: "app", Limit: 50},
		Request{ID: "long", Query: "abcdefgh"},
		Request{ID: "ctrl", Query: "a\x01"},
		Request{ID: "negative", Query: "app", Limit: -1},
	)

	resp := next[SuggestResponse](t, dec)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Green Apple", resp.Suggestions[0].Replacement)

	for _, id := range []string{"long", "ctrl"} {
		errResp := next[ErrorResponse](t, dec)
		assert.Equal(t, id, errResp.ID)
		assert.Equal(t, 400, errResp.Code)
	}

	resp = next[SuggestResponse](t, dec)
	assert.Equal(t, "negative", resp.ID)
	assert.Empty(t, resp.Suggestions)
	assert.Zero(t, resp.Count)
}

func TestDefaultSuggestions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ServeDefaults = true

	oracle := newOracle()
	oracle.SetDefaultSuggestions([]string{"a<b", "second", "third"})

	_, dec := serve(t, oracle, cfg, "", Request{ID: "d", Query: "  ", Limit: 2})

	resp := next[SuggestResponse](t, dec)
	assert.Equal(t, []SuggestionItem{
		{Replacement: "a<b", Display: "a&lt;b"},
		{Replacement: "second", Display: "second"},
	}, resp.Suggestions)
}

func TestAddInvalidatesCache(t *testing.T) {
	srv, dec := serve(t, newOracle(), nil, "",
		Request{ID: "1", Query: "red"},
		Request{ID: "2", Query: "red"},
		Request{ID: "add", Action: ActionAdd, Items: []string{"Red Apple Pie", "Red Apple"}},
		Request{ID: "3", Query: "red"},
		Request{ID: "empty", Action: ActionAdd},
	)

	first := next[SuggestResponse](t, dec)
	assert.Equal(t, 2, first.Count)
	cached := next[SuggestResponse](t, dec)
	assert.Equal(t, first.Suggestions, cached.Suggestions)

	added := next[AddResponse](t, dec)
	assert.Equal(t, "ok", added.Status)
	assert.Equal(t, 1, added.Added)

	after := next[SuggestResponse](t, dec)
	assert.Equal(t, 3, after.Count)
	assert.Equal(t, "Red Apple Pie", after.Suggestions[1].Replacement)

	errResp := next[ErrorResponse](t, dec)
	assert.Equal(t, 400, errResp.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(srv.metrics.cacheMiss))
	assert.Equal(t, 5.0, testutil.ToFloat64(srv.metrics.candidates))
}

func TestStatsAndHealth(t *testing.T) {
	_, dec := serve(t, newOracle(), nil, "",
		Request{ID: "h", Action: ActionHealth},
		Request{ID: "q", Query: "blue"},
		Request{ID: "s", Action: ActionStats},
	)

	health := next[HealthResponse](t, dec)
	assert.Equal(t, HealthResponse{ID: "h", Status: "ok"}, health)
	next[SuggestResponse](t, dec)

	stats := next[StatsResponse](t, dec)
	assert.Equal(t, "ok", stats.Status)
	assert.Equal(t, 4, stats.Index["candidates"])
	assert.Equal(t, 1.0, stats.Metrics[`wordoracle_requests_total{action="health"}`])
	assert.Equal(t, 1.0, stats.Metrics[`wordoracle_requests_total{action="suggest"}`])
	assert.Equal(t, 1.0, stats.Metrics["wordoracle_suggest_seconds_count"])
	assert.Equal(t, 4.0, stats.Metrics["wordoracle_candidates"])
}

func TestErrors(t *testing.T) {
	srv, dec := serve(t, newOracle(), nil, "",
		Request{ID: "x", Action: "reload"},
		"not a request",
		Request{ID: "h", Action: ActionHealth},
	)

	errResp := next[ErrorResponse](t, dec)
	assert.Equal(t, ErrorResponse{ID: "x", Error: "unknown action: reload", Code: 404}, errResp)

	errResp = next[ErrorResponse](t, dec)
	assert.Equal(t, 400, errResp.Code)

	health := next[HealthResponse](t, dec)
	assert.Equal(t, "ok", health.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.errors.WithLabelValues("404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.errors.WithLabelValues("400")))
}

func TestRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1

	_, dec := serve(t, newOracle(), cfg, "",
		Request{ID: "1", Action: ActionHealth},
		Request{ID: "2", Action: ActionHealth},
	)

	assert.Equal(t, "ok", next[HealthResponse](t, dec).Status)
	errResp := next[ErrorResponse](t, dec)
	assert.Equal(t, "2", errResp.ID)
	assert.Equal(t, 429, errResp.Code)
}

func TestConfigUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	maxLimit, defaultLimit := 3, 2

	oracle := newOracle()
	oracle.AddAll("Apple Pie", "Apple Tart")

	_, dec := serve(t, oracle, cfg, path,
		Request{ID: "c", Action: ActionConfig, MaxLimit: &maxLimit, DefaultLimit: &defaultLimit},
		Request{ID: "q", Query: "a", Limit: 10},
	)

	resp := next[ConfigResponse](t, dec)
	assert.Equal(t, ConfigResponse{ID: "c", Status: "ok", MaxLimit: 3, DefaultLimit: 2}, resp)
	assert.FileExists(t, path)

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Server.MaxLimit)

	// four suggestions start a word with "a", the limit is now capped at 3
	q := next[SuggestResponse](t, dec)
	assert.Equal(t, 3, q.Count)
}

func TestStartEmptyInput(t *testing.T) {
	var out bytes.Buffer
	srv := NewServer(newOracle(), nil, "", WithIO(&bytes.Buffer{}, &out))
	require.NoError(t, srv.Start())

	ready := next[HealthResponse](t, msgpack.NewDecoder(&out))
	assert.Equal(t, "ready", ready.Status)
}
