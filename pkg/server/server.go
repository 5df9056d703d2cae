package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/wordoracle/internal/utils"
	"github.com/bastiangx/wordoracle/pkg/config"
	"github.com/bastiangx/wordoracle/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/maypok86/otter/v2"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/process"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

// Oracle is what the server resolves requests against
type Oracle interface {
	suggest.Suggester
	RequestDefaultSuggestions(req suggest.Request, cb suggest.Callback)
}

// Server handles the IPC for multi-word suggestions
type Server struct {
	oracle     Oracle
	config     *config.Config
	configPath string

	reader  io.Reader
	encoder *msgpack.Encoder

	limiter *rate.Limiter
	cache   *otter.Cache[string, []suggest.Suggestion]
	metrics *metrics
	audit   *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithIO replaces stdin/stdout as the request and response streams.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.encoder = msgpack.NewEncoder(w)
	}
}

// WithAudit sets the logger receiving one record per request.
func WithAudit(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.audit = l
		}
	}
}

// NewServer creates a new suggestion server using stdin/stdout for IPC
func NewServer(oracle Oracle, cfg *config.Config, configPath string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		oracle:     oracle,
		config:     cfg,
		configPath: configPath,
		reader:     os.Stdin,
		encoder:    msgpack.NewEncoder(os.Stdout),
		metrics:    newMetrics(),
		audit:      slog.New(log.Default()),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}
	if cfg.Server.CacheSize > 0 {
		s.cache = otter.Must(&otter.Options[string, []suggest.Suggestion]{
			MaximumSize: cfg.Server.CacheSize,
		})
	}
	s.metrics.candidates.Set(float64(oracle.Stats()["candidates"]))
	return s
}

// Start writes the ready frame and serves requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.sendResponse(HealthResponse{Status: "ready"})

	decoder := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		var raw msgpack.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			log.Errorf("Reading request stream: %v", err)
			s.sendError("", "unreadable request stream", 400)
			return fmt.Errorf("reading request stream: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Warnf("Malformed request: %v", err)
			s.sendError("", "malformed request", 400)
			continue
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches req by action
func (s *Server) handleRequest(req Request) {
	start := time.Now()
	action := req.Action
	if action == "" {
		action = ActionSuggest
	}

	code := 200
	if s.limiter != nil && !s.limiter.Allow() {
		code = 429
		s.sendError(req.ID, "rate limit exceeded", code)
	} else {
		switch action {
		case ActionSuggest:
			code = s.handleSuggest(req)
		case ActionAdd:
			code = s.handleAdd(req)
		case ActionStats:
			code = s.handleStats(req)
		case ActionHealth:
			s.sendResponse(HealthResponse{ID: req.ID, Status: "ok"})
		case ActionConfig:
			code = s.handleConfig(req)
		default:
			code = 404
			s.sendError(req.ID, fmt.Sprintf("unknown action: %s", action), code)
		}
	}

	s.metrics.requests.WithLabelValues(action).Inc()
	s.audit.Info("request",
		"id", req.ID,
		"action", action,
		"code", code,
		"elapsed", time.Since(start),
	)
}

// handleSuggest validates the query, clamps the limit and answers from the
// cache when it can
func (s *Server) handleSuggest(req Request) int {
	srv := s.config.Server
	if !utils.IsValidQuery(req.Query, srv.MaxQuery) {
		log.Debug("Rejected query", "id", req.ID, "len", len(req.Query))
		s.sendError(req.ID, fmt.Sprintf("invalid query: at most %d characters of printable UTF-8", srv.MaxQuery), 400)
		return 400
	}

	// a missing limit decodes as 0, a negative one asks for nothing
	if req.Limit < 0 {
		s.sendResponse(SuggestResponse{ID: req.ID, Suggestions: []SuggestionItem{}})
		return 200
	}
	limit := req.Limit
	if limit == 0 {
		limit = srv.DefaultLimit
	}
	if limit > srv.MaxLimit {
		limit = srv.MaxLimit
	}

	start := time.Now()
	suggestions := s.resolve(req.Query, limit)
	elapsed := time.Since(start)
	s.metrics.latency.Observe(elapsed.Seconds())

	items := make([]SuggestionItem, len(suggestions))
	for i, sg := range suggestions {
		items[i] = SuggestionItem{Replacement: sg.Replacement, Display: sg.Display}
	}
	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: items,
		Count:       len(items),
		TimeTaken:   elapsed.Microseconds(),
	})
	return 200
}

func (s *Server) resolve(query string, limit int) []suggest.Suggestion {
	key := strconv.Itoa(limit) + "\x00" + query
	if s.cache != nil {
		if cached, ok := s.cache.GetIfPresent(key); ok {
			s.metrics.cacheHits.Inc()
			return cached
		}
		s.metrics.cacheMiss.Inc()
	}

	var resp suggest.Response
	req := suggest.Request{Query: query, Limit: limit}
	if s.config.Server.ServeDefaults && strings.TrimSpace(query) == "" {
		s.oracle.RequestDefaultSuggestions(req, func(r suggest.Response) { resp = r })
	} else {
		s.oracle.RequestSuggestions(req, func(r suggest.Response) { resp = r })
	}

	if s.cache != nil {
		s.cache.Set(key, resp.Suggestions)
	}
	return resp.Suggestions
}

func (s *Server) handleAdd(req Request) int {
	if len(req.Items) == 0 {
		s.sendError(req.ID, "missing 'items'", 400)
		return 400
	}

	before := s.oracle.Stats()["candidates"]
	s.oracle.AddAll(req.Items...)
	after := s.oracle.Stats()["candidates"]

	if s.cache != nil {
		s.cache.InvalidateAll()
	}
	s.metrics.candidates.Set(float64(after))
	log.Debugf("Added %d of %d items", after-before, len(req.Items))

	s.sendResponse(AddResponse{ID: req.ID, Status: "ok", Added: after - before})
	return 200
}

func (s *Server) handleStats(req Request) int {
	snapshot, err := s.metrics.snapshot()
	if err != nil {
		log.Errorf("Gathering metrics: %v", err)
		s.sendError(req.ID, "failed to gather metrics", 500)
		return 500
	}

	resp := StatsResponse{
		ID:      req.ID,
		Status:  "ok",
		Index:   s.oracle.Stats(),
		Metrics: snapshot,
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			resp.RSS = mem.RSS
		}
	}
	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		resp.CPU = percent[0]
	}
	s.sendResponse(resp)
	return 200
}

func (s *Server) handleConfig(req Request) int {
	if err := s.config.Update(s.configPath, req.MaxLimit, req.DefaultLimit, req.ServeDefaults); err != nil {
		log.Errorf("Saving config to %s: %v", s.configPath, err)
		s.sendError(req.ID, "failed to save config", 500)
		return 500
	}
	if s.cache != nil {
		s.cache.InvalidateAll()
	}

	srv := s.config.Server
	s.sendResponse(ConfigResponse{
		ID:            req.ID,
		Status:        "ok",
		MaxLimit:      srv.MaxLimit,
		DefaultLimit:  srv.DefaultLimit,
		ServeDefaults: srv.ServeDefaults,
	})
	return 200
}

// sendResponse encodes response as one msgpack frame
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error frame and counts it
func (s *Server) sendError(id, message string, code int) {
	s.metrics.errors.WithLabelValues(strconv.Itoa(code)).Inc()
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
