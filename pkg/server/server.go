package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/internal/utils"
	"github.com/direitospcd/pcdserve/pkg/analyze"
	"github.com/direitospcd/pcdserve/pkg/config"
	"github.com/direitospcd/pcdserve/pkg/debounce"
	"github.com/direitospcd/pcdserve/pkg/rank"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers search requests read from an input stream.
type Server struct {
	engine   *rank.Engine
	analyzer *analyze.Analyzer
	config   *config.Config
	// nil when live searches are answered immediately
	live *debounce.Debouncer

	decoder *msgpack.Decoder

	// guards writer and encoder; debounced searches write from timer goroutines
	mu      sync.Mutex
	writer  *bufio.Writer
	encoder *msgpack.Encoder
}

// NewServer creates a server on stdin/stdout.
func NewServer(engine *rank.Engine, analyzer *analyze.Analyzer, cfg *config.Config) *Server {
	return NewServerWithIO(engine, analyzer, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on the given streams.
func NewServerWithIO(engine *rank.Engine, analyzer *analyze.Analyzer, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		engine:   engine,
		analyzer: analyzer,
		config:   cfg,
		decoder:  msgpack.NewDecoder(bufio.NewReader(r)),
		writer:   bufio.NewWriter(w),
	}
	s.encoder = msgpack.NewEncoder(s.writer)
	if d := cfg.Debounce(); d > 0 {
		s.live = debounce.New(d)
	}
	return s
}

// Start sends the ready frame and serves until the input ends. A pending
// live search is answered before Start returns.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.sendResponse(StatusResponse{Status: "ready"})

	defer s.shutdown()
	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("Input closed")
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleRaw(raw)
	}
}

func (s *Server) shutdown() {
	if s.live != nil {
		s.live.Flush()
		s.live.Stop()
	}
}

func (s *Server) handleRaw(raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "invalid msgpack request", 400)
		return
	}
	s.handleRequest(req)
}

// handleRequest dispatches on the action. Everything except a live search
// first settles the pending live search.
func (s *Server) handleRequest(req Request) {
	action := req.Action
	if action == "" && req.Query != "" {
		action = ActionSearch
	}

	if action == ActionSearch && req.Live && s.live != nil {
		s.live.Trigger(func() { s.handleSearch(req) })
		return
	}
	if s.live != nil {
		s.live.Flush()
	}

	switch action {
	case ActionSearch:
		s.handleSearch(req)
	case ActionSuggest:
		s.handleSuggest(req)
	case ActionAnalyze:
		s.handleAnalyze(req)
	case ActionStats:
		s.handleStats(req)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	case "":
		s.sendError(req.ID, "missing 'action' or 'q' parameter", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", action), 400)
	}
}

// limit clamps a requested count to [1, max_limit], using def when unset.
func (s *Server) limit(requested, def int) int {
	n := requested
	if n < 1 {
		n = def
	}
	if maxLimit := s.config.Server.MaxLimit; maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n
}

func (s *Server) handleSearch(req Request) {
	// a blank query is a valid search with no results
	query := utils.ClampQuery(req.Query, s.engine.Options().MaxQueryLength)

	start := time.Now()
	resp := s.engine.Search(query)
	elapsed := time.Since(start)

	results := resp.Results
	if req.Limit > 0 {
		if n := s.limit(req.Limit, len(results)); n < len(results) {
			results = results[:n]
		}
	}

	out := SearchResponse{
		ID:        req.ID,
		Results:   make([]SearchResult, len(results)),
		Listing:   resp.Listing,
		Count:     len(results),
		TimeTaken: elapsed.Microseconds(),
	}
	for i, r := range results {
		out.Results[i] = SearchResult{Category: r.Category, Score: r.Score, Reasons: toReasons(r.Reasons)}
	}
	if resp.Location != nil {
		out.Location = &Location{Kind: string(resp.Location.Kind), UF: resp.Location.UF, Name: resp.Location.Name}
	}
	for _, c := range resp.Corrections {
		out.Corrections = append(out.Corrections, Correction{Term: c.Term, Word: c.Word, Distance: c.Distance})
	}

	log.Debugf("Search %q: %d results in %v", query, out.Count, elapsed)
	s.sendResponse(out)
}

func toReasons(reasons []rank.Reason) []Reason {
	if len(reasons) == 0 {
		return nil
	}
	out := make([]Reason, len(reasons))
	for i, r := range reasons {
		out[i] = Reason{Kind: string(r.Kind), Term: r.Term, Keyword: r.Keyword, Points: r.Points}
	}
	return out
}

func (s *Server) handleSuggest(req Request) {
	prefix := utils.ClampQuery(req.Prefix, s.engine.Options().MaxQueryLength)
	if prefix == "" {
		s.sendError(req.ID, "missing 'p' parameter", 400)
		return
	}

	start := time.Now()
	out := SuggestResponse{ID: req.ID, Suggestions: []Suggestion{}}
	if utils.IsValidInput(prefix) {
		found := s.engine.Suggest(prefix, s.limit(req.Limit, s.config.Server.SuggestLimit))
		ranks := utils.CreateRankList(len(found))
		for i, sg := range found {
			out.Suggestions = append(out.Suggestions, Suggestion{Word: sg.Word, Rank: ranks[i]})
		}
	} else {
		log.Debugf("Prefix %q filtered out", prefix)
	}
	out.Count = len(out.Suggestions)
	out.TimeTaken = time.Since(start).Microseconds()
	s.sendResponse(out)
}

func (s *Server) handleAnalyze(req Request) {
	if s.analyzer == nil {
		s.sendError(req.ID, "document analysis unavailable", 500)
		return
	}
	if req.Text == "" && req.File == "" {
		s.sendError(req.ID, "missing 'text' parameter", 400)
		return
	}

	start := time.Now()
	results := s.analyzer.Analyze(req.Text, req.File)
	out := AnalyzeResponse{
		ID:        req.ID,
		Results:   make([]Analysis, len(results)),
		Count:     len(results),
		TimeTaken: time.Since(start).Microseconds(),
	}
	for i, r := range results {
		out.Results[i] = Analysis{Category: r.Category, Score: r.Score, Matches: r.Matches}
	}
	s.sendResponse(out)
}

func (s *Server) handleStats(req Request) {
	st := s.engine.Stats()
	s.sendResponse(StatsResponse{
		ID:         req.ID,
		Version:    st.Version,
		Categories: st.Categories,
		Keywords:   st.Keywords,
		Vocabulary: st.Vocabulary,
		CidRanges:  st.CidRanges,
		States:     st.States,
		Cities:     st.Cities,
		DebounceMs: int(s.config.Debounce().Milliseconds()),
	})
}

// sendResponse encodes one frame and flushes it.
func (s *Server) sendResponse(response any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Marshaling response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
