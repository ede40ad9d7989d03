package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/longhand/internal/logger"
	"github.com/bastiangx/longhand/pkg/expand"
	"github.com/bastiangx/longhand/pkg/learn"
)

// DefaultMaxTextLen bounds a single expand request when the config
// does not set a limit.
const DefaultMaxTextLen = 10000

var log = logger.New("ipc")

// Server handles msgpack IPC for the expansion engine. The learning
// store is optional; learn requests fail cleanly without one.
type Server struct {
	exp     *expand.Expander
	store   learn.Store
	maxText int
	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
}

// NewServer creates a server on stdin/stdout. maxTextLen bounds the
// byte length of a single expand request; 0 means DefaultMaxTextLen.
func NewServer(exp *expand.Expander, store learn.Store, maxTextLen int) *Server {
	return NewServerIO(exp, store, maxTextLen, os.Stdin, os.Stdout)
}

// NewServerIO creates a server on an arbitrary reader/writer pair.
func NewServerIO(exp *expand.Expander, store learn.Store, maxTextLen int, r io.Reader, w io.Writer) *Server {
	if maxTextLen <= 0 {
		maxTextLen = DefaultMaxTextLen
	}
	return &Server{
		exp:     exp,
		store:   store,
		maxText: maxTextLen,
		dec:     msgpack.NewDecoder(r),
		enc:     msgpack.NewEncoder(w),
	}
}

// Start runs the request loop until EOF. Decode errors on the framed
// stream are fatal; per-request errors are answered, never fatal.
func (s *Server) Start() error {
	log.SetLevel(charmlog.GetLevel())
	log.Debug("Starting expansion server")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Cmd {
	case "expand":
		s.handleExpand(req)
	case "learn":
		s.handleLearn(req)
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown cmd: %q", req.Cmd), 400)
	}
}

func (s *Server) handleExpand(req Request) {
	if req.Text == "" {
		s.sendError(req.ID, "missing 't' field", 400)
		return
	}
	if len(req.Text) > s.maxText {
		s.sendError(req.ID, fmt.Sprintf("text exceeds %d bytes", s.maxText), 400)
		return
	}

	start := time.Now()
	report := s.exp.ExpandDetailed(req.Text, req.Spaceless)
	elapsed := time.Since(start)

	resp := ExpandResponse{
		ID:         req.ID,
		Expanded:   report.Expanded,
		Confidence: report.Confidence,
		TimeTaken:  elapsed.Milliseconds(),
		Ambiguous:  report.AmbiguousIndexes,
		LLMErr:     report.LLMErr,
	}
	if req.Detailed {
		resp.Tokens = make([]TokenInfo, len(report.Tokens))
		for i, tr := range report.Tokens {
			resp.Tokens[i] = TokenInfo{
				Original:   tr.Original,
				Expanded:   tr.Expanded,
				Confidence: tr.Confidence,
				Outcome:    tr.Outcome.String(),
			}
		}
	}
	s.send(resp)
}

func (s *Server) handleLearn(req Request) {
	if s.store == nil {
		s.sendError(req.ID, "no learning store configured", 400)
		return
	}
	ctx := context.Background()

	switch req.Action {
	case "record":
		if req.Abbrev == "" || req.Word == "" {
			s.sendError(req.ID, "record needs 'ab' and 'w'", 400)
			return
		}
		if err := s.store.Record(ctx, req.Abbrev, req.Word); err != nil {
			log.Errorf("Recording correction: %v", err)
			s.sendError(req.ID, "record failed", 500)
			return
		}
		// Recorded preferences take effect immediately as overrides.
		s.exp.AddAbbreviations(map[string]string{req.Abbrev: req.Word})
		s.send(LearnResponse{ID: req.ID, Status: "recorded"})

	case "get":
		if req.Abbrev == "" {
			s.sendError(req.ID, "get needs 'ab'", 400)
			return
		}
		word, err := s.store.Preference(ctx, req.Abbrev)
		if err != nil {
			log.Errorf("Reading preference: %v", err)
			s.sendError(req.ID, "get failed", 500)
			return
		}
		s.send(LearnResponse{ID: req.ID, Status: "ok", Word: word})

	case "clear":
		if err := s.store.Clear(ctx); err != nil {
			log.Errorf("Clearing store: %v", err)
			s.sendError(req.ID, "clear failed", 500)
			return
		}
		s.send(LearnResponse{ID: req.ID, Status: "cleared"})

	default:
		s.sendError(req.ID, fmt.Sprintf("unknown learn action: %q", req.Action), 400)
	}
}

func (s *Server) send(resp any) {
	if err := s.enc.Encode(resp); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
