// Package server exposes debates over HTTP: triggering, snapshots,
// observer tokens and a websocket update stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/events"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/token"
)

const maxTopicLen = 500

// Runner starts and drives debates.
type Runner interface {
	Trigger(ctx context.Context, requestID, topic string) (string, error)
	Advance(ctx context.Context, id string) error
}

// Snapshots reads stored debates.
type Snapshots interface {
	Get(ctx context.Context, id string) (*debate.Debate, error)
}

// Stream is the subscription side of the event hub.
type Stream interface {
	SubscribeFrom(channel string, after uint64, handler events.Handler) string
	Unsubscribe(id string) bool
	Done(channel string) <-chan struct{}
}

type Server struct {
	ctx     context.Context
	runner  Runner
	debates Snapshots
	stream  Stream
	tokens  *token.Issuer
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// New creates a Server. Debates triggered over HTTP run until ctx is
// cancelled. A nil tokens issuer disables observer authentication.
func New(ctx context.Context, runner Runner, debates Snapshots, stream Stream, tokens *token.Issuer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ctx:     ctx,
		runner:  runner,
		debates: debates,
		stream:  stream,
		tokens:  tokens,
		logger:  logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("POST /debates", s.handleCreateDebate)
	mux.HandleFunc("GET /debates/{id}", s.handleGetDebate)
	mux.HandleFunc("POST /debates/{id}/token", s.handleIssueToken)
	mux.HandleFunc("GET /debates/{id}/updates", s.handleUpdates)

	return chainMiddlewares(mux, s.withLogging, withRequestID, withCORS)
}

// Wait blocks until every debate started by this server has returned.
func (s *Server) Wait() { s.wg.Wait() }

type createDebateRequest struct {
	Topic string `json:"topic"`
}

type createDebateResponse struct {
	DebateID string `json:"debateId"`
	Channel  string `json:"channel"`
	Topic    string `json:"topic"`
}

func (s *Server) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req createDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		badRequest(w, "topic is required")
		return
	}
	if len(topic) > maxTopicLen {
		badRequest(w, "topic is too long")
		return
	}

	requestID := logging.RequestID(r.Context())
	id, err := s.runner.Trigger(r.Context(), requestID, topic)
	if errors.Is(err, debate.ErrDebateExists) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "debate already exists"})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	logger := logging.WithDebate(s.logger, id).With("request_id", requestID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.runner.Advance(s.ctx, id); err != nil {
			logger.Error("debate did not complete", "error", err)
			return
		}
		logger.Info("debate completed")
	}()

	writeJSON(w, http.StatusAccepted, createDebateResponse{
		DebateID: id,
		Channel:  events.Channel(id),
		Topic:    topic,
	})
}

func (s *Server) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if s.tokens == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "observer tokens are not configured"})
		return
	}
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	tok, err := s.tokens.Issue(events.Channel(d.ID), []string{events.Topic})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	channel := events.Channel(d.ID)
	if s.tokens != nil {
		if _, err := s.tokens.Validate(r.URL.Query().Get("token"), channel, events.Topic); err != nil {
			logging.FromContext(r.Context(), s.logger).Warn("observer rejected", "debate_id", d.ID, "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "a valid observer token is required"})
			return
		}
	}
	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(w, "after must be a sequence number")
			return
		}
		after = n
	}
	s.serveUpdates(w, r, channel, after)
}

// lookup loads the debate named in the path, writing the error response
// when it cannot.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*debate.Debate, bool) {
	id := r.PathValue("id")
	d, err := s.debates.Get(r.Context(), id)
	if errors.Is(err, debate.ErrDebateNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "debate not found"})
		return nil, false
	}
	if err != nil {
		s.internalError(w, r, err)
		return nil, false
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), s.logger).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
