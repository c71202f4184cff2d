package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the dialogue core the HTTP API drives.
type Engine interface {
	ports.StatelessEngine
	Explain(state *domain.State, text string) []domain.Match
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server serves the chat API over a session manager.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager
	Logger   *slog.Logger
	Metrics  http.Handler
	Sanitize runner.SanitizeFunc
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithMaxInputSize caps message and explain text at limit bytes. Zero
// disables the cap.
func WithMaxInputSize(limit int) Option {
	return func(s *Server) {
		s.Sanitize = runner.LimitSanitizer(limit)
	}
}

// NewHandler creates the HTTP handler for the engine. Every saved change of
// a session managed by sessions is pushed to that session's event stream.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	server := &Server{
		Engine:   engine,
		Sessions: sessions,
		Logger:   logging.NewNop(),
		Sanitize: runner.SanitizeInput,
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.Logger)
	sessions.OnChange(server.publish)

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/graph", server.GetGraph)
	r.Post("/explain", server.Explain)
	r.Get("/events", server.SubscribeReload)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.StartSession)
		r.Get("/{id}", server.GetSession)
		r.Delete("/{id}", server.DeleteSession)
		r.Post("/{id}/messages", server.SendMessage)
		r.Get("/{id}/events", server.SubscribeSession)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Parley API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// StartRequest is the optional body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// ExplainRequest is the body of POST /explain.
type ExplainRequest struct {
	Text      string `json:"text"`
	Node      string `json:"node,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse reports one move and its answer.
type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Node      string   `json:"node"`
	Answer    string   `json:"answer"`
	Fallback  bool     `json:"fallback"`
	Keyword   string   `json:"keyword,omitempty"`
	Cost      int      `json:"cost"`
	NoAnswer  bool     `json:"no_answer"`
	Sanitized bool     `json:"sanitized,omitempty"`
	History   []string `json:"history"`
	Turns     int      `json:"turns"`
}

// ExplainResponse lists scored candidates, best first.
type ExplainResponse struct {
	From    string         `json:"from"`
	Matches []domain.Match `json:"matches"`
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	state, reply, err := s.Sessions.Start(r.Context(), body.SessionID)
	noAnswer := errors.Is(err, domain.ErrNoAnswer)
	if err != nil && !noAnswer {
		s.Logger.Error("start session failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, chatResponse(state, reply, noAnswer))
}

// SendMessage handles POST /sessions/{id}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := runner.ChatWith(r.Context(), s.Sessions, s.Sanitize, sessionID, body.Text)
	if err != nil {
		if errors.Is(err, runner.ErrInputTooLarge) || errors.Is(err, runner.ErrInvalidUTF8) {
			s.Logger.Warn("input rejected", "session_id", sessionID, "err", err, "size", len(body.Text))
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.Logger.Error("chat failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if resp.Sanitized {
		s.Logger.Debug("control characters removed from input", "session_id", sessionID)
	}
	out := chatResponse(resp.State, resp.Reply, resp.NoAnswer)
	out.Sanitized = resp.Sanitized
	writeJSON(w, http.StatusOK, out)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// Explain handles POST /explain. The starting node is taken from the request,
// then from the named session, then defaults to root.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	var body ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	text, err := s.Sanitize(body.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if text != body.Text {
		s.Logger.Debug("control characters removed from input", "endpoint", "explain")
	}

	var state *domain.State
	switch {
	case body.Node != "":
		if _, err := s.Engine.Inspect().Lookup(body.Node); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		state = domain.NewState(body.SessionID, body.Node)
	case body.SessionID != "":
		state, err = s.Sessions.Load(r.Context(), body.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	matches := s.Engine.Explain(state, text)
	from := s.Engine.Inspect().Name(s.Engine.Inspect().Root())
	if len(matches) > 0 {
		from = matches[0].From
	} else if state != nil {
		from = state.CurrentNode
	}
	writeJSON(w, http.StatusOK, ExplainResponse{From: from, Matches: matches})
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Inspect().Describe())
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "parley-http",
		"version":     strings.TrimSpace(parley.Version),
		"api_version": apiVersion,
	})
}

// SubscribeSession handles GET /sessions/{id}/events (SSE).
func (s *Server) SubscribeSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	s.Logger.Info("SSE: subscribing to session updates", "session_id", sessionID)

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeReload handles GET /events (SSE), emitting one event per graph change.
func (s *Server) SubscribeReload(w http.ResponseWriter, r *http.Request) {
	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		writeError(w, http.StatusNotImplemented, err)
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: graph changed\n\n")
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

// publish forwards a saved session change to its subscribers.
func (s *Server) publish(_ context.Context, sessionID string, prev, next *domain.State) {
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.Logger.Error("failed to encode state diff", "session_id", sessionID, "err", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(payload))
}

func chatResponse(state *domain.State, reply *domain.Reply, noAnswer bool) ChatResponse {
	resp := ChatResponse{NoAnswer: noAnswer, History: []string{}}
	if state != nil {
		resp.SessionID = state.SessionID
		resp.Node = state.CurrentNode
		resp.History = append(resp.History, state.History...)
		resp.Turns = state.Turns
	}
	if reply != nil {
		resp.Node = reply.Node
		resp.Answer = reply.Answer
		resp.Fallback = reply.Fallback
		resp.Keyword = reply.Keyword
		resp.Cost = reply.Cost
	}
	return resp
}
