package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource under which the current graph is published.
const GraphURI = "parley://graph"

// Engine defines what the MCP server needs from the dialogue core.
type Engine interface {
	ports.StatelessEngine
	Explain(state *domain.State, text string) []domain.Match
}

// ChatArgs are the arguments of the chat tool.
type ChatArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// StartArgs are the arguments of the start_session tool.
type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// ExplainArgs are the arguments of the explain tool.
type ExplainArgs struct {
	Text      string `json:"text"`
	Node      string `json:"node,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ExplainResult lists the scored candidates, best first.
type ExplainResult struct {
	From    string         `json:"from" jsonschema_description:"Node the text was scored from"`
	Matches []domain.Match `json:"matches" jsonschema_description:"Candidate transitions, lowest cost first"`
}

// Server exposes a parley engine as an MCP server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	sanitize  runner.SanitizeFunc
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize caps chat and explain text at limit bytes. Zero disables
// the cap.
func WithMaxInputSize(limit int) Option {
	return func(s *Server) {
		s.sanitize = runner.LimitSanitizer(limit)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		sanitize:  runner.SanitizeInput,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a conversation at the graph root and return its greeting. A session_id is generated when omitted."),
		mcp.WithString("session_id", mcp.Description("Conversation ID (optional)")),
		mcp.WithOutputSchema[runner.RichResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("chat",
		mcp.WithDescription("Send user text to a conversation and get the bot's answer. Unknown sessions start at root."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("User message")),
		mcp.WithOutputSchema[runner.RichResponse](),
	), mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("explain",
		mcp.WithDescription("Score text against the keywords leaving a node without moving any conversation."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to score")),
		mcp.WithString("node", mcp.Description("Node to score from (defaults to the session's node, then root)")),
		mcp.WithString("session_id", mcp.Description("Conversation whose node is used when node is omitted")),
		mcp.WithOutputSchema[ExplainResult](),
	), mcp.NewStructuredToolHandler(s.handleExplain))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full graph definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.engine.Inspect().Describe())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (runner.RichResponse, error) {
	state, reply, err := s.sessions.Start(ctx, args.SessionID)
	noAnswer := errors.Is(err, domain.ErrNoAnswer)
	if err != nil && !noAnswer {
		return runner.RichResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return runner.RichResponse{State: state, Reply: reply, NoAnswer: noAnswer}, nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args ChatArgs) (runner.RichResponse, error) {
	if args.SessionID == "" {
		return runner.RichResponse{}, errors.New("session_id is required")
	}
	resp, err := runner.ChatWith(ctx, s.sessions, s.sanitize, args.SessionID, args.Text)
	if err != nil {
		s.logger.Warn("MCP chat failed", "session_id", args.SessionID, "err", err, "size", len(args.Text))
		return runner.RichResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	if resp.Sanitized {
		s.logger.Debug("control characters removed from input", "session_id", args.SessionID)
	}
	return *resp, nil
}

func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest, args ExplainArgs) (ExplainResult, error) {
	text, err := s.sanitize(args.Text)
	if err != nil {
		return ExplainResult{}, fmt.Errorf("input rejected: %w", err)
	}

	g := s.engine.Inspect()
	state := domain.NewState(args.SessionID, g.Name(g.Root()))
	switch {
	case args.Node != "":
		if _, err := g.Lookup(args.Node); err != nil {
			return ExplainResult{}, err
		}
		state.CurrentNode = args.Node
	case args.SessionID != "":
		stored, err := s.sessions.Load(ctx, args.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return ExplainResult{}, err
		}
		if stored != nil {
			state = stored
		}
	}

	matches := s.engine.Explain(state, text)
	if matches == nil {
		matches = []domain.Match{}
	}
	return ExplainResult{From: state.CurrentNode, Matches: matches}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Inspect().Describe())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
