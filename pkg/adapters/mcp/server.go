// Package mcp exposes authoring tools and session playback to MCP clients.
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

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const scriptsURI = "parley://scripts"

// SessionResponse is the structured result of the playback tools.
type SessionResponse struct {
	State    *domain.SessionState `json:"state" jsonschema_description:"The persisted session snapshot"`
	Unit     domain.Unit          `json:"unit" jsonschema_description:"What to show next: a dialogue line, a choice or the end"`
	Feedback *domain.Feedback     `json:"feedback,omitempty" jsonschema_description:"Outcome of the choice just made"`
}

// SessionArgs are the arguments of the playback tools.
type SessionArgs struct {
	Script    string `json:"script,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ChoiceID  string `json:"choice_id,omitempty"`
}

// Server exposes the compiler and, when a session manager is given, playback.
type Server struct {
	sessions    *session.Manager
	compileOpts []compiler.Option
	mcpServer   *server.MCPServer
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompilerOptions sets the options used by the authoring tools.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(s *Server) {
		s.compileOpts = append(s.compileOpts, opts...)
	}
}

// NewServer creates a new MCP server. mgr may be nil, in which case only
// the authoring tools are registered.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  mgr,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerAuthoringTools()
	if mgr != nil {
		s.registerSessionTools()
		s.registerResources()
	}
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

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

func (s *Server) registerAuthoringTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_document",
		mcp.WithDescription("Validate a dialogue document and list every error and warning."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Authoring or runtime JSON")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("compile_document",
		mcp.WithDescription("Compile an authoring document into the runtime script JSON."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Authoring JSON")),
	), s.handleCompile)

	s.mcpServer.AddTool(mcp.NewTool("import_script",
		mcp.WithDescription("Rebuild an authoring document (with auto-layout) from a runtime script."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Runtime or authoring JSON")),
	), s.handleImport)

	s.mcpServer.AddTool(mcp.NewTool("graph_mermaid",
		mcp.WithDescription("Render a dialogue document as a Mermaid flowchart."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Authoring or runtime JSON")),
		mcp.WithString("lang", mcp.Description("Label language (default en)")),
		mcp.WithString("current_node", mcp.Description("Node to highlight as current (optional)")),
	), s.handleMermaid)
}

func (s *Server) registerSessionTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_scripts",
		mcp.WithDescription("List the scripts sessions can be started with."),
	), s.handleListScripts)

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new session playing a script. Returns its first unit."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script name")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the current unit of a session without moving it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCurrent))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Leave the current dialogue line."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Pick an option at the current choice."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("choice_id", mcp.Required(), mcp.Description("ID of the chosen option")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleChoose))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(scriptsURI, "Available Scripts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.sessions.Scripts().ListScripts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list scripts: %w", err)
		}
		data, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: scriptsURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := compiler.Import([]byte(data), s.compileOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}

	vs := doc.Validate()
	if len(vs) == 0 {
		return mcp.NewToolResultText("valid: no violations"), nil
	}
	var sb strings.Builder
	if vs.HasErrors() {
		sb.WriteString("invalid:\n")
	} else {
		sb.WriteString("valid with warnings:\n")
	}
	for _, v := range vs {
		fmt.Fprintf(&sb, "- %s\n", v.Error())
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := compiler.Import([]byte(data), s.compileOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}
	out, err := compiler.CompileJSON(doc, s.compileOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile refused: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := compiler.Import([]byte(data), s.compileOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}
	out, err := compiler.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := compiler.Import([]byte(data), s.compileOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}

	opts := graph.Options{Lang: request.GetString("lang", domain.LangEN)}
	if current := request.GetString("current_node", ""); current != "" {
		opts.Overlay = &graph.GraphOverlay{CurrentNode: current}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(doc, opts)), nil
}

func (s *Server) handleListScripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.sessions.Scripts().ListScripts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	if args.Script == "" {
		return SessionResponse{}, errors.New("script is required")
	}
	sessionID := uuid.NewString()
	state, unit, err := s.sessions.Start(ctx, sessionID, args.Script)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Info("session started", "session_id", sessionID, "script", args.Script)
	return SessionResponse{State: state, Unit: unit}, nil
}

func (s *Server) handleCurrent(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, unit, err := s.sessions.Current(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("get session failed: %w", err)
	}
	return SessionResponse{State: state, Unit: unit}, nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, unit, err := s.sessions.Advance(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("advance failed: %w", err)
	}
	return SessionResponse{State: state, Unit: unit}, nil
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, fb, unit, err := s.sessions.Choose(ctx, args.SessionID, args.ChoiceID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("choose failed: %w", err)
	}
	return SessionResponse{State: state, Unit: unit, Feedback: &fb}, nil
}
