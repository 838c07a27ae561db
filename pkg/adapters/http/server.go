// Package http exposes authoring tools and session playback over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds documents accepted by the authoring endpoints.
const maxBodySize = 4 << 20

// Server holds the HTTP handlers.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	compileOpts []compiler.Option
	gatherer    prometheus.Gatherer
	newID       func() string
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompilerOptions sets the options used by /validate, /compile and /import.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(s *Server) {
		s.compileOpts = append(s.compileOpts, opts...)
	}
}

// WithMetrics mounts GET /metrics serving the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithSessionIDGenerator overrides the uuid generator used for new sessions.
func WithSessionIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewServer creates a server backed by a session manager.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: mgr,
		Streams:  NewStreamManager(),
		newID:    uuid.NewString,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/validate", s.Validate)
	r.Post("/compile", s.Compile)
	r.Post("/import", s.Import)

	r.Get("/scripts", s.ListScripts)
	r.Post("/scripts/{scriptID}/sessions", s.StartSession)

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/advance", s.Advance)
		r.Post("/choose", s.Choose)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
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

// ViolationView is the wire form of a validation finding.
type ViolationView struct {
	Severity domain.Severity `json:"severity"`
	Message  string          `json:"message"`
}

// ValidateResponse is returned by POST /validate.
type ValidateResponse struct {
	Valid      bool            `json:"valid"`
	Violations []ViolationView `json:"violations"`
}

// SessionResponse describes a session after an action.
type SessionResponse struct {
	State    *domain.SessionState `json:"state"`
	Unit     domain.Unit          `json:"unit"`
	Feedback *domain.Feedback     `json:"feedback,omitempty"`
}

// ChooseRequest is the body of POST /sessions/{sessionID}/choose.
type ChooseRequest struct {
	ChoiceID string `json:"choiceId"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error      string          `json:"error"`
	Violations []ViolationView `json:"violations,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "parley-http",
		"version": strings.TrimSpace(parley.Version),
	})
}

// Validate reports every violation of an authoring document. An invalid
// document still answers 200; only unreadable input is a client error.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	doc, err := compiler.Import(data, s.compileOpts...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	vs := doc.Validate()
	s.writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:      !vs.HasErrors(),
		Violations: violationViews(vs),
	})
}

// Compile turns an authoring document into the runtime script JSON.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	doc, err := compiler.Import(data, s.compileOpts...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := compiler.CompileJSON(doc, s.compileOpts...)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Error("compile response write failed", "err", err)
	}
}

// Import rebuilds an authoring document from either schema.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	doc, err := compiler.Import(data, s.compileOpts...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := compiler.MarshalDocument(doc)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Error("import response write failed", "err", err)
	}
}

// ListScripts handles GET /scripts.
func (s *Server) ListScripts(w http.ResponseWriter, r *http.Request) {
	names, err := s.Sessions.Scripts().ListScripts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// StartSession creates a session playing a registered script.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	scriptID := chi.URLParam(r, "scriptID")
	sessionID := s.newID()

	state, unit, err := s.Sessions.Start(r.Context(), sessionID, scriptID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("session started", "session_id", sessionID, "script", scriptID)
	s.publish(sessionID, unit)
	s.writeJSON(w, http.StatusCreated, SessionResponse{State: state, Unit: unit})
}

// GetSession returns the current unit without moving the session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, unit, err := s.Sessions.Current(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{State: state, Unit: unit})
}

// Advance leaves the current dialogue line.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, unit, err := s.Sessions.Advance(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.publish(sessionID, unit)
	s.writeJSON(w, http.StatusOK, SessionResponse{State: state, Unit: unit})
}

// Choose selects an option at the current choice node.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body ChooseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil || body.ChoiceID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("request body must carry a choiceId"))
		return
	}

	state, fb, unit, err := s.Sessions.Choose(r.Context(), sessionID, body.ChoiceID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.publish(sessionID, unit)
	s.writeJSON(w, http.StatusOK, SessionResponse{State: state, Unit: unit, Feedback: &fb})
}

// DeleteSession removes a session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.Sessions.Delete(r.Context(), sessionID); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents streams the units of one session as server-sent events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: unit\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) publish(sessionID string, unit domain.Unit) {
	data, err := json.Marshal(unit)
	if err != nil {
		s.logger.Warn("failed to encode unit for subscribers", "session_id", sessionID, "err", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(data))
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return nil, false
	}
	return data, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{
		Error:      err.Error(),
		Violations: violationViews(domain.ValidationViolations(err)),
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var choiceErr *domain.InvalidChoiceSelectionError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrScriptNotFound):
		return http.StatusNotFound
	case errors.As(err, &choiceErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyStarted),
		errors.Is(err, domain.ErrNotAtDialogue),
		errors.Is(err, domain.ErrNotAtChoice),
		errors.Is(err, domain.ErrSessionEnded),
		errors.Is(err, domain.ErrNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func violationViews(vs domain.Violations) []ViolationView {
	out := make([]ViolationView, 0, len(vs))
	for _, v := range vs {
		out = append(out, ViolationView{Severity: v.Severity, Message: v.Err.Error()})
	}
	return out
}
