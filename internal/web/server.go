// Package web exposes sessions over a small JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"persona-chatter/internal/persona"
	"persona-chatter/internal/session"
	"persona-chatter/internal/storage"
)

type Server struct {
	router   *chi.Mux
	addr     string
	sessions *session.Manager
	personas *persona.Store
	recorder storage.Recorder
	checks   map[string]func() bool
	logger   *slog.Logger
	srv      *http.Server
}

type Option func(*Server)

// WithRecorder serves the interaction log of each session.
func WithRecorder(rec storage.Recorder) Option {
	return func(s *Server) { s.recorder = rec }
}

// WithCheck reports a component as running or stopped on /health.
func WithCheck(name string, running func() bool) Option {
	return func(s *Server) { s.checks[name] = running }
}

// NewServer serves the sessions of one registry. Only ids minted by
// Manager.Create are reachable; keys of other front-ends are not UUIDs.
func NewServer(addr string, sessions *session.Manager, personas *persona.Store, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		addr:     addr,
		sessions: sessions,
		personas: personas,
		checks:   make(map[string]func() bool),
		logger:   logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Get("/personas", s.listPersonas)
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/messages", s.postMessage)
			r.Post("/new", s.newChat)
			r.Put("/persona", s.selectPersona)
			r.Post("/debug", s.toggleDebug)
			r.Get("/interactions", s.listInteractions)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start blocks until the server stops; it returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply   string       `json:"reply"`
	Session session.View `json:"session"`
}

type personaRequest struct {
	Code string `json:"code"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	for name, running := range s.checks {
		if running() {
			body[name] = "running"
		} else {
			body[name] = "stopped"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listPersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.personas.All())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.logger.Info("session created", "session", sess.ID())
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "bad_request", Detail: err.Error()})
		return
	}

	reply, err := sess.Submit(r.Context(), req.Text)
	if err != nil {
		s.writeSubmitError(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply, Session: sess.View()})
}

func (s *Server) newChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.NewChat()
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) selectPersona(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "bad_request", Detail: err.Error()})
		return
	}
	switch err := sess.SelectPersona(req.Code); {
	case errors.Is(err, session.ErrUnknownPersona):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "unknown_persona"})
	case errors.Is(err, session.ErrPersonaLocked):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Code: "persona_locked"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Code: "internal"})
	default:
		writeJSON(w, http.StatusOK, sess.View())
	}
}

func (s *Server) toggleDebug(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.ToggleDebug()
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) listInteractions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.recorder == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "interaction log is disabled", Code: "log_disabled"})
		return
	}
	events, err := s.recorder.LoadInteractions()
	if err != nil {
		s.logger.Error("failed to load interactions", "session", sess.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to load interactions", Code: "internal"})
		return
	}
	out := make([]storage.Event, 0)
	for _, ev := range events {
		if ev.SessionID == sess.ID() {
			out = append(out, ev)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	var (
		sess *session.Session
		ok   bool
	)
	if _, err := uuid.Parse(id); err == nil {
		sess, ok = s.sessions.Get(id)
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "session not found", Code: "not_found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) writeSubmitError(w http.ResponseWriter, sess *session.Session, err error) {
	var n *session.Notice
	if !errors.As(err, &n) {
		s.logger.Error("submission failed", "session", sess.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "unexpected error", Code: "internal"})
		return
	}
	body := errorBody{Error: n.Summary, Code: n.Kind.String()}
	if sess.View().Debug {
		body.Detail = n.Detail
	}
	writeJSON(w, statusFor(n.Kind), body)
}

func statusFor(k session.Kind) int {
	switch k {
	case session.KindValidation:
		return http.StatusBadRequest
	case session.KindTransport, session.KindMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
