// Package server hosts the send-to-drive endpoint and operational routes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/leefowlercu/docexport/internal/document"
	"github.com/leefowlercu/docexport/internal/export"
	"github.com/leefowlercu/docexport/internal/xlsx"
)

// RequestIDHeader carries the request correlation id in and out.
const RequestIDHeader = "X-Request-Id"

// Config holds configuration for the HTTP server.
type Config struct {
	Port              int
	Bind              string
	ReadHeaderTimeout time.Duration
	UserHeader        string
}

// DocumentOpener opens and lists documents by id.
type DocumentOpener interface {
	Open(ctx context.Context, id string) (*document.Document, error)
	List() ([]string, error)
}

// ExportHandler runs an export for an opened document.
type ExportHandler interface {
	Handle(ctx context.Context, doc *document.Document, req export.Request) (*export.Result, error)
}

// ReadyFunc reports whether the server can serve exports.
type ReadyFunc func() error

// Server is the HTTP server. It is safe for concurrent use.
type Server struct {
	mu             sync.RWMutex
	config         Config
	docs           DocumentOpener
	exports        ExportHandler
	logger         *slog.Logger
	server         *http.Server
	router         *chi.Mux
	metricsHandler http.Handler
	readyFunc      ReadyFunc
	started        time.Time
}

// New creates a server exporting documents from docs through exports.
func New(config Config, docs DocumentOpener, exports ExportHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		docs:    docs,
		exports: exports,
		logger:  logger.With("component", "server"),
		started: time.Now(),
	}

	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/api/docs", s.handleListDocs)
	r.Get("/api/docs/{docID}/send-to-drive", s.handleSendToDrive)

	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	return r
}

// SetMetricsHandler sets the Prometheus metrics handler.
func (s *Server) SetMetricsHandler(handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricsHandler = handler
	s.router = s.newRouter()
}

// SetReadyFunc sets the readiness check used by /readyz.
func (s *Server) SetReadyFunc(fn ReadyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyFunc = fn
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

type ctxKey int

const requestIDKey ctxKey = iota

// requestID propagates the caller's request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFromContext returns the request id assigned by the server, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LivezResponse is the response format for /healthz endpoint.
type LivezResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response format for /readyz endpoint.
type ReadyResponse struct {
	Status string        `json:"status"`
	Ready  bool          `json:"ready"`
	Uptime time.Duration `json:"uptime"`
	Error  string        `json:"error,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivezResponse{Status: "alive"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	fn := s.readyFunc
	s.mu.RUnlock()

	resp := ReadyResponse{Status: "ready", Ready: true, Uptime: time.Since(s.started)}
	if fn != nil {
		if err := fn(); err != nil {
			resp.Status = "unavailable"
			resp.Ready = false
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListDocsResponse is the response format for /api/docs.
type ListDocsResponse struct {
	Docs []string `json:"docs"`
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.docs.List()
	if err != nil {
		s.logger.Warn("failed to list documents", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ListDocsResponse{Docs: ids})
}

// handleSendToDrive exports a document to Google Drive and returns its share link.
func (s *Server) handleSendToDrive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID := chi.URLParam(r, "docID")
	userID := ""
	if s.config.UserHeader != "" {
		userID = r.Header.Get(s.config.UserHeader)
	}

	// The query holds the access token; only the path is logged.
	logger := s.logger.With(
		"request_id", RequestIDFromContext(ctx),
		"path", r.URL.Path,
		"doc_id", docID,
		"user_id", userID,
	)

	req := export.RequestFromQuery(docID, userID, r.URL.Query())

	// A missing token is rejected before the document is looked up.
	if err := export.CheckCredential(req); err != nil {
		status := statusFor(err)
		logger.Warn("send to drive rejected", "status", status, "error", err)
		writeJSONError(w, status, err.Error())
		return
	}

	doc, err := s.docs.Open(ctx, docID)
	if err != nil {
		status := statusFor(err)
		logger.Warn("failed to open document", "status", status, "error", err)
		writeJSONError(w, status, err.Error())
		return
	}

	result, err := s.exports.Handle(ctx, doc, req)
	if err != nil {
		status := statusFor(err)
		logger.Warn("send to drive failed", "status", status, "error", err)
		writeJSONError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusFor maps export errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, export.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrInvalidID),
		errors.Is(err, xlsx.ErrUnknownTable),
		errors.Is(err, xlsx.ErrEmptyDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DirReady returns a ReadyFunc checking that dir exists and is a directory.
func DirReady(dir string) ReadyFunc {
	return func() error {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("documents directory unavailable; %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("documents path %s is not a directory", dir)
		}
		return nil
	}
}

// Start starts the HTTP server and blocks until it's stopped.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Bind, fmt.Sprintf("%d", s.config.Port))

	s.mu.Lock()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	server := s.server
	s.mu.Unlock()

	s.logger.Info("http server listening", "addr", addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error; %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server; %w", err)
	}

	return nil
}
