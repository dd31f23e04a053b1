// Package server provides the kensaku HTTP API: the vector service protocol, semantic search,
// session records, status and metrics.
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/storage"
	"github.com/hyperjump/kensaku/internal/vector"
	"github.com/hyperjump/kensaku/pkg/utils"
)

// BackendProvider exposes the selected backend and how it was chosen. *vector.Selector
// implements it.
type BackendProvider interface {
	Backend() (vector.Backend, error)
	State() vector.State
	Reason() error
}

// Server is the HTTP server for the kensaku API.
type Server struct {
	backends BackendProvider
	search   *search.Service
	sessions storage.SessionStore
	gatherer prometheus.Gatherer
	config   config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithSessions enables the /api/v1/sessions routes.
func WithSessions(store storage.SessionStore) Option {
	return func(s *Server) { s.sessions = store }
}

// WithGatherer sets the registry served at /metrics. Defaults to the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a server with the given dependencies.
func NewServer(backends BackendProvider, svc *search.Service, cfg config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		backends: backends,
		search:   svc,
		gatherer: prometheus.DefaultGatherer,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/upsert", s.handleUpsert)
		r.Post("/query", s.handleQuery)
		r.Post("/fetch", s.handleFetch)
		r.Post("/delete", s.handleDelete)
		r.Get("/info", s.handleInfo)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
		if s.sessions != nil {
			r.Get("/sessions", s.handleListSessions)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Put("/sessions/{id}", s.handlePutSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
		}
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requireToken rejects vector protocol calls without the configured bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.config.Token)) != 1 {
				s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
