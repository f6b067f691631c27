// Package server provides the netdiag HTTP API.
//
// Clients upload a table and get back the topology document or a diagram:
//
//	POST /api/topology?format=yaml|json&delimiter=,
//	POST /api/diagram?format=png|svg|dot|d2&engine=neato&detailed=true&scale=2
//	GET  /healthz
//	GET  /metrics
//
// Errors are JSON objects {"code": ..., "error": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/netdiag/pkg/pipeline"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// DefaultMaxBodyBytes bounds uploaded tables.
const DefaultMaxBodyBytes = 10 << 20

// Options configures a Server.
type Options struct {
	Runner       *pipeline.Runner
	Logger       *log.Logger
	Registry     *prometheus.Registry // served at /metrics; nil disables the endpoint
	MaxBodyBytes int64
	Timeout      time.Duration
}

// Server is the HTTP API server.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	registry *prometheus.Registry
	maxBody  int64
	timeout  time.Duration
	router   *chi.Mux
	server   *http.Server
}

// New creates a Server with routes and middleware configured.
func New(opts Options) *Server {
	s := &Server{
		runner:   opts.Runner,
		logger:   opts.Logger,
		registry: opts.Registry,
		maxBody:  opts.MaxBodyBytes,
		timeout:  opts.Timeout,
		router:   chi.NewRouter(),
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/topology", s.handleTopology)
		r.Post("/diagram", s.handleDiagram)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}
