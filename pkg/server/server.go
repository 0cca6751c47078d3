// Package server exposes the merge pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                       liveness probe
//	GET  /metrics                       Prometheus metrics (when a registry is configured)
//	POST /v1/merge                      merge inline inputs, optionally saving the result
//	POST /v1/decode                     decode a manifest to JSON, 422 on malformed lines
//	GET  /v1/projects/{project}/graph   latest saved graph in the text format
//
// Every response carries an X-Request-ID header. A valid UUID sent by the
// client is echoed; otherwise a new one is generated.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/pipeline"
	"github.com/matzehuels/depmerge/pkg/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// Config wires the server's collaborators. Only Runner is required.
type Config struct {
	Addr      string
	Runner    *pipeline.Runner
	Store     store.Store          // Enables saving and the projects route
	Registry  *prometheus.Registry // Enables /metrics
	Toolchain library.Toolchain    // Fills toolchain fields a request leaves empty
	Logger    *log.Logger
}

// Server is the depmerge HTTP API.
type Server struct {
	cfg        Config
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. A nil logger falls back to log.Default().
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/merge", s.handleMerge)
		r.Post("/decode", s.handleDecode)
		r.Get("/projects/{project}/graph", s.handleProjectGraph)
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.cfg.Logger.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
