// Package server exposes layout, visibility, routing and rendering over
// HTTP for the browser editor.
//
// The service is stateless: every request carries the graph (or the
// layout input) it works on. Layouts and routes go through the shared
// [pipeline.Runner] cache, so repeated requests from an editing session
// are served without recomputation.
//
// # Endpoints
//
//	GET  /healthz
//	GET  /v1/algorithms
//	POST /v1/layout/{algorithm}
//	POST /v1/visibility
//	POST /v1/sample
//	POST /v1/route
//	POST /v1/anchors
//	POST /v1/render/{format}
//	POST /v1/validate
//
// Errors are JSON objects {"error": message, "code": code} with the status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cardgraph/pkg/config"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/visibility"
)

// shutdownTimeout bounds graceful shutdown after the context ends.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP service. Create it with New.
type Server struct {
	cfg      config.Server
	timeout  time.Duration
	runner   *pipeline.Runner
	resolver *visibility.Resolver
	logger   *log.Logger
	router   chi.Router
}

// New builds the service around runner. A nil logger discards output.
func New(cfg config.Server, runner *pipeline.Runner, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	s := &Server{
		cfg:      cfg,
		timeout:  timeout,
		runner:   runner,
		resolver: visibility.New(logger),
		logger:   logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/algorithms", s.handleAlgorithms)
		r.Post("/layout/{algorithm}", s.handleLayout)
		r.Post("/visibility", s.handleVisibility)
		r.Post("/sample", s.handleSample)
		r.Post("/route", s.handleRoute)
		r.Post("/anchors", s.handleAnchors)
		r.Post("/render/{format}", s.handleRender)
		r.Post("/validate", s.handleValidate)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, errNotFound(r.URL.Path))
	})
	return r
}

// Run serves on the configured address until ctx ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
