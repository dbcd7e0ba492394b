// Package server exposes the analysis pipeline and stored runs over HTTP.
//
// Routes:
//
//	GET    /healthz                 liveness and build info
//	POST   /v1/analyze              analyze a design file (body) or a file key (?file_key=)
//	GET    /v1/runs                 list stored runs, newest first
//	GET    /v1/runs/{id}            one run with its artifacts
//	GET    /v1/runs/{id}/report     the run's text report
//	DELETE /v1/runs/{id}            remove a run
//	GET    /metrics                 Prometheus metrics
//
// Errors are JSON objects {"error": ..., "code": ...} with the status code
// derived from the error code (see [apperrors.HTTPStatus]).
//
// [apperrors.HTTPStatus]: github.com/matzehuels/componentscope/pkg/errors.HTTPStatus
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/componentscope/pkg/pipeline"
	"github.com/matzehuels/componentscope/pkg/storage"
)

// MaxBodyBytes bounds the size of an uploaded design file.
const MaxBodyBytes = 64 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Runner executes analyses. Required.
	Runner *pipeline.Runner

	// Store persists runs. When nil, analyses are not stored and the run
	// routes answer 404.
	Store storage.Store

	// KeepArtifacts stores the JSON artifacts with each run, not only the report.
	KeepArtifacts bool

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	router chi.Router
	cfg    Config
	logger *log.Logger
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
			r.Get("/{id}/report", s.handleGetReport)
			r.Delete("/{id}", s.handleDeleteRun)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
