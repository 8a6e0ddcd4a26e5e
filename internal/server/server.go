// Package server exposes the analysis pipeline over HTTP: an HTML UI and a
// JSON API. Reports live in memory only.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/plagcheck/internal/cache"
	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/worker"
)

// multipartOverhead is allowed on top of input.max_bytes for form fields
// and multipart boundaries
const multipartOverhead = 1 << 20

// Analyzer runs analyses; *pipeline.Pipeline implements it
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*model.Report, error)
	AnalyzeFile(ctx context.Context, name, contentType string, r io.Reader) (*model.Report, error)
}

// Server serves the UI and API
type Server struct {
	analyzer  Analyzer
	store     *cache.ReportStore
	limiter   *worker.Limiter
	cfg       model.ServerConfig
	maxUpload int64
	minWords  int
	logger    *slog.Logger
	pages     *pages
	router    *mux.Router
}

// New creates a server for analyzer using cfg
func New(cfg *model.Config, analyzer Analyzer, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pg, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Server{
		analyzer:  analyzer,
		store:     cache.NewReportStore(cfg.Server.ResultTTL),
		limiter:   worker.NewLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst, worker.WithIdleTTL(cfg.Server.ClientIdleTTL)),
		cfg:       cfg.Server,
		maxUpload: cfg.Input.MaxBytes,
		minWords:  cfg.Analysis.MinWords,
		logger:    logger,
		pages:     pg,
	}
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.rateLimited(s.handleAnalyzeForm)).Methods(http.MethodPost)
	r.HandleFunc("/results/{id}", s.handleResultsPage).Methods(http.MethodGet)
	r.HandleFunc("/results/{id}/discard", s.handleDiscardForm).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analyze", s.rateLimited(s.handleAnalyzeAPI)).Methods(http.MethodPost)
	api.HandleFunc("/results/{id}", s.handleGetResult).Methods(http.MethodGet)
	api.HandleFunc("/results/{id}", s.handleDeleteResult).Methods(http.MethodDelete)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such endpoint")
	})

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully within the configured timeout
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
