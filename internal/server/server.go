// Package server exposes a small read-only dashboard API over the latest
// analysis results: JSON/msgpack result endpoints plus the rendered chart
// page.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/glacioclim/albedotrend/internal/report"
	"github.com/glacioclim/albedotrend/internal/timeseries"
	"github.com/glacioclim/albedotrend/internal/trend"
	"github.com/glacioclim/albedotrend/pkg/config"
	"github.com/glacioclim/albedotrend/pkg/responseformat"
)

// Server serves one analysis run. It holds the run and its source data in
// memory; re-running the analysis means restarting the server.
type Server struct {
	cfg       config.ServerData
	run       *trend.Run
	data      map[string]*timeseries.Series
	formatter *responseformat.Formatter
	logger    *zap.SugaredLogger
	httpSrv   *http.Server
}

// New creates a Server for a completed run.
func New(cfg config.ServerData, run *trend.Run, data map[string]*timeseries.Series, logger *zap.SugaredLogger) *Server {
	return &Server{
		cfg:       cfg,
		run:       run,
		data:      data,
		formatter: responseformat.NewFormatter(),
		logger:    logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/results", s.handleResults).Methods(http.MethodGet)
	api.HandleFunc("/results/{fraction}", s.handleFractionResult).Methods(http.MethodGet)
	api.HandleFunc("/bootstrap/{fraction}", s.handleBootstrap).Methods(http.MethodGet)
	router.HandleFunc("/charts", s.handleCharts).Methods(http.MethodGet)
	return router
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.ListenAddr, s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("dashboard listening", "addr", addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.formatter.WriteResponse(w, r, map[string]any{
		"status": "ok",
		"run_id": s.run.ID,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if err := s.formatter.WriteResponse(w, r, toAPIRun(s.run)); err != nil {
		s.logger.Errorw("writing results response", "error", err)
	}
}

func (s *Server) handleFractionResult(w http.ResponseWriter, r *http.Request) {
	fraction := mux.Vars(r)["fraction"]
	result, ok := s.run.ResultFor(fraction)
	if !ok {
		s.formatter.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown fraction %q", fraction))
		return
	}
	if err := s.formatter.WriteResponse(w, r, toAPIFraction(result)); err != nil {
		s.logger.Errorw("writing fraction response", "fraction", fraction, "error", err)
	}
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	fraction := mux.Vars(r)["fraction"]
	boot, ok := s.run.Bootstrap[fraction]
	if !ok {
		s.formatter.WriteError(w, http.StatusNotFound, fmt.Sprintf("no bootstrap record for %q", fraction))
		return
	}
	if err := s.formatter.WriteResponse(w, r, toAPIBootstrap(boot)); err != nil {
		s.logger.Errorw("writing bootstrap response", "fraction", fraction, "error", err)
	}
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, s.run, s.data); err != nil {
		s.logger.Errorw("rendering charts", "error", err)
	}
}
