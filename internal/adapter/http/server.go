package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/report"
)

// SeriesSource provides the station series of the last completed run.
type SeriesSource interface {
	LatestSeries() []domain.StationSeries
}

// Server exposes health, readiness, metrics, and station series endpoints.
type Server struct {
	httpServer *http.Server
	series     SeriesSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /stations routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, series SeriesSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		series: series,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /stations", s.handleStations)
	mux.HandleFunc("GET /stations/chart", s.handleChart)
	mux.HandleFunc("GET /stations/{name}", s.handleStation)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	series := s.series.LatestSeries()
	if len(series) == 0 {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no completed run"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	for _, ss := range s.series.LatestSeries() {
		if ss.Station == name {
			sharedobs.WriteJSON(w, http.StatusOK, ss)
			return
		}
	}
	sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown station " + name})
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	series := s.series.LatestSeries()
	if len(series) == 0 {
		http.Error(w, "no completed run", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.ChartStations(w, series); err != nil {
		s.logger.Error("render station chart", "error", err)
	}
}
