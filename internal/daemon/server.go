// Package daemon runs the local HTTP service that receives visit ticks from
// the browser side and serves aggregated summaries back.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/report"
	"github.com/runnerr0/webtime/internal/storage"
	"github.com/runnerr0/webtime/internal/tracker"
)

// Server is the tick-ingest daemon. It owns the autosave schedule and the
// HTTP surface; all state lives in the tracker store.
type Server struct {
	cfg     *config.Config
	store   *tracker.Store
	clock   clock.Clock
	version string
	logger  *slog.Logger
	cron    *cron.Cron
}

// New wires a daemon around an already-loaded store.
func New(cfg *config.Config, store *tracker.Store, clk clock.Clock, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		clock:   clk,
		version: version,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Routes builds the HTTP handler. Exposed separately so tests can drive the
// endpoints without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/tick", s.handleTick)
	r.Get("/summary", s.handleSummary)
	r.Get("/status", s.handleStatus)

	return r
}

// Run starts the autosave schedule and serves HTTP until ctx is cancelled.
// On shutdown it stops the cron, drains in-flight requests, and writes a
// final snapshot so no ticks are lost.
func (s *Server) Run(ctx context.Context) error {
	schedule := fmt.Sprintf("@every %dm", s.cfg.Daemon.AutosaveIntervalMinutes)
	if _, err := s.cron.AddFunc(schedule, s.autosave); err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}
	s.cron.Start()

	addr := net.JoinHostPort(s.cfg.Daemon.Host, fmt.Sprintf("%d", s.cfg.Daemon.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("daemon listening", "addr", addr, "autosave", schedule)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	}

	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	if serveErr != nil {
		return serveErr
	}

	if err := s.store.Save(context.Background()); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	s.logger.Info("daemon stopped")
	return nil
}

// autosave persists the current tree on the configured interval.
func (s *Server) autosave() {
	if err := s.store.Save(context.Background()); err != nil {
		s.logger.Error("autosave failed", "error", err)
		return
	}
	s.logger.Info("autosave complete", "hostnames", s.store.HostnameCount())
}

type tickRequest struct {
	Hostname   string `json:"hostname"`
	FaviconURL string `json:"favicon_url"`
}

type tickResponse struct {
	Ignored        bool  `json:"ignored,omitempty"`
	TodaySeconds   int64 `json:"today_seconds"`
	AllTimeSeconds int64 `json:"all_time_seconds"`
}

// statusResponse is the GET /status payload.
type statusResponse struct {
	Version       string  `json:"version"`
	Hostnames     int     `json:"hostnames"`
	BytesInUse    int64   `json:"bytes_in_use"`
	QuotaFraction float64 `json:"quota_fraction"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Hostname == "" {
		s.writeError(w, http.StatusBadRequest, "hostname is required")
		return
	}

	if s.cfg.IsIgnored(req.Hostname) {
		s.logger.Debug("tick ignored", "hostname", req.Hostname)
		s.writeJSON(w, http.StatusOK, tickResponse{Ignored: true})
		return
	}

	totals, err := s.store.RecordVisit(req.Hostname, tracker.TabMeta{FaviconURL: req.FaviconURL})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, tickResponse{
		TodaySeconds:   totals.TodaySeconds,
		AllTimeSeconds: totals.AllTimeSeconds,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	agg := report.New(s.store.Snapshot(), s.clock)
	agg.TopCount = s.cfg.Report.TopCount
	s.writeJSON(w, http.StatusOK, agg.BuildSummary())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	size, err := s.store.BytesInUse(r.Context())
	if err != nil {
		s.logger.Warn("storage usage query failed", "error", err)
		size = 0
	}

	s.writeJSON(w, http.StatusOK, statusResponse{
		Version:       s.version,
		Hostnames:     s.store.HostnameCount(),
		BytesInUse:    size,
		QuotaFraction: float64(size) / float64(storage.QuotaBytes),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
