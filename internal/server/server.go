// Package server exposes the manual briefing trigger over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/briefing"
	"github.com/graf262-max/legal-update-monitor/internal/usecase"
)

// Server serves GET /api/daily-brief. The endpoint renders a fresh briefing
// in the requested format; delivery channels are never triggered from here.
type Server struct {
	pipeline *usecase.Pipeline
	location *time.Location
	logger   *slog.Logger
	srv      *http.Server
}

// New constructs the HTTP surface on addr.
func New(addr string, pipeline *usecase.Pipeline, location *time.Location, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}
	s := &Server{pipeline: pipeline, location: location, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/daily-brief", s.handleDailyBrief)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleDailyBrief(w http.ResponseWriter, r *http.Request) {
	format, err := briefing.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// test=true marks a dry run in logs; output is identical either way
	if r.URL.Query().Get("test") == "true" {
		s.logger.Info("test briefing requested", "remote", r.RemoteAddr)
	}

	out, err := s.pipeline.Run(r.Context(), time.Now().In(s.location), format, false)
	if err != nil {
		s.logger.Error("briefing run failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Body); err != nil {
		s.logger.Warn("response write failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}
