// Package server exposes the scan and chat-assistant API over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fraudradar/fraud-radar/internal/detect"
	"github.com/fraudradar/fraud-radar/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server hosts the HTTP API.
type Server struct {
	storage    service.Storage
	assistant  service.Assistant // nil when the AI service is not configured
	thresholds detect.Thresholds
	httpServer *http.Server
}

// New creates a server. assistant may be nil; the chat endpoint then reports
// the AI service as unconfigured.
func New(storage service.Storage, assistant service.Assistant, thresholds detect.Thresholds) *Server {
	return &Server{
		storage:    storage,
		assistant:  assistant,
		thresholds: thresholds,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)

		r.Route("/scans", func(r chi.Router) {
			r.Post("/", s.handleCreateScan)
			r.Get("/", s.handleScanHistory)
			r.Get("/summary", s.handleScanSummary)
		})

		r.Route("/anomalies", func(r chi.Router) {
			r.Get("/", s.handleListAnomalies)
			r.Patch("/{id}", s.handleUpdateAnomaly)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.handleListRules)
			r.Post("/", s.handleCreateRule)
			r.Patch("/{id}", s.handleToggleRule)
			r.Delete("/{id}", s.handleDeleteRule)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
