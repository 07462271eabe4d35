// Package server is the HTTP shell of the dashboard.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/ctxlog"
	"github.com/sartorproj/epicast/dashboard"
)

//go:embed index.html
var indexHTML []byte

// Server represents the HTTP server
type Server struct {
	*http.Server
	router   chi.Router
	session  *dashboard.Session
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*options)

type options struct {
	metrics http.Handler
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) {
		o.metrics = h
	}
}

// New creates the HTTP server serving session.
func New(ctx context.Context, addr string, session *dashboard.Session, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:  router,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	router.Get("/health", s.handleHealth)
	router.Get("/", handleIndex)

	router.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/view", s.handleView)
		r.Get("/chart/history.png", s.handleHistoryChart)
		r.Get("/chart/anomalies.png", s.handleAnomalyChart)
		r.Get("/forecast.csv", s.handleForecastCSV)
		r.Get("/forecast.xlsx", s.handleForecastXLSX)
	})

	router.Get("/ws", s.handleWebSocket)

	if o.metrics != nil {
		router.Handle("/metrics", o.metrics)
	}

	return s
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "epicast",
		"session": s.session.ID,
	})
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(indexHTML); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write index page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// writeError maps pipeline errors to 422 with a user message and
// anything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := ctxlog.From(r.Context())
	msg, known := dashboard.UserMessage(err)
	status := http.StatusUnprocessableEntity
	if known {
		logger.Warn("Request rejected", "error", err)
	} else {
		status = http.StatusInternalServerError
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, r, status, map[string]string{"error": msg})
}
