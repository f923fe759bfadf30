// Package api exposes the compiler over HTTP: POST a topology, get back
// device configurations and the rendered reports.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/metrics"
)

// Server is the HTTP front end of the compiler
type Server struct {
	logger          *zap.Logger
	metricsRegistry *metrics.Registry
	startTime       time.Time
	version         string
}

// NewServer creates a new API server
func NewServer(logger *zap.Logger, registry *metrics.Registry, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	return &Server{
		logger:          logger,
		metricsRegistry: registry,
		startTime:       time.Now(),
		version:         version,
	}
}

// Handler returns the routed handler with metrics middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))
	mux.HandleFunc("/compile", s.handleCompile)

	return s.metricsMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}
