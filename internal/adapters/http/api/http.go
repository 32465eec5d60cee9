// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/domain/scoring"
	"github.com/okian/surveytarget/internal/domain/targeting"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Targets scores the roster for p and returns the matches.
	Targets(ctx context.Context, p query.Params) (targeting.Outcome, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	targetsHandler   *TargetsHandler
	exportHandler    *ExportHandler
	dashboardHandler *dashboardHandler

	defaults  query.Params
	rateLimit float64
	burst     int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDefaults sets the parameters used when neither the request nor the
// last_query cookie provide a value.
func WithDefaults(p query.Params) Option {
	return func(s *Server) {
		if p.Validate() == nil {
			s.defaults = p
		}
	}
}

// WithRateLimit limits each client to rps requests per second on the
// targeting routes. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps >= 0 && burst >= 0 {
			s.rateLimit, s.burst = rps, burst
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		defaults: query.Params{Hour: 8},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.targetsHandler = NewTargetsHandler(deps, s.defaults)
	s.exportHandler = NewExportHandler(deps, s.defaults)
	s.dashboardHandler = newDashboardHandler()
	return s
}

// Register attaches all HTTP routes to mux. ctx bounds background work
// such as rate limiter cleanup.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	limit := func(h http.HandlerFunc) http.HandlerFunc { return h }
	if s.rateLimit > 0 {
		limiter := NewRateLimiter(ctx, s.rateLimit, s.burst)
		limit = limiter.Middleware
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/targets", MetricsMiddleware(limit(s.targetsHandler.HandleGetTargets), "targets"))
	mux.HandleFunc("/api/targets/export", MetricsMiddleware(limit(s.exportHandler.HandleExport), "export"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/{$}", s.dashboardHandler.HandleDashboard)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writePipelineError maps pipeline failures to status codes.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, scoring.ErrScoring):
		writeError(w, http.StatusUnprocessableEntity, "scoring_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
