// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/twostep/internal/domain/fx"
	"github.com/okian/twostep/internal/domain/grades"
	"github.com/okian/twostep/pkg/metrics"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatusDependencies
	ConvertDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	statusHandler  *StatusHandler
	convertHandler *ConvertHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		statusHandler:  NewStatusHandler(deps),
		convertHandler: NewConvertHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/status/", MetricsMiddleware(s.statusHandler.HandleGetStatus, "status"))
	mux.HandleFunc("/convert", MetricsMiddleware(s.convertHandler.HandleGetConvert, "convert"))
	mux.Handle("/metrics", metrics.Handler())
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

// writeLookupError translates pipeline errors into HTTP responses. The body
// carries the error text unchanged.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, grades.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, fx.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err)
	case errors.Is(err, fx.ErrRateUnavailable):
		writeError(w, http.StatusBadGateway, "rate_unavailable", err)
	case errors.Is(err, fx.ErrRegionLookup):
		writeError(w, http.StatusBadGateway, "region_lookup", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
