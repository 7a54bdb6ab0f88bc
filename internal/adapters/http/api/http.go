// Package api serves the period submission and summary read endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/rd2weekly/internal/adapters/repository"
	"github.com/okian/rd2weekly/internal/domain/period"
)

const (
	defaultStandingsLimit = 10
	defaultMaxLimit       = 100
	defaultMaxBodyBytes   = 4 << 20
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	PeriodDependencies
	StandingsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	periodsHandler   *PeriodsHandler
	standingsHandler *StandingsHandler
}

// Option configures the Server.
type Option func(*config)

type config struct {
	maxLimit     int
	maxBodyBytes int64
}

// WithMaxLimit caps the standings limit parameter.
func WithMaxLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithMaxBodyBytes caps the size of a submitted period document.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	c := config{maxLimit: defaultMaxLimit, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&c)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		periodsHandler:   NewPeriodsHandler(deps, c.maxBodyBytes),
		standingsHandler: NewStandingsHandler(deps, c.maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/periods", MetricsMiddleware(s.periodsHandler.HandlePeriods, "periods"))
	mux.HandleFunc("/periods/", MetricsMiddleware(s.periodsHandler.HandleGetPeriod, "period"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/standings/", MetricsMiddleware(s.standingsHandler.HandleGetTeam, "team"))
}

type submitResponse struct {
	Status    string `json:"status"`
	Key       string `json:"key"`
	Duplicate bool   `json:"duplicate"`
}

type periodsResponse struct {
	Periods []int `json:"periods"`
}

type standingsResponse struct {
	Standings []repository.Entry `json:"standings"`
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

// writeFailure maps domain and adapter errors to HTTP statuses.
func writeFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case period.Invalid(err):
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
	}
}
