package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/rd2weekly/internal/adapters/mq/queue"
	service "github.com/okian/rd2weekly/internal/app"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/summary"
)

// PeriodDependencies defines what the period endpoints need.
type PeriodDependencies interface {
	Submit(ctx context.Context, p period.Period) (key string, duplicate bool, err error)
	Periods(ctx context.Context) []int
	Summary(ctx context.Context, n int) (summary.Summary, error)
	Markdown(ctx context.Context, n int) (string, error)
}

// PeriodsHandler handles period submission and summary reads.
type PeriodsHandler struct {
	deps         PeriodDependencies
	maxBodyBytes int64
}

// NewPeriodsHandler creates a new periods handler.
func NewPeriodsHandler(deps PeriodDependencies, maxBodyBytes int64) *PeriodsHandler {
	return &PeriodsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePeriods handles POST /periods (submit) and GET /periods (list).
func (h *PeriodsHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, periodsResponse{Periods: h.deps.Periods(r.Context())})
	default:
		http.NotFound(w, r)
	}
}

func (h *PeriodsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_period"
	p, err := period.Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	key, duplicate, err := h.deps.Submit(r.Context(), p)
	switch {
	case errors.Is(err, queue.ErrFull):
		writeFailure(w, op, fmt.Errorf("%w: %w", ErrBackpressure, err))
		return
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		writeFailure(w, op, fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	case err != nil:
		writeFailure(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, submitResponse{Status: "duplicate", Key: key, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{Status: "accepted", Key: key})
}

// HandleGetPeriod handles GET /periods/{n}; ?format=markdown returns the post.
func (h *PeriodsHandler) HandleGetPeriod(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_period"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/periods/")
	n, err := strconv.Atoi(path)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: period %q", op, ErrBadRequest, path))
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		s, err := h.deps.Summary(r.Context(), n)
		if err != nil {
			writeFailure(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	case "markdown", "md":
		md, err := h.deps.Markdown(r.Context(), n)
		if err != nil {
			writeFailure(w, op, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(md))
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: unknown format", op, ErrBadRequest))
	}
}
