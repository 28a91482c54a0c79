// Package handler exposes the aggregation pipeline over HTTP: run an
// aggregation across levels, seed empty rows, and read back stored rows.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"epiaudit/internal/aggregation/store/summaries"
	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	dErrors "epiaudit/pkg/domain-errors"
	"epiaudit/pkg/platform/httputil"
	"epiaudit/pkg/requestcontext"
)

// Service defines the aggregation operations the HTTP layer needs.
type Service interface {
	UpdateAll(ctx context.Context, cohort domain.Cohort, levels []geography.AbstractionLevel, openAccess bool, measures []scoring.MeasureID) error
	SeedEmptyRows(ctx context.Context, cohort domain.Cohort) error
	Latest(ctx context.Context, level geography.AbstractionLevel, cohort domain.Cohort, openAccess bool) ([]*summaries.Row, error)
}

// Handler handles aggregation endpoints.
type Handler struct {
	logger      *slog.Logger
	aggregation Service
}

// New creates a new aggregation Handler.
func New(aggregation Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, aggregation: aggregation}
}

// Register registers the aggregation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/aggregations/run", h.handleRun)
	r.Post("/aggregations/seed", h.handleSeed)
	r.Get("/aggregations/{level}", h.handleLatest)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[runRequest](w, r)
	if !ok {
		return
	}
	cohort, levels, measures, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.aggregation.UpdateAll(ctx, cohort, levels, req.OpenAccess, measures); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "aggregation run failed",
			"request_id", requestcontext.RequestID(ctx),
			"cohort", int(cohort),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "aggregation run failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, runResponse{
		Cohort:     int(cohort),
		Levels:     req.Levels,
		OpenAccess: req.OpenAccess,
	})
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[seedRequest](w, r)
	if !ok {
		return
	}
	if req.Cohort < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid cohort number"))
		return
	}

	if err := h.aggregation.SeedEmptyRows(ctx, domain.Cohort(req.Cohort)); err != nil {
		h.logger.ErrorContext(ctx, "seeding failed",
			"request_id", requestcontext.RequestID(ctx),
			"cohort", req.Cohort,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "seeding failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	level, err := geography.ParseAbstractionLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown abstraction level"))
		return
	}
	cohort, err := strconv.Atoi(r.URL.Query().Get("cohort"))
	if err != nil || cohort < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid cohort number"))
		return
	}
	openAccess := r.URL.Query().Get("open_access") == "true"

	rows, err := h.aggregation.Latest(ctx, level, domain.Cohort(cohort), openAccess)
	if err != nil {
		h.logger.ErrorContext(ctx, "reading aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"level", level.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "reading aggregation failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newLatestResponse(level, rows))
}
