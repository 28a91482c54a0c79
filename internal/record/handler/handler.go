// Package handler serves the demographic breakdowns shown alongside an
// organisation's KPI results.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"epiaudit/internal/record"
	dErrors "epiaudit/pkg/domain-errors"
	"epiaudit/pkg/platform/httputil"
	"epiaudit/pkg/requestcontext"
)

// Handler handles organisation demographic endpoints.
type Handler struct {
	logger     *slog.Logger
	breakdowns record.BreakdownStore
}

// New creates a new breakdowns Handler.
func New(breakdowns record.BreakdownStore, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, breakdowns: breakdowns}
}

// Register registers the breakdown routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/organisations/{odsCode}/breakdowns/sex", h.handleBySex)
	r.Get("/organisations/{odsCode}/breakdowns/ethnicity", h.handleByEthnicity)
	r.Get("/organisations/{odsCode}/breakdowns/deprivation", h.handleByDeprivation)
}

type breakdownResponse struct {
	Organisation string           `json:"organisation"`
	Breakdown    []breakdownEntry `json:"breakdown"`
}

type breakdownEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func (h *Handler) handleBySex(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.breakdowns.CasesBySex)
}

func (h *Handler) handleByEthnicity(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.breakdowns.CasesByEthnicity)
}

func (h *Handler) handleByDeprivation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.breakdowns.CasesByDeprivation)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, query func(ctx context.Context, ods string) ([]record.Breakdown, error)) {
	ctx := r.Context()

	ods := chi.URLParam(r, "odsCode")
	if ods == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "missing organisation code"))
		return
	}

	rows, err := query(ctx, ods)
	if err != nil {
		h.logger.ErrorContext(ctx, "breakdown query failed",
			"request_id", requestcontext.RequestID(ctx),
			"organisation", ods,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "breakdown query failed"))
		return
	}

	resp := breakdownResponse{Organisation: ods, Breakdown: make([]breakdownEntry, 0, len(rows))}
	for _, b := range rows {
		resp.Breakdown = append(resp.Breakdown, breakdownEntry{Label: b.Label, Count: b.Count})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
