// Package handler exposes the scoring engine over HTTP: score one
// registration, score a cohort, and read back a stored scorecard.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	dErrors "epiaudit/pkg/domain-errors"
	"epiaudit/pkg/platform/httputil"
	"epiaudit/pkg/requestcontext"
)

// Service defines the scoring operations the HTTP layer needs.
type Service interface {
	ScoreRegistration(ctx context.Context, regID domain.RegistrationID) (*scoring.Result, error)
	ScoreCohort(ctx context.Context, cohort domain.Cohort) (int, error)
	Scorecard(ctx context.Context, regID domain.RegistrationID) (*scoring.Result, error)
}

// Handler handles scoring endpoints.
type Handler struct {
	logger  *slog.Logger
	scoring Service
}

// New creates a new scoring Handler.
func New(scoring Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, scoring: scoring}
}

// Register registers the scoring routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scoring/registrations/{registrationID}", h.handleScoreRegistration)
	r.Get("/scoring/registrations/{registrationID}", h.handleGetScorecard)
	r.Post("/scoring/cohorts/{cohort}", h.handleScoreCohort)
}

func (h *Handler) handleScoreRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid registration id"))
		return
	}

	result, err := h.scoring.ScoreRegistration(ctx, regID)
	if err != nil {
		h.writeScoringError(ctx, w, regID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newScorecardResponse(result))
}

func (h *Handler) handleGetScorecard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid registration id"))
		return
	}

	result, err := h.scoring.Scorecard(ctx, regID)
	if err != nil {
		h.writeScoringError(ctx, w, regID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newScorecardResponse(result))
}

func (h *Handler) handleScoreCohort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cohort, err := strconv.Atoi(chi.URLParam(r, "cohort"))
	if err != nil || cohort < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid cohort number"))
		return
	}

	n, err := h.scoring.ScoreCohort(ctx, domain.Cohort(cohort))
	if err != nil {
		h.logger.ErrorContext(ctx, "cohort scoring failed",
			"request_id", requestcontext.RequestID(ctx),
			"cohort", cohort,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "cohort scoring failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cohortRunResponse{Cohort: cohort, Scored: n})
}

func (h *Handler) writeScoringError(ctx context.Context, w http.ResponseWriter, regID domain.RegistrationID, err error) {
	if scoring.IsNotFound(err) {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "registration %s not found", regID))
		return
	}
	if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		h.logger.WarnContext(ctx, "record failed validation",
			"request_id", requestcontext.RequestID(ctx),
			"registration_id", regID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, "scoring failed",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", regID.String(),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "scoring failed"))
}
