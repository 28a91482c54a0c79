package handler

import (
	"time"

	"epiaudit/internal/scoring"
)

type scorecardResponse struct {
	RegistrationID string            `json:"registration_id"`
	Cohort         int               `json:"cohort"`
	Scores         map[string]string `json:"scores"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type cohortRunResponse struct {
	Cohort int `json:"cohort"`
	Scored int `json:"scored"`
}

func newScorecardResponse(result *scoring.Result) scorecardResponse {
	resp := scorecardResponse{
		RegistrationID: result.RegistrationID.String(),
		Cohort:         int(result.Cohort),
		Scores:         make(map[string]string, len(result.Scores)),
		UpdatedAt:      result.UpdatedAt,
	}
	for _, id := range scoring.MeasureIDs() {
		resp.Scores[string(id)] = result.Score(id).String()
	}
	return resp
}
