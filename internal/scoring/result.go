package scoring

import (
	"time"

	"epiaudit/pkg/domain"
)

// Result is one registration's complete scorecard: a code for every measure
// in the registry, produced in a single pass and persisted atomically.
type Result struct {
	RegistrationID domain.RegistrationID   `json:"registration_id"`
	Cohort         domain.Cohort           `json:"cohort"`
	Scores         map[MeasureID]ScoreCode `json:"scores"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Score returns the code for one measure, defaulting to NotScored for a
// measure the result does not carry.
func (r *Result) Score(m MeasureID) ScoreCode {
	if c, ok := r.Scores[m]; ok {
		return c
	}
	return NotScored
}
