package handler

import (
	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
	dErrors "epiaudit/pkg/domain-errors"
)

type runRequest struct {
	Cohort     int      `json:"cohort"`
	Levels     []string `json:"levels"`
	OpenAccess bool     `json:"open_access"`
	// Measures confines the run to a subset; empty means every measure.
	Measures []string `json:"measures"`
}

type seedRequest struct {
	Cohort int `json:"cohort"`
}

func (r runRequest) parse() (domain.Cohort, []geography.AbstractionLevel, []scoring.MeasureID, error) {
	if r.Cohort < 0 {
		return 0, nil, nil, dErrors.New(dErrors.CodeInvalidInput, "invalid cohort number")
	}
	if len(r.Levels) == 0 {
		return 0, nil, nil, dErrors.New(dErrors.CodeInvalidInput, "no abstraction levels requested")
	}
	levels := make([]geography.AbstractionLevel, 0, len(r.Levels))
	for _, raw := range r.Levels {
		level, err := geography.ParseAbstractionLevel(raw)
		if err != nil {
			return 0, nil, nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown abstraction level %q", raw)
		}
		levels = append(levels, level)
	}
	measures := make([]scoring.MeasureID, 0, len(r.Measures))
	for _, raw := range r.Measures {
		id := scoring.MeasureID(raw)
		if !scoring.ValidMeasureID(id) {
			return 0, nil, nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown measure %q", raw)
		}
		measures = append(measures, id)
	}
	return domain.Cohort(r.Cohort), levels, measures, nil
}
