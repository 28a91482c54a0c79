package handler

import (
	"time"

	"epiaudit/internal/aggregation/store/summaries"
	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
)

type runResponse struct {
	Cohort     int      `json:"cohort"`
	Levels     []string `json:"levels"`
	OpenAccess bool     `json:"open_access"`
}

type measureCountsResponse struct {
	Passed        int `json:"passed"`
	TotalEligible int `json:"total_eligible"`
	Ineligible    int `json:"ineligible"`
	Incomplete    int `json:"incomplete"`
}

type rowResponse struct {
	EntityKey   string                           `json:"entity_key"`
	EntityName  string                           `json:"entity_name"`
	Cases       int                              `json:"cases"`
	Counts      map[string]measureCountsResponse `json:"counts"`
	LastUpdated time.Time                        `json:"last_updated"`
}

type latestResponse struct {
	Level string        `json:"level"`
	Rows  []rowResponse `json:"rows"`
}

func newLatestResponse(level geography.AbstractionLevel, rows []*summaries.Row) latestResponse {
	resp := latestResponse{Level: level.String(), Rows: make([]rowResponse, 0, len(rows))}
	for _, r := range rows {
		row := rowResponse{
			EntityKey:   r.EntityKey,
			EntityName:  r.EntityName,
			Cases:       r.Cases,
			Counts:      make(map[string]measureCountsResponse, len(r.Counts)),
			LastUpdated: r.LastUpdated,
		}
		for _, id := range scoring.MeasureIDs() {
			if c := r.Counts[id]; c != nil {
				row.Counts[string(id)] = measureCountsResponse{
					Passed:        c.Passed,
					TotalEligible: c.TotalEligible,
					Ineligible:    c.Ineligible,
					Incomplete:    c.Incomplete,
				}
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}
