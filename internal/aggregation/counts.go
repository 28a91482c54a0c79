// Package aggregation rolls per-registration scorecards up into measure
// counts at each geographic abstraction level, and publishes the rows the
// reporting layer reads.
package aggregation

import (
	"epiaudit/internal/geography"
	"epiaudit/internal/record"
	"epiaudit/internal/scoring"
)

// ScoredCase joins one registration's clinical record view with its stored
// scorecard. The record supplies geography, the scorecard supplies outcomes.
type ScoredCase struct {
	Record *record.Record
	Result *scoring.Result
}

// CareOrganisation satisfies geography.Placed for level filtering.
func (c ScoredCase) CareOrganisation() *geography.Organisation {
	return c.Record.CareOrganisation()
}

// Group is one aggregated row: a geographic grouping key and its per-measure
// counts.
type Group struct {
	// Key is the natural key of the geographic entity at the aggregated
	// level. Empty for the national row.
	Key string `json:"key"`

	Cases  int                                          `json:"cases"`
	Counts map[scoring.MeasureID]*scoring.MeasureCounts `json:"counts"`
}

// NewGroup returns a Group with a zeroed accumulator for each requested
// measure, so even a group with no patients stores explicit zero counts.
func NewGroup(key string, measures []scoring.MeasureID) *Group {
	g := &Group{Key: key, Counts: make(map[scoring.MeasureID]*scoring.MeasureCounts, len(measures))}
	for _, id := range measures {
		g.Counts[id] = &scoring.MeasureCounts{}
	}
	return g
}

// Observe folds one scored case into the group's measure counts.
func (g *Group) Observe(sc ScoredCase) {
	g.Cases++
	for id, c := range g.Counts {
		c.Observe(sc.Result.Score(id))
	}
}
