// Package summaries persists aggregated KPI rows per abstraction level.
// The closed view (open_access=false) keeps a single current row per entity
// and cohort; the open-access view appends a new row per publication so
// published history is never rewritten.
package summaries

import (
	"context"
	"time"

	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
	"epiaudit/pkg/domain"
)

// Row is one stored aggregation: an entity at a level, a cohort, and the
// per-measure counts computed for it.
type Row struct {
	Level      geography.AbstractionLevel `json:"level"`
	EntityKey  string                     `json:"entity_key"`
	EntityName string                     `json:"entity_name"`

	Cohort     domain.Cohort `json:"cohort"`
	OpenAccess bool          `json:"open_access"`

	Cases  int                                          `json:"cases"`
	Counts map[scoring.MeasureID]*scoring.MeasureCounts `json:"counts"`

	LastUpdated time.Time `json:"last_updated"`
}

// Store persists aggregation rows.
type Store interface {
	// Upsert writes the current closed-view row for (entity, cohort),
	// replacing any earlier computation.
	Upsert(ctx context.Context, row *Row) error
	// Publish appends a new open-access row; earlier publications remain.
	Publish(ctx context.Context, row *Row) error
	// Seed writes a zero-count closed-view row only when no row exists yet
	// for (entity, cohort).
	Seed(ctx context.Context, row *Row) error
	// Latest returns the most recent row per entity at the level for the
	// cohort and access class, ordered by entity key.
	Latest(ctx context.Context, level geography.AbstractionLevel, cohort domain.Cohort, openAccess bool) ([]*Row, error)
}
