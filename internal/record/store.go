package record

import (
	"context"
	"time"

	id "epiaudit/pkg/domain"
)

// Store reads clinical record views. Implementations must return records as
// consistent snapshots: every scorer in one run sees the same facts.
type Store interface {
	// Get returns the record view for one registration, or a
	// sentinel.ErrNotFound wrapped error.
	Get(ctx context.Context, regID id.RegistrationID) (*Record, error)

	// ListEligible returns the cohort's records that are in scope for
	// aggregation: primary care site actively involved, and a completed
	// first year of care as of asOf.
	ListEligible(ctx context.Context, cohort id.Cohort, asOf time.Time) ([]*Record, error)
}

// Breakdown is a labelled count used by organisation-level demographic
// summaries.
type Breakdown struct {
	Label string
	Count int
}

// BreakdownStore serves the demographic summaries shown alongside an
// organisation's KPI results.
type BreakdownStore interface {
	CasesBySex(ctx context.Context, organisationODS string) ([]Breakdown, error)
	CasesByEthnicity(ctx context.Context, organisationODS string) ([]Breakdown, error)
	CasesByDeprivation(ctx context.Context, organisationODS string) ([]Breakdown, error)
}
