// Package scores persists per-registration scorecards. A scorecard is always
// written whole: one row per measure, replacing any earlier run's rows for
// the same registration.
package scores

import (
	"epiaudit/internal/scoring"
)

// Store persists and reads back complete scorecards. The interface is
// declared in the scoring package (scoring.ScoreStore) so the service there
// can depend on it without importing this package back; the alias keeps
// scores.Store as the name the rest of the tree uses.
type Store = scoring.ScoreStore
