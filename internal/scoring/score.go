// Package scoring classifies each patient's recorded care pathway against the
// audit's quality measures and persists the per-measure results.
package scoring

// ScoreCode is the closed classification every measure produces.
//
// Ineligible means the patient falls outside the measure's denominator
// entirely. NotScored means the patient is eligible but the record is too
// incomplete to judge — it is never an error. Pass and Fail are definitive
// judgements and together make up the eligible denominator.
type ScoreCode int

const (
	Fail ScoreCode = iota
	Pass
	Ineligible
	NotScored
)

func (c ScoreCode) String() string {
	switch c {
	case Fail:
		return "fail"
	case Pass:
		return "pass"
	case Ineligible:
		return "ineligible"
	case NotScored:
		return "not_scored"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the four score codes.
func (c ScoreCode) Valid() bool {
	return c >= Fail && c <= NotScored
}
