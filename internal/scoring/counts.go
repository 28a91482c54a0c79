package scoring

// MeasureCounts partitions a set of patients for one measure. Every observed
// patient lands in exactly one of eligible, ineligible or incomplete; passed
// counts within eligible.
type MeasureCounts struct {
	Passed        int `json:"passed"`
	TotalEligible int `json:"total_eligible"`
	Ineligible    int `json:"ineligible"`
	Incomplete    int `json:"incomplete"`
}

// Observe folds one score into the counts.
func (c *MeasureCounts) Observe(code ScoreCode) {
	switch code {
	case Pass:
		c.TotalEligible++
		c.Passed++
	case Fail:
		c.TotalEligible++
	case Ineligible:
		c.Ineligible++
	default:
		c.Incomplete++
	}
}
