package scoring

import "epiaudit/internal/record"

// AgeAtFirstAssessmentYears returns the child's age at first paediatric
// assessment in fractional years (365.25-day years), or -1 when either date
// is missing. Age-gated measures treat an unknown age as unjudgeable rather
// than ineligible.
func AgeAtFirstAssessmentYears(rec *record.Record) float64 {
	fpa := rec.Registration.FirstPaediatricAssessmentDate
	dob := rec.Child.DateOfBirth
	if fpa == nil || dob == nil {
		return -1
	}
	days := fpa.Sub(*dob).Hours() / 24
	return days / 365.25
}
