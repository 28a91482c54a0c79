package scoring

import "epiaudit/internal/record"

// Measure 6: screening for mental health issues, for children aged five and
// over at first paediatric assessment.
func scoreMentalHealthAssessment(rec *record.Record, ageYears float64) ScoreCode {
	d := rec.Diagnosis
	if rec.Registration.FirstPaediatricAssessmentDate == nil || d == nil {
		return NotScored
	}

	if ageYears < 0 {
		// Unknown age: eligibility itself cannot be judged.
		return NotScored
	}
	if ageYears < 5 {
		return Ineligible
	}

	switch {
	case d.MentalHealthScreenPerformed == nil:
		return NotScored
	case *d.MentalHealthScreenPerformed:
		return Pass
	default:
		return Fail
	}
}

// Measure 7: support for an identified mental health issue.
func scoreMentalHealthSupport(rec *record.Record, _ float64) ScoreCode {
	d := rec.Diagnosis
	m := rec.Management
	if rec.Registration.FirstPaediatricAssessmentDate == nil || d == nil || m == nil {
		return NotScored
	}

	if d.MentalHealthIssueIdentified == nil {
		return NotScored
	}
	if !*d.MentalHealthIssueIdentified {
		return Ineligible
	}

	switch {
	case m.MentalHealthSupportProvided == nil:
		return NotScored
	case *m.MentalHealthSupportProvided:
		return Pass
	default:
		return Fail
	}
}
