package scoring

import "epiaudit/internal/record"

// Measure 8: valproate safety for girls aged twelve and over — a pregnancy
// prevention programme and a completed annual risk acknowledgement form for
// every girl prescribed sodium valproate.
func scoreSodiumValproate(rec *record.Record, ageYears float64) ScoreCode {
	if rec.Registration.FirstPaediatricAssessmentDate == nil {
		return NotScored
	}

	if rec.Child.Sex != record.SexFemale {
		return Ineligible
	}
	if ageYears < 0 {
		return NotScored
	}
	if ageYears < 12 {
		return Ineligible
	}

	var valproate *record.Medicine
	for i := range rec.Medicines {
		m := &rec.Medicines[i]
		if m.IsValproate && !m.IsRescue {
			valproate = m
			break
		}
	}
	if valproate == nil {
		return Ineligible
	}

	if isTrue(valproate.PPPInPlace) && isTrue(valproate.AnnualRiskFormed) {
		return Pass
	}
	if isFalse(valproate.PPPInPlace) || isFalse(valproate.AnnualRiskFormed) {
		return Fail
	}
	return NotScored
}
