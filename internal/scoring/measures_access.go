package scoring

import "epiaudit/internal/record"

// Measure 1: input by a consultant paediatrician with expertise in epilepsies
// (or a paediatric neurologist) within 14 days of initial referral. Two
// alternative pathways; either one passing passes the measure.
func scorePaediatricianWithExpertise(rec *record.Record, _ float64) ScoreCode {
	a := rec.Assessment
	if rec.Registration.FirstPaediatricAssessmentDate == nil || a == nil {
		return NotScored
	}

	// Declined both routes: a definitive negative, not missing data.
	if isFalse(a.PaediatricianReferralMade) && isFalse(a.NeurologistReferralMade) {
		return Fail
	}

	return combine(
		withinDays(a.PaediatricianReferralDate, a.PaediatricianInputDate, 14),
		withinDays(a.NeurologistReferralDate, a.NeurologistInputDate, 14),
	)
}

// Measure 2: input from an epilepsy specialist nurse within the first year of
// care. The achieved flag postdates the audit's first cohorts, so an input
// date with the flag unset still scores.
func scoreEpilepsySpecialistNurse(rec *record.Record, _ float64) ScoreCode {
	a := rec.Assessment
	fpa := rec.Registration.FirstPaediatricAssessmentDate
	if fpa == nil || a == nil {
		return NotScored
	}

	if isFalse(a.NurseReferralMade) {
		return Fail
	}
	if a.NurseReferralMade == nil || a.NurseReferralDate == nil {
		return NotScored
	}

	if a.NurseInputDate != nil {
		if onOrWithinYear(*fpa, a.NurseInputDate) == verdictPass {
			return Pass
		}
		return Fail
	}
	if isFalse(a.NurseInputAchieved) {
		return Fail
	}
	return NotScored
}
