package scoring

import "epiaudit/internal/record"

// Measure 3: tertiary input for children meeting the paediatric neurology
// referral criteria. Eligibility is the union of four independent gates; the
// measure passes on neurologist input or surgical-service referral within the
// first year of care.
func scoreTertiaryInput(rec *record.Record, ageYears float64) ScoreCode {
	a := rec.Assessment
	d := rec.Diagnosis
	fpa := rec.Registration.FirstPaediatricAssessmentDate
	if fpa == nil || a == nil || d == nil {
		return NotScored
	}

	hasMyoclonic := false
	for _, ep := range d.Episodes {
		if ep.Myoclonic() {
			hasMyoclonic = true
			break
		}
	}
	medicineCount := rec.MaintenanceMedicineCount(rec.Registration.CompletedFirstYearOfCareDate)

	eligible := (ageYears >= 0 && ageYears <= 3) ||
		(ageYears >= 0 && ageYears < 4 && hasMyoclonic) ||
		medicineCount >= 3 ||
		isTrue(a.SurgicalReferralCriteriaMet)
	if !eligible {
		// With no date of birth the age gates cannot be ruled out, so the
		// child is unassessable rather than ineligible.
		if ageYears < 0 {
			return NotScored
		}
		return Ineligible
	}

	outcome := combine(
		onOrWithinYear(*fpa, a.NeurologistInputDate),
		onOrWithinYear(*fpa, a.SurgicalReferralDate),
	)
	if outcome != NotScored {
		return outcome
	}
	// Both routes explicitly declined is a definitive negative even with no
	// dates recorded.
	if isFalse(a.NeurologistReferralMade) && isFalse(a.SurgicalReferralMade) {
		return Fail
	}
	return NotScored
}

// Measure 3b: epilepsy surgery referral for children meeting the surgical
// referral criteria.
func scoreEpilepsySurgeryReferral(rec *record.Record, _ float64) ScoreCode {
	a := rec.Assessment
	fpa := rec.Registration.FirstPaediatricAssessmentDate
	if fpa == nil || a == nil {
		return NotScored
	}

	if a.SurgicalReferralCriteriaMet == nil {
		return NotScored
	}
	if isFalse(a.SurgicalReferralCriteriaMet) {
		return Ineligible
	}

	return combine(
		onOrWithinYear(*fpa, a.NeurologistInputDate),
		onOrWithinYear(*fpa, a.SurgicalReferralDate),
	)
}
