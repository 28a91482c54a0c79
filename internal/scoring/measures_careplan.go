package scoring

import "epiaudit/internal/record"

// allComponents folds a set of care-plan component flags into one score:
// every component answered true is a pass, any explicit false fails, and an
// unanswered component leaves the measure unscored.
func allComponents(flags ...*bool) ScoreCode {
	complete := true
	for _, f := range flags {
		if isFalse(f) {
			return Fail
		}
		if f == nil {
			complete = false
		}
	}
	if complete {
		return Pass
	}
	return NotScored
}

// Measure 9a: an agreed, current comprehensive care plan — in place, held by
// the patient, agreed with the parent or carer, and updated within the audit
// year.
func scoreCarePlanningAgreement(rec *record.Record, _ float64) ScoreCode {
	if rec.Registration.FirstPaediatricAssessmentDate == nil || rec.Management == nil {
		return NotScored
	}
	m := rec.Management
	return allComponents(
		m.CarePlanInPlace,
		m.HasPatientHeldDocument,
		m.HasParentCarerAgreement,
		m.PlanUpdatedThisYear,
	)
}

// Measure 9b: the care plan covers the required content — prolonged seizure
// plan for parents, water safety, first aid, general participation and risk,
// service contact details, and SUDEP.
func scoreCarePlanningContent(rec *record.Record, _ float64) ScoreCode {
	if rec.Registration.FirstPaediatricAssessmentDate == nil || rec.Management == nil {
		return NotScored
	}
	m := rec.Management
	return allComponents(
		m.ParentalProlongedSeizurePlan,
		m.WaterSafetyDiscussed,
		m.FirstAidDiscussed,
		m.GeneralParticipationDiscussed,
		m.ServiceContactDetailsProvided,
		m.SUDEPDiscussed,
	)
}

// Measure 10: school-aged children have an individual healthcare plan
// (or equivalent EHCP provision) covering their epilepsy.
func scoreSchoolIndividualPlan(rec *record.Record, ageYears float64) ScoreCode {
	if rec.Registration.FirstPaediatricAssessmentDate == nil || rec.Management == nil {
		return NotScored
	}
	if ageYears < 0 {
		return NotScored
	}
	if ageYears < 5 {
		return Ineligible
	}

	m := rec.Management
	if isFalse(m.CarePlanInPlace) {
		return Fail
	}
	switch {
	case m.PlanIncludesEHCP == nil:
		return NotScored
	case *m.PlanIncludesEHCP:
		return Pass
	default:
		return Fail
	}
}
