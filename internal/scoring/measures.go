package scoring

import "epiaudit/internal/record"

// MeasureID names a quality measure. The identifiers are the audit's
// published measure names and double as storage keys.
type MeasureID string

const (
	MeasurePaediatricianWithExpertise MeasureID = "paediatrician_with_expertise_in_epilepsies"
	MeasureEpilepsySpecialistNurse    MeasureID = "epilepsy_specialist_nurse"
	MeasureTertiaryInput              MeasureID = "tertiary_input"
	MeasureEpilepsySurgeryReferral    MeasureID = "epilepsy_surgery_referral"
	MeasureECG                        MeasureID = "ecg"
	MeasureMRI                        MeasureID = "mri"
	MeasureMentalHealthAssessment     MeasureID = "assessment_of_mental_health_issues"
	MeasureMentalHealthSupport        MeasureID = "mental_health_support"
	MeasureSodiumValproate            MeasureID = "sodium_valproate"
	MeasureCarePlanningAgreement      MeasureID = "comprehensive_care_planning_agreement"
	MeasureCarePlanningContent        MeasureID = "comprehensive_care_planning_content"
	MeasureSchoolIndividualPlan       MeasureID = "school_individual_healthcare_plan"
)

// ScoreFunc is one measure's decision procedure. Pure and total: it never
// mutates the record and returns a code for every input, however sparse.
// ageYears is the age at first paediatric assessment in fractional years;
// it is negative when unknown.
type ScoreFunc func(rec *record.Record, ageYears float64) ScoreCode

// Measure pairs a measure with its scorer.
type Measure struct {
	ID    MeasureID
	Score ScoreFunc
}

// measures is the static registry, built once and consulted by the
// orchestrator and the aggregator. Order matches the audit's reporting order.
var measures = []Measure{
	{MeasurePaediatricianWithExpertise, scorePaediatricianWithExpertise},
	{MeasureEpilepsySpecialistNurse, scoreEpilepsySpecialistNurse},
	{MeasureTertiaryInput, scoreTertiaryInput},
	{MeasureEpilepsySurgeryReferral, scoreEpilepsySurgeryReferral},
	{MeasureECG, scoreECG},
	{MeasureMRI, scoreMRI},
	{MeasureMentalHealthAssessment, scoreMentalHealthAssessment},
	{MeasureMentalHealthSupport, scoreMentalHealthSupport},
	{MeasureSodiumValproate, scoreSodiumValproate},
	{MeasureCarePlanningAgreement, scoreCarePlanningAgreement},
	{MeasureCarePlanningContent, scoreCarePlanningContent},
	{MeasureSchoolIndividualPlan, scoreSchoolIndividualPlan},
}

// Measures returns the registry in reporting order.
func Measures() []Measure {
	out := make([]Measure, len(measures))
	copy(out, measures)
	return out
}

// MeasureIDs returns every measure identifier in reporting order.
func MeasureIDs() []MeasureID {
	out := make([]MeasureID, len(measures))
	for i, m := range measures {
		out[i] = m.ID
	}
	return out
}

// ValidMeasureID reports whether m names a known measure.
func ValidMeasureID(m MeasureID) bool {
	for _, known := range measures {
		if known.ID == m {
			return true
		}
	}
	return false
}
