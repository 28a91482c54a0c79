// Package record defines the read-only clinical record view the scoring
// engine consumes. The data-entry subsystem owns these facts; this service
// never mutates them. Tri-state booleans are pointers: nil means the question
// has not been answered yet, which is never the same as an explicit "no".
package record

import (
	"time"

	"epiaudit/internal/geography"
	id "epiaudit/pkg/domain"
	dErrors "epiaudit/pkg/domain-errors"
)

// Sex uses the NHS person-sex codes.
type Sex int

const (
	SexNotKnown Sex = 0
	SexMale     Sex = 1
	SexFemale   Sex = 2
)

// Registration anchors one case's year of audited care.
type Registration struct {
	ID     id.RegistrationID `json:"id"`
	CaseID id.CaseID         `json:"case_id"`
	Cohort id.Cohort         `json:"cohort"`

	// FirstPaediatricAssessmentDate is the temporal anchor for every
	// "within N days/years" window. When unset no measure can be judged.
	FirstPaediatricAssessmentDate *time.Time `json:"first_paediatric_assessment_date"`

	// CompletedFirstYearOfCareDate marks when the audited year closes;
	// cases only enter aggregation once this date has passed.
	CompletedFirstYearOfCareDate time.Time `json:"completed_first_year_of_care_date"`
}

// Child carries the demographics scorers and breakdowns need.
type Child struct {
	DateOfBirth          *time.Time `json:"date_of_birth"`
	Sex                  Sex        `json:"sex"`
	Ethnicity            string     `json:"ethnicity"`
	DeprivationQuintile  *int       `json:"deprivation_quintile"`
}

// Site links a case to the organisation delivering its epilepsy care.
type Site struct {
	Organisation           geography.Organisation `json:"organisation"`
	ActivelyInvolvedInCare bool                   `json:"actively_involved_in_care"`
	PrimaryCentreOfCare    bool                   `json:"primary_centre_of_care"`
}

// Assessment records the referral/input milestones for each clinician role.
type Assessment struct {
	PaediatricianReferralMade *bool      `json:"paediatrician_referral_made"`
	PaediatricianReferralDate *time.Time `json:"paediatrician_referral_date"`
	PaediatricianInputDate    *time.Time `json:"paediatrician_input_date"`

	NeurologistReferralMade *bool      `json:"neurologist_referral_made"`
	NeurologistReferralDate *time.Time `json:"neurologist_referral_date"`
	NeurologistInputDate    *time.Time `json:"neurologist_input_date"`

	NurseReferralMade *bool      `json:"nurse_referral_made"`
	NurseReferralDate *time.Time `json:"nurse_referral_date"`
	// NurseInputAchieved was added after the audit began; older records
	// legitimately have it unset alongside a recorded input date.
	NurseInputAchieved *bool      `json:"nurse_input_achieved"`
	NurseInputDate     *time.Time `json:"nurse_input_date"`

	SurgicalReferralCriteriaMet *bool      `json:"surgical_referral_criteria_met"`
	SurgicalReferralMade        *bool      `json:"surgical_referral_made"`
	SurgicalReferralDate        *time.Time `json:"surgical_referral_date"`
}

// Investigations records the diagnostic workup milestones.
type Investigations struct {
	TwelveLeadECGPerformed *bool `json:"twelve_lead_ecg_performed"`

	MRIIndicated     *bool      `json:"mri_indicated"`
	MRIRequestedDate *time.Time `json:"mri_requested_date"`
	MRIReportedDate  *time.Time `json:"mri_reported_date"`
}

// Episode generalised-onset codes used by eligibility predicates.
const (
	OnsetMyoclonic   = "MyC"
	OnsetTonicClonic = "TCl"
)

// Episode is one seizure episode from the multiaxial diagnosis.
type Episode struct {
	// EpilepsyStatus is "E" (epileptic), "NE" (non-epileptic) or "U"
	// (uncertain).
	EpilepsyStatus      string `json:"epilepsy_status"`
	GeneralisedOnset    string `json:"generalised_onset"`
	FocalOnsetMyoclonic bool   `json:"focal_onset_myoclonic"`
}

// Myoclonic reports whether the episode is an epileptic myoclonic seizure,
// generalised or focal in onset.
func (e Episode) Myoclonic() bool {
	return e.EpilepsyStatus == "E" && (e.GeneralisedOnset == OnsetMyoclonic || e.FocalOnsetMyoclonic)
}

// Convulsive reports whether the episode is an epileptic convulsive seizure.
func (e Episode) Convulsive() bool {
	return e.EpilepsyStatus == "E" && e.GeneralisedOnset == OnsetTonicClonic
}

// Diagnosis is the multiaxial diagnosis view.
type Diagnosis struct {
	Episodes  []Episode `json:"episodes"`
	Syndromes []string  `json:"syndromes"`

	MentalHealthScreenPerformed *bool `json:"mental_health_screen_performed"`
	MentalHealthIssueIdentified *bool `json:"mental_health_issue_identified"`
}

// Management is the care-plan and support view.
type Management struct {
	CarePlanInPlace  *bool `json:"care_plan_in_place"`
	PlanIncludesEHCP *bool `json:"plan_includes_ehcp"`

	HasPatientHeldDocument  *bool `json:"has_patient_held_document"`
	HasParentCarerAgreement *bool `json:"has_parent_carer_agreement"`
	PlanUpdatedThisYear     *bool `json:"plan_updated_this_year"`

	ParentalProlongedSeizurePlan  *bool `json:"parental_prolonged_seizure_plan"`
	WaterSafetyDiscussed          *bool `json:"water_safety_discussed"`
	FirstAidDiscussed             *bool `json:"first_aid_discussed"`
	GeneralParticipationDiscussed *bool `json:"general_participation_discussed"`
	ServiceContactDetailsProvided *bool `json:"service_contact_details_provided"`
	SUDEPDiscussed                *bool `json:"sudep_discussed"`

	MentalHealthSupportProvided *bool `json:"mental_health_support_provided"`
}

// Medicine is one prescribed anti-epilepsy medicine.
type Medicine struct {
	Name             string     `json:"name"`
	IsRescue         bool       `json:"is_rescue"`
	IsValproate      bool       `json:"is_valproate"`
	StartDate        *time.Time `json:"start_date"`
	PPPInPlace       *bool      `json:"ppp_in_place"`
	AnnualRiskFormed *bool      `json:"annual_risk_form_completed"`
}

// Record is the full clinical record view for one registration, read as a
// consistent snapshot before scoring begins.
type Record struct {
	Registration Registration `json:"registration"`
	Child        Child        `json:"child"`
	Site         Site         `json:"site"`

	Assessment     *Assessment     `json:"assessment"`
	Investigations *Investigations `json:"investigations"`
	Diagnosis      *Diagnosis      `json:"diagnosis"`
	Management     *Management     `json:"management"`
	Medicines      []Medicine      `json:"medicines"`
}

// CareOrganisation names the organisation leading this case's care.
func (r *Record) CareOrganisation() *geography.Organisation {
	return &r.Site.Organisation
}

// Validate checks the related entities the domain guarantees exist. A missing
// one is a data-integrity bug upstream and must surface, unlike ordinary
// unanswered fields.
func (r *Record) Validate() error {
	switch {
	case r.Assessment == nil:
		return dErrors.Newf(dErrors.CodeInvalidInput, "registration %s has no assessment record", r.Registration.ID)
	case r.Investigations == nil:
		return dErrors.Newf(dErrors.CodeInvalidInput, "registration %s has no investigations record", r.Registration.ID)
	case r.Diagnosis == nil:
		return dErrors.Newf(dErrors.CodeInvalidInput, "registration %s has no diagnosis record", r.Registration.ID)
	case r.Management == nil:
		return dErrors.Newf(dErrors.CodeInvalidInput, "registration %s has no management record", r.Registration.ID)
	}
	return nil
}

// MaintenanceMedicineCount counts distinct maintenance (non-rescue)
// anti-epilepsy medicines started strictly before the cutoff.
func (r *Record) MaintenanceMedicineCount(cutoff time.Time) int {
	n := 0
	for _, m := range r.Medicines {
		if m.IsRescue || m.StartDate == nil {
			continue
		}
		if m.StartDate.Before(cutoff) {
			n++
		}
	}
	return n
}
