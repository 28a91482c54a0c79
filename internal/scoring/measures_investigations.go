package scoring

import (
	"slices"

	"epiaudit/internal/record"
)

// Measure 4: a twelve-lead ECG for children with convulsive seizures.
func scoreECG(rec *record.Record, _ float64) ScoreCode {
	inv := rec.Investigations
	d := rec.Diagnosis
	if rec.Registration.FirstPaediatricAssessmentDate == nil || inv == nil || d == nil {
		return NotScored
	}

	hasConvulsive := false
	for _, ep := range d.Episodes {
		if ep.Convulsive() {
			hasConvulsive = true
			break
		}
	}
	if !hasConvulsive {
		return Ineligible
	}

	switch {
	case inv.TwelveLeadECGPerformed == nil:
		return NotScored
	case *inv.TwelveLeadECGPerformed:
		return Pass
	default:
		return Fail
	}
}

// Syndromes whose first-line management does not require neuroimaging; their
// presence removes the child from the MRI measure's denominator.
var mriExemptSyndromes = []string{
	"Self-limited epilepsy with centrotemporal spikes",
	"Juvenile myoclonic epilepsy",
	"Juvenile absence epilepsy",
	"Childhood absence epilepsy",
	"Epilepsy with generalized tonic–clonic seizures alone",
}

// Measure 5: MRI reported within 42 days of request for children outside the
// exempt electroclinical syndromes.
func scoreMRI(rec *record.Record, _ float64) ScoreCode {
	inv := rec.Investigations
	d := rec.Diagnosis
	if rec.Registration.FirstPaediatricAssessmentDate == nil || inv == nil || d == nil {
		return NotScored
	}

	for _, syndrome := range d.Syndromes {
		if slices.Contains(mriExemptSyndromes, syndrome) {
			return Ineligible
		}
	}

	if inv.MRIRequestedDate != nil && inv.MRIReportedDate != nil {
		days := daysBetween(*inv.MRIRequestedDate, *inv.MRIReportedDate)
		if days < 0 {
			days = -days
		}
		if days <= 42 {
			return Pass
		}
		return Fail
	}
	// A recorded decision that MRI was not indicated is a definitive
	// negative; missing dates with the question unanswered are not.
	if isFalse(inv.MRIIndicated) {
		return Fail
	}
	return NotScored
}
