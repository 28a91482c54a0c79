package domain

import "time"

// Cohort is the yearly intake group an audit cycle covers. Cohort N runs from
// 1 December (2016+N) to 30 November (2016+N+1); the final submission date is
// the second Tuesday of January one year after the cohort closes.
type Cohort int

// earliest admissible first assessment date (start of cohort 4).
var cohortEpoch = time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)

// CohortForDate derives the cohort number from a first paediatric assessment
// date. The second return is false for dates before the audit epoch.
func CohortForDate(firstAssessment time.Time) (Cohort, bool) {
	if firstAssessment.Before(cohortEpoch) {
		return 0, false
	}
	if firstAssessment.Month() == time.December {
		return Cohort(firstAssessment.Year() - 2016), true
	}
	return Cohort(firstAssessment.Year() - 1 - 2016), true
}

// CohortDates describes the span and submission deadline of a cohort.
type CohortDates struct {
	Cohort         Cohort
	Start          time.Time
	End            time.Time
	SubmissionDate time.Time
}

// DatesFor returns the date span for a cohort. Cohorts before 4 predate the
// audit and return false.
func DatesFor(c Cohort) (CohortDates, bool) {
	if c < 4 {
		return CohortDates{}, false
	}
	start := time.Date(2016+int(c), time.December, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2016+int(c)+1, time.November, 30, 0, 0, 0, 0, time.UTC)
	return CohortDates{
		Cohort:         c,
		Start:          start,
		End:            end,
		SubmissionDate: nthTuesdayOfYear(end.Year()+2, 2),
	}, true
}

// DaysUntilSubmission counts the days from now to the submission deadline,
// inclusive of the final day. Returns zero once the deadline has passed.
func (d CohortDates) DaysUntilSubmission(now time.Time) int {
	remaining := int(d.SubmissionDate.Sub(now).Hours()/24) + 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

func nthTuesdayOfYear(year, n int) time.Time {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Tuesday {
		t = t.AddDate(0, 0, 1)
	}
	return t.AddDate(0, 0, 7*(n-1))
}
