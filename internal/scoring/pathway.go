package scoring

import "time"

// verdict is the tri-state outcome of judging a single care pathway. Unknown
// means the pathway lacks the data to judge either way.
type verdict int

const (
	verdictUnknown verdict = iota
	verdictPass
	verdictFail
)

// combine merges alternative pathways for one measure: any pass wins; a fail
// needs at least one judged pathway and no pass; anything else is
// insufficient data. Unknown data in one pathway can therefore never
// downgrade a pass achieved through another.
func combine(verdicts ...verdict) ScoreCode {
	judged := false
	for _, v := range verdicts {
		if v == verdictPass {
			return Pass
		}
		if v == verdictFail {
			judged = true
		}
	}
	if judged {
		return Fail
	}
	return NotScored
}

// withinDays judges an interval pathway: both ends present and the span no
// more than maxDays apart (boundary inclusive).
func withinDays(from, to *time.Time, maxDays int) verdict {
	if from == nil || to == nil {
		return verdictUnknown
	}
	if daysBetween(*from, *to) <= maxDays {
		return verdictPass
	}
	return verdictFail
}

// onOrWithinYear judges whether the event happened no later than one year
// after the anchor (boundary inclusive).
func onOrWithinYear(anchor time.Time, event *time.Time) verdict {
	if event == nil {
		return verdictUnknown
	}
	if !event.After(anchor.AddDate(1, 0, 0)) {
		return verdictPass
	}
	return verdictFail
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// isTrue and isFalse read tri-state answers: nil is an unanswered question
// and matches neither.
func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }
