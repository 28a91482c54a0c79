package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Score outcomes by measure and code
	ScoreOutcome *prometheus.CounterVec

	// Registrations skipped for data-integrity failures
	RecordRejected prometheus.Counter

	// Full scorecard latency per registration
	ScoreLatency prometheus.Histogram

	// Cohort run latency
	CohortLatency prometheus.Histogram
}

// New creates a new Metrics instance with all scoring module metrics registered.
func New() *Metrics {
	return &Metrics{
		ScoreOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "epiaudit_scoring_outcomes_total",
			Help: "Total measure scores by measure and outcome code",
		}, []string{"measure", "outcome"}),

		RecordRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epiaudit_scoring_records_rejected_total",
			Help: "Registrations rejected before scoring for failed record validation",
		}),

		ScoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "epiaudit_scoring_score_duration_seconds",
			Help:    "Duration of scoring one registration across all measures",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		CohortLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "epiaudit_scoring_cohort_duration_seconds",
			Help:    "Duration of scoring a full cohort",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// IncrementOutcome records one measure's score.
func (m *Metrics) IncrementOutcome(measure, outcome string) {
	if m != nil {
		m.ScoreOutcome.WithLabelValues(measure, outcome).Inc()
	}
}

// IncrementRejected records a registration that failed record validation.
func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.RecordRejected.Inc()
	}
}

// ObserveScoreLatency records the duration of one registration's scorecard.
func (m *Metrics) ObserveScoreLatency(d time.Duration) {
	if m != nil {
		m.ScoreLatency.Observe(d.Seconds())
	}
}

// ObserveCohortLatency records the duration of a cohort run.
func (m *Metrics) ObserveCohortLatency(d time.Duration) {
	if m != nil {
		m.CohortLatency.Observe(d.Seconds())
	}
}
