package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the aggregation module.
type Metrics struct {
	// Rows written by level and access class
	RowsPersisted *prometheus.CounterVec

	// Groups dropped because reference geography had no matching entity
	GroupsSkipped *prometheus.CounterVec

	// Per-level aggregation latency
	AggregateLatency *prometheus.HistogramVec

	// Full update-all run latency
	RunLatency prometheus.Histogram
}

// New creates a new Metrics instance with all aggregation module metrics registered.
func New() *Metrics {
	return &Metrics{
		RowsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "epiaudit_aggregation_rows_persisted_total",
			Help: "Aggregation rows written by abstraction level and access class",
		}, []string{"level", "access"}), // access: "closed", "open"

		GroupsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "epiaudit_aggregation_groups_skipped_total",
			Help: "Aggregation groups skipped because no reference entity matched",
		}, []string{"level"}),

		AggregateLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "epiaudit_aggregation_level_duration_seconds",
			Help:    "Duration of aggregating one abstraction level",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"level"}),

		RunLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "epiaudit_aggregation_run_duration_seconds",
			Help:    "Duration of a full aggregation run across requested levels",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementPersisted records rows written for a level.
func (m *Metrics) IncrementPersisted(level, access string) {
	if m != nil {
		m.RowsPersisted.WithLabelValues(level, access).Inc()
	}
}

// IncrementSkipped records a group dropped on entity lookup miss.
func (m *Metrics) IncrementSkipped(level string) {
	if m != nil {
		m.GroupsSkipped.WithLabelValues(level).Inc()
	}
}

// ObserveAggregateLatency records one level's aggregation duration.
func (m *Metrics) ObserveAggregateLatency(level string, d time.Duration) {
	if m != nil {
		m.AggregateLatency.WithLabelValues(level).Observe(d.Seconds())
	}
}

// ObserveRunLatency records a full run's duration.
func (m *Metrics) ObserveRunLatency(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}
