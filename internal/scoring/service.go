package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"epiaudit/internal/record"
	"epiaudit/internal/scoring/metrics"
	"epiaudit/pkg/domain"
	"epiaudit/pkg/platform/sentinel"
	"epiaudit/pkg/requestcontext"
)

// cohortWorkers bounds concurrent registrations during a cohort run.
const cohortWorkers = 8

// ScoreStore persists and reads back complete scorecards. It is declared
// here so the store implementations under store/scores can depend on this
// package without an import cycle; store/scores aliases it as scores.Store.
type ScoreStore interface {
	// Save writes every measure's score for the registration in one atomic
	// operation, replacing any previous scorecard.
	Save(ctx context.Context, result *Result) error
	// Get returns the stored scorecard, or a sentinel.ErrNotFound wrapped
	// error when the registration has never been scored.
	Get(ctx context.Context, id domain.RegistrationID) (*Result, error)
	// ListByCohort returns every stored scorecard for the cohort, keyed by
	// registration, for the aggregation pass.
	ListByCohort(ctx context.Context, cohort domain.Cohort) ([]*Result, error)
}

// Service runs the measure registry over clinical records and persists the
// resulting scorecards.
type Service struct {
	records record.Store
	scores  ScoreStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches scoring metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(records record.Store, scoreStore ScoreStore, opts ...Option) *Service {
	s := &Service{
		records: records,
		scores:  scoreStore,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreRegistration scores one registration across every measure and saves
// the complete scorecard. A record that fails validation is rejected with a
// CodeInvalidInput error; a registration with no first paediatric assessment
// is saved with every measure unscored.
func (s *Service) ScoreRegistration(ctx context.Context, regID domain.RegistrationID) (*Result, error) {
	start := time.Now()

	rec, err := s.records.Get(ctx, regID)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		s.metrics.IncrementRejected()
		return nil, err
	}

	result := s.score(rec)
	result.UpdatedAt = requestcontext.Now(ctx)

	if err := s.scores.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("save scorecard: %w", err)
	}

	s.metrics.ObserveScoreLatency(time.Since(start))
	s.logger.InfoContext(ctx, "scored registration",
		"registration_id", regID.String(),
		"cohort", int(result.Cohort),
	)
	return result, nil
}

// ScoreCohort scores every eligible registration in the cohort as of the
// reference time on the context. Validation failures are counted and logged
// but do not abort the run; any storage error does.
func (s *Service) ScoreCohort(ctx context.Context, cohort domain.Cohort) (int, error) {
	start := time.Now()
	asOf := requestcontext.Now(ctx)

	recs, err := s.records.ListEligible(ctx, cohort, asOf)
	if err != nil {
		return 0, fmt.Errorf("list eligible records: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cohortWorkers)

	scored := make([]bool, len(recs))
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			if err := rec.Validate(); err != nil {
				s.metrics.IncrementRejected()
				s.logger.WarnContext(ctx, "skipping invalid record",
					"registration_id", rec.Registration.ID.String(),
					"error", err.Error(),
				)
				return nil
			}
			result := s.score(rec)
			result.UpdatedAt = asOf
			if err := s.scores.Save(ctx, result); err != nil {
				return fmt.Errorf("save scorecard %s: %w", rec.Registration.ID, err)
			}
			scored[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, ok := range scored {
		if ok {
			n++
		}
	}
	s.metrics.ObserveCohortLatency(time.Since(start))
	s.logger.InfoContext(ctx, "scored cohort",
		"cohort", int(cohort),
		"eligible", len(recs),
		"scored", n,
	)
	return n, nil
}

// score runs the full registry over one validated record.
func (s *Service) score(rec *record.Record) *Result {
	result := &Result{
		RegistrationID: rec.Registration.ID,
		Cohort:         rec.Registration.Cohort,
		Scores:         make(map[MeasureID]ScoreCode, len(measures)),
	}

	if rec.Registration.FirstPaediatricAssessmentDate == nil {
		for _, m := range measures {
			result.Scores[m.ID] = NotScored
			s.metrics.IncrementOutcome(string(m.ID), NotScored.String())
		}
		return result
	}

	age := AgeAtFirstAssessmentYears(rec)
	for _, m := range measures {
		code := m.Score(rec, age)
		result.Scores[m.ID] = code
		s.metrics.IncrementOutcome(string(m.ID), code.String())
	}
	return result
}

// Scorecard returns the stored scorecard for a registration.
func (s *Service) Scorecard(ctx context.Context, regID domain.RegistrationID) (*Result, error) {
	result, err := s.scores.Get(ctx, regID)
	if err != nil {
		return nil, fmt.Errorf("load scorecard: %w", err)
	}
	return result, nil
}

// IsNotFound reports whether err is a missing-record or missing-scorecard
// error, letting transport map it without importing storage internals.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
