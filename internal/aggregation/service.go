package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"epiaudit/internal/aggregation/metrics"
	"epiaudit/internal/aggregation/store/summaries"
	"epiaudit/internal/geography"
	"epiaudit/internal/geography/store/entities"
	"epiaudit/internal/record"
	"epiaudit/internal/scoring"
	"epiaudit/internal/scoring/store/scores"
	"epiaudit/pkg/domain"
	dErrors "epiaudit/pkg/domain-errors"
	"epiaudit/pkg/platform/sentinel"
	"epiaudit/pkg/requestcontext"
)

// nationalEntityName labels the single ungrouped national row.
const nationalEntityName = "England and Wales"

// Service computes and persists aggregated measure counts per abstraction
// level.
type Service struct {
	records   record.Store
	scores    scores.Store
	entities  entities.Store
	summaries summaries.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches aggregation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(records record.Store, scoreStore scores.Store, entityStore entities.Store, summaryStore summaries.Store, opts ...Option) *Service {
	s := &Service{
		records:   records,
		scores:    scoreStore,
		entities:  entityStore,
		summaries: summaryStore,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate groups the cohort's scored cases at the level and computes each
// group's measure counts as of the reference time on the context. An empty
// measures slice means every measure; a subset confines the run to those
// measures' counts. An eligible registration with no stored scorecard counts
// as incomplete on every computed measure, never silently dropped.
func (s *Service) Aggregate(ctx context.Context, cohort domain.Cohort, level geography.AbstractionLevel, measures []scoring.MeasureID) ([]*Group, error) {
	if !level.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown abstraction level %q", level)
	}
	measures, err := resolveMeasures(measures)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	asOf := requestcontext.Now(ctx)

	cases, err := s.loadCases(ctx, cohort, asOf)
	if err != nil {
		return nil, err
	}
	if excluded := level.ExcludesCountry(); excluded != "" {
		cases = geography.ExcludeCountry(cases, excluded)
	}

	groups := make(map[string]*Group)
	for _, sc := range cases {
		key := ""
		if level != geography.LevelNational {
			k, ok := geography.KeyFor(sc.CareOrganisation(), level)
			if !ok {
				continue
			}
			key = k
		}
		g, ok := groups[key]
		if !ok {
			g = NewGroup(key, measures)
			groups[key] = g
		}
		g.Observe(sc)
	}
	if level == geography.LevelNational && len(groups) == 0 {
		groups[""] = NewGroup("", measures)
	}

	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	s.metrics.ObserveAggregateLatency(level.String(), time.Since(start))
	return out, nil
}

// Persist writes the groups' rows at the level. The closed view is an upsert
// per entity; the open-access view appends a publication row. A group whose
// natural key matches no reference entity is logged and skipped without
// aborting the run.
func (s *Service) Persist(ctx context.Context, level geography.AbstractionLevel, groups []*Group, cohort domain.Cohort, openAccess bool) (int, error) {
	asOf := requestcontext.Now(ctx)
	access := "closed"
	if openAccess {
		access = "open"
	}

	persisted := 0
	for _, g := range groups {
		entity, err := s.resolveEntity(ctx, level, g.Key)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				s.metrics.IncrementSkipped(level.String())
				s.logger.WarnContext(ctx, "skipping group with no reference entity",
					"level", level.String(),
					"key", g.Key,
				)
				continue
			}
			return persisted, fmt.Errorf("resolve entity: %w", err)
		}

		row := &summaries.Row{
			Level:       level,
			EntityKey:   entity.Key,
			EntityName:  entity.Name,
			Cohort:      cohort,
			OpenAccess:  openAccess,
			Cases:       g.Cases,
			Counts:      g.Counts,
			LastUpdated: asOf,
		}
		if openAccess {
			err = s.summaries.Publish(ctx, row)
		} else {
			err = s.summaries.Upsert(ctx, row)
		}
		if err != nil {
			return persisted, fmt.Errorf("persist %s row %q: %w", level, entity.Key, err)
		}
		persisted++
		s.metrics.IncrementPersisted(level.String(), access)
	}
	return persisted, nil
}

// UpdateAll aggregates and persists every requested level for the cohort,
// confined to the requested measures (empty means all). The levels and
// measures arguments are validated in full before any computation starts.
func (s *Service) UpdateAll(ctx context.Context, cohort domain.Cohort, levels []geography.AbstractionLevel, openAccess bool, measures []scoring.MeasureID) error {
	if len(levels) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "no abstraction levels requested")
	}
	for _, l := range levels {
		if !l.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown abstraction level %q", l)
		}
	}
	measures, err := resolveMeasures(measures)
	if err != nil {
		return err
	}
	start := time.Now()

	for _, level := range levels {
		groups, err := s.Aggregate(ctx, cohort, level, measures)
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", level, err)
		}
		n, err := s.Persist(ctx, level, groups, cohort, openAccess)
		if err != nil {
			return fmt.Errorf("persist %s: %w", level, err)
		}
		s.logger.InfoContext(ctx, "aggregated level",
			"level", level.String(),
			"cohort", int(cohort),
			"groups", len(groups),
			"rows", n,
		)
	}

	s.metrics.ObserveRunLatency(time.Since(start))
	return nil
}

// SeedEmptyRows writes a zero-count closed-view row for every known
// geography at every level, so reports list each entity before its first
// computation. Existing rows are left untouched.
func (s *Service) SeedEmptyRows(ctx context.Context, cohort domain.Cohort) error {
	asOf := requestcontext.Now(ctx)

	for _, level := range geography.Levels() {
		ents, err := s.levelEntities(ctx, level)
		if err != nil {
			return fmt.Errorf("list %s entities: %w", level, err)
		}
		for _, e := range ents {
			row := &summaries.Row{
				Level:       level,
				EntityKey:   e.Key,
				EntityName:  e.Name,
				Cohort:      cohort,
				Counts:      zeroCounts(),
				LastUpdated: asOf,
			}
			if err := s.summaries.Seed(ctx, row); err != nil {
				return fmt.Errorf("seed %s row %q: %w", level, e.Key, err)
			}
		}
	}
	return nil
}

// Latest reads back the most recent stored rows at a level.
func (s *Service) Latest(ctx context.Context, level geography.AbstractionLevel, cohort domain.Cohort, openAccess bool) ([]*summaries.Row, error) {
	if !level.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown abstraction level %q", level)
	}
	rows, err := s.summaries.Latest(ctx, level, cohort, openAccess)
	if err != nil {
		return nil, fmt.Errorf("read %s aggregation: %w", level, err)
	}
	return rows, nil
}

// loadCases joins eligible records with their stored scorecards.
func (s *Service) loadCases(ctx context.Context, cohort domain.Cohort, asOf time.Time) ([]ScoredCase, error) {
	recs, err := s.records.ListEligible(ctx, cohort, asOf)
	if err != nil {
		return nil, fmt.Errorf("list eligible records: %w", err)
	}
	results, err := s.scores.ListByCohort(ctx, cohort)
	if err != nil {
		return nil, fmt.Errorf("list scorecards: %w", err)
	}

	byReg := make(map[domain.RegistrationID]*scoring.Result, len(results))
	for _, r := range results {
		byReg[r.RegistrationID] = r
	}

	cases := make([]ScoredCase, 0, len(recs))
	for _, rec := range recs {
		result, ok := byReg[rec.Registration.ID]
		if !ok {
			result = &scoring.Result{
				RegistrationID: rec.Registration.ID,
				Cohort:         cohort,
			}
		}
		cases = append(cases, ScoredCase{Record: rec, Result: result})
	}
	return cases, nil
}

func (s *Service) resolveEntity(ctx context.Context, level geography.AbstractionLevel, key string) (geography.Entity, error) {
	if level == geography.LevelNational {
		return geography.Entity{Level: level, Name: nationalEntityName}, nil
	}
	return s.entities.Find(ctx, level, key)
}

func (s *Service) levelEntities(ctx context.Context, level geography.AbstractionLevel) ([]geography.Entity, error) {
	if level == geography.LevelNational {
		return []geography.Entity{{Level: level, Name: nationalEntityName}}, nil
	}
	return s.entities.List(ctx, level)
}

// resolveMeasures defaults an empty subset to the full registry and rejects
// unknown identifiers.
func resolveMeasures(measures []scoring.MeasureID) ([]scoring.MeasureID, error) {
	if len(measures) == 0 {
		return scoring.MeasureIDs(), nil
	}
	for _, id := range measures {
		if !scoring.ValidMeasureID(id) {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown measure %q", id)
		}
	}
	return measures, nil
}

func zeroCounts() map[scoring.MeasureID]*scoring.MeasureCounts {
	counts := make(map[scoring.MeasureID]*scoring.MeasureCounts)
	for _, id := range scoring.MeasureIDs() {
		counts[id] = &scoring.MeasureCounts{}
	}
	return counts
}
