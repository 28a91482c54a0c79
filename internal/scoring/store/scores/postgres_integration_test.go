//go:build integration

package scores_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"epiaudit/internal/scoring"
	"epiaudit/internal/scoring/store/scores"
	"epiaudit/pkg/domain"
	"epiaudit/pkg/testutil/containers"
)

type PostgresScoresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *scores.Postgres
}

func TestPostgresScoresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresScoresSuite))
}

func (s *PostgresScoresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = scores.NewPostgres(s.postgres.DB)
}

func (s *PostgresScoresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "kpi_scores"))
}

func (s *PostgresScoresSuite) newResult(cohort domain.Cohort, code scoring.ScoreCode) *scoring.Result {
	regID, err := domain.ParseRegistrationID(uuid.NewString())
	s.Require().NoError(err)

	result := &scoring.Result{
		RegistrationID: regID,
		Cohort:         cohort,
		Scores:         make(map[scoring.MeasureID]scoring.ScoreCode),
		UpdatedAt:      time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC),
	}
	for _, id := range scoring.MeasureIDs() {
		result.Scores[id] = code
	}
	return result
}

func (s *PostgresScoresSuite) TestSaveAndGet() {
	ctx := context.Background()
	result := s.newResult(5, scoring.Pass)

	s.Require().NoError(s.store.Save(ctx, result))

	got, err := s.store.Get(ctx, result.RegistrationID)
	s.Require().NoError(err)
	s.Equal(result.Cohort, got.Cohort)
	s.Equal(result.Scores, got.Scores)
}

func (s *PostgresScoresSuite) TestSaveReplacesWholeScorecard() {
	ctx := context.Background()
	result := s.newResult(5, scoring.Pass)
	s.Require().NoError(s.store.Save(ctx, result))

	for _, id := range scoring.MeasureIDs() {
		result.Scores[id] = scoring.Fail
	}
	s.Require().NoError(s.store.Save(ctx, result))

	got, err := s.store.Get(ctx, result.RegistrationID)
	s.Require().NoError(err)
	s.Len(got.Scores, len(scoring.MeasureIDs()), "rescoring must not duplicate rows")
	for _, id := range scoring.MeasureIDs() {
		s.Equal(scoring.Fail, got.Scores[id])
	}
}

func (s *PostgresScoresSuite) TestGetMissingScorecard() {
	regID, err := domain.ParseRegistrationID(uuid.NewString())
	s.Require().NoError(err)

	_, err = s.store.Get(context.Background(), regID)
	s.Error(err)
}

func (s *PostgresScoresSuite) TestListByCohort() {
	ctx := context.Background()
	a := s.newResult(5, scoring.Pass)
	b := s.newResult(5, scoring.Fail)
	other := s.newResult(6, scoring.Pass)
	for _, r := range []*scoring.Result{a, b, other} {
		s.Require().NoError(s.store.Save(ctx, r))
	}

	got, err := s.store.ListByCohort(ctx, 5)
	s.Require().NoError(err)
	s.Len(got, 2)
	for _, r := range got {
		s.Equal(domain.Cohort(5), r.Cohort)
		s.Len(r.Scores, len(scoring.MeasureIDs()))
	}
}
