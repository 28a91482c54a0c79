package aggregation_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"epiaudit/internal/aggregation"
	"epiaudit/internal/aggregation/mocks"
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

const testCohort = domain.Cohort(5)

var asOf = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

func englishOrg(ods, trust string) geography.Organisation {
	return geography.Organisation{
		ODSCode: ods,
		Trust:   &geography.Trust{ODSCode: trust, Name: trust + " Trust"},
		Country: geography.Country{BoundaryIdentifier: geography.CountryEngland, Name: "England"},
	}
}

func welshOrg(ods, lhb string) geography.Organisation {
	return geography.Organisation{
		ODSCode:          ods,
		LocalHealthBoard: &geography.LocalHealthBoard{ODSCode: lhb, Name: lhb + " Health Board"},
		Country:          geography.Country{BoundaryIdentifier: geography.CountryWales, Name: "Wales"},
	}
}

type fixture struct {
	records   *record.Memory
	scores    *scores.Memory
	entities  *entities.Memory
	summaries *summaries.Memory
	svc       *aggregation.Service
}

func newFixture() *fixture {
	f := &fixture{
		records:   record.NewMemory(),
		scores:    scores.NewMemory(),
		entities:  entities.NewMemory(),
		summaries: summaries.NewMemory(),
	}
	f.svc = aggregation.NewService(f.records, f.scores, f.entities, f.summaries)
	return f
}

// addCase stores an eligible record and a scorecard holding the given code
// for every measure.
func (f *fixture) addCase(t *testing.T, org geography.Organisation, code scoring.ScoreCode) domain.RegistrationID {
	t.Helper()
	regID, err := domain.ParseRegistrationID(uuid.NewString())
	require.NoError(t, err)

	fpa := time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)
	f.records.Put(&record.Record{
		Registration: record.Registration{
			ID:                            regID,
			Cohort:                        testCohort,
			FirstPaediatricAssessmentDate: &fpa,
			CompletedFirstYearOfCareDate:  fpa.AddDate(1, 0, 0),
		},
		Site: record.Site{
			Organisation:           org,
			ActivelyInvolvedInCare: true,
			PrimaryCentreOfCare:    true,
		},
		Assessment:     &record.Assessment{},
		Investigations: &record.Investigations{},
		Diagnosis:      &record.Diagnosis{},
		Management:     &record.Management{},
	})

	result := &scoring.Result{
		RegistrationID: regID,
		Cohort:         testCohort,
		Scores:         make(map[scoring.MeasureID]scoring.ScoreCode),
		UpdatedAt:      asOf,
	}
	for _, id := range scoring.MeasureIDs() {
		result.Scores[id] = code
	}
	require.NoError(t, f.scores.Save(context.Background(), result))
	return regID
}

func TestAggregate(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), asOf)

	t.Run("counts partition the in-scope patients", func(t *testing.T) {
		f := newFixture()
		org := englishOrg("RGT01", "RGT")
		f.addCase(t, org, scoring.Pass)
		f.addCase(t, org, scoring.Fail)
		f.addCase(t, org, scoring.Ineligible)
		f.addCase(t, org, scoring.NotScored)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelOrganisation, nil)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		g := groups[0]
		assert.Equal(t, "RGT01", g.Key)
		assert.Equal(t, 4, g.Cases)
		for _, id := range scoring.MeasureIDs() {
			c := g.Counts[id]
			assert.Equal(t, 1, c.Passed, "measure %s", id)
			assert.Equal(t, 2, c.TotalEligible, "measure %s", id)
			assert.Equal(t, 1, c.Ineligible, "measure %s", id)
			assert.Equal(t, 1, c.Incomplete, "measure %s", id)
			assert.Equal(t, g.Cases, c.TotalEligible+c.Ineligible+c.Incomplete,
				"measure %s partitions the group", id)
		}
	})

	t.Run("eligible case without a scorecard counts as incomplete", func(t *testing.T) {
		f := newFixture()
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)
		// Second record, never scored.
		fpa := time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)
		unscored, err := domain.ParseRegistrationID(uuid.NewString())
		require.NoError(t, err)
		f.records.Put(&record.Record{
			Registration: record.Registration{
				ID:                            unscored,
				Cohort:                        testCohort,
				FirstPaediatricAssessmentDate: &fpa,
				CompletedFirstYearOfCareDate:  fpa.AddDate(1, 0, 0),
			},
			Site: record.Site{
				Organisation:           englishOrg("RGT01", "RGT"),
				ActivelyInvolvedInCare: true,
				PrimaryCentreOfCare:    true,
			},
		})

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelOrganisation, nil)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 2, groups[0].Cases)
		c := groups[0].Counts[scoring.MeasureECG]
		assert.Equal(t, 1, c.Incomplete)
	})

	t.Run("welsh patients never reach trust level", func(t *testing.T) {
		f := newFixture()
		f.addCase(t, welshOrg("7A1A1", "7A1"), scoring.Pass)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelTrust, nil)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("english patients never reach health board level", func(t *testing.T) {
		f := newFixture()
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)
		f.addCase(t, welshOrg("7A1A1", "7A1"), scoring.Pass)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelLocalHealthBoard, nil)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "7A1", groups[0].Key)
		assert.Equal(t, 1, groups[0].Cases)
	})

	t.Run("national is one group across both countries", func(t *testing.T) {
		f := newFixture()
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)
		f.addCase(t, welshOrg("7A1A1", "7A1"), scoring.Pass)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelNational, nil)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "", groups[0].Key)
		assert.Equal(t, 2, groups[0].Cases)
	})

	t.Run("national with no patients still yields a zero row", func(t *testing.T) {
		f := newFixture()
		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelNational, nil)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 0, groups[0].Cases)
	})

	t.Run("unknown level is rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Aggregate(ctx, testCohort, geography.AbstractionLevel(99), nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("measure subset confines the counts", func(t *testing.T) {
		f := newFixture()
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelOrganisation,
			[]scoring.MeasureID{scoring.MeasureECG})
		require.NoError(t, err)
		require.Len(t, groups, 1)

		require.Len(t, groups[0].Counts, 1, "only the requested measure is computed")
		require.NotNil(t, groups[0].Counts[scoring.MeasureECG])
		assert.Equal(t, 1, groups[0].Counts[scoring.MeasureECG].Passed)
		assert.Equal(t, 1, groups[0].Cases)
	})

	t.Run("unknown measure is rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Aggregate(ctx, testCohort, geography.LevelOrganisation,
			[]scoring.MeasureID{"not_a_measure"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestPersist(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), asOf)

	t.Run("closed view upserts, open view appends", func(t *testing.T) {
		f := newFixture()
		f.entities.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)

		groups, err := f.svc.Aggregate(ctx, testCohort, geography.LevelTrust, nil)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			n, err := f.svc.Persist(ctx, geography.LevelTrust, groups, testCohort, false)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		}
		rows, err := f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
		require.NoError(t, err)
		require.Len(t, rows, 1, "repeated closed-view runs keep one row")
		assert.Equal(t, "Cambridge University Hospitals", rows[0].EntityName)

		for i := 0; i < 2; i++ {
			_, err := f.svc.Persist(ctx, geography.LevelTrust, groups, testCohort, true)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, f.summaries.PublishedCount(geography.LevelTrust, "RGT", testCohort),
			"every publication keeps its own row")
	})

	t.Run("missing reference entity skips the group", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		entityStore := mocks.NewMockStore(ctrl)
		f := newFixture()
		svc := aggregation.NewService(f.records, f.scores, entityStore, f.summaries)

		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)
		f.addCase(t, englishOrg("RBS01", "RBS"), scoring.Pass)

		entityStore.EXPECT().
			Find(gomock.Any(), geography.LevelTrust, "RBS").
			Return(geography.Entity{Level: geography.LevelTrust, Key: "RBS", Name: "Alder Hey"}, nil)
		entityStore.EXPECT().
			Find(gomock.Any(), geography.LevelTrust, "RGT").
			Return(geography.Entity{}, fmt.Errorf("entity trust %q: %w", "RGT", sentinel.ErrNotFound))

		groups, err := svc.Aggregate(ctx, testCohort, geography.LevelTrust, nil)
		require.NoError(t, err)
		require.Len(t, groups, 2)

		n, err := svc.Persist(ctx, geography.LevelTrust, groups, testCohort, false)
		require.NoError(t, err, "a lookup miss must not abort the run")
		assert.Equal(t, 1, n)

		rows, err := f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "RBS", rows[0].EntityKey)
	})
}

func TestUpdateAll(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), asOf)

	t.Run("validates levels before any computation", func(t *testing.T) {
		f := newFixture()
		err := f.svc.UpdateAll(ctx, testCohort, nil, false, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = f.svc.UpdateAll(ctx, testCohort,
			[]geography.AbstractionLevel{geography.LevelTrust, geography.AbstractionLevel(99)}, false, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		rows, err := f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
		require.NoError(t, err)
		assert.Empty(t, rows, "nothing persisted on eager validation failure")
	})

	t.Run("aggregates and persists each requested level", func(t *testing.T) {
		f := newFixture()
		f.entities.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})
		f.entities.Put(geography.Entity{Level: geography.LevelCountry, Key: geography.CountryEngland, Name: "England"})
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)

		levels := []geography.AbstractionLevel{
			geography.LevelTrust, geography.LevelCountry, geography.LevelNational,
		}
		require.NoError(t, f.svc.UpdateAll(ctx, testCohort, levels, false, nil))

		for _, level := range levels {
			rows, err := f.summaries.Latest(ctx, level, testCohort, false)
			require.NoError(t, err)
			require.Len(t, rows, 1, "level %s", level)
			assert.Equal(t, asOf, rows[0].LastUpdated)
		}
	})

	t.Run("measure subset run leaves other measures' rows alone", func(t *testing.T) {
		f := newFixture()
		f.entities.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)

		levels := []geography.AbstractionLevel{geography.LevelTrust}
		require.NoError(t, f.svc.UpdateAll(ctx, testCohort, levels, false, nil))

		// A second patient fails everything; recompute only the ECG measure.
		f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Fail)
		require.NoError(t, f.svc.UpdateAll(ctx, testCohort, levels, false,
			[]scoring.MeasureID{scoring.MeasureECG}))

		rows, err := f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		ecg := rows[0].Counts[scoring.MeasureECG]
		require.NotNil(t, ecg)
		assert.Equal(t, 2, ecg.TotalEligible, "subset measure reflects the new case")

		mri := rows[0].Counts[scoring.MeasureMRI]
		require.NotNil(t, mri)
		assert.Equal(t, 1, mri.TotalEligible, "untouched measure keeps the earlier run's counts")

		err = f.svc.UpdateAll(ctx, testCohort, levels, false,
			[]scoring.MeasureID{"not_a_measure"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestSeedEmptyRows(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), asOf)

	f := newFixture()
	f.entities.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})
	f.entities.Put(geography.Entity{Level: geography.LevelTrust, Key: "RBS", Name: "Alder Hey"})

	require.NoError(t, f.svc.SeedEmptyRows(ctx, testCohort))

	rows, err := f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 0, row.Cases)
		for _, id := range scoring.MeasureIDs() {
			require.NotNil(t, row.Counts[id])
			assert.Equal(t, scoring.MeasureCounts{}, *row.Counts[id])
		}
	}

	national, err := f.summaries.Latest(ctx, geography.LevelNational, testCohort, false)
	require.NoError(t, err)
	assert.Len(t, national, 1, "national row seeded without reference data")

	// Seeding again after a real computation must not overwrite it.
	f.addCase(t, englishOrg("RGT01", "RGT"), scoring.Pass)
	require.NoError(t, f.svc.UpdateAll(ctx, testCohort,
		[]geography.AbstractionLevel{geography.LevelTrust}, false, nil))
	require.NoError(t, f.svc.SeedEmptyRows(ctx, testCohort))

	rows, err = f.summaries.Latest(ctx, geography.LevelTrust, testCohort, false)
	require.NoError(t, err)
	for _, row := range rows {
		if row.EntityKey == "RGT" {
			assert.Equal(t, 1, row.Cases, "seed must not clobber computed rows")
		}
	}
}
