package summaries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epiaudit/internal/geography"
	"epiaudit/internal/scoring"
)

func row(key string, passed int, updated time.Time) *Row {
	counts := make(map[scoring.MeasureID]*scoring.MeasureCounts)
	for _, id := range scoring.MeasureIDs() {
		counts[id] = &scoring.MeasureCounts{Passed: passed, TotalEligible: passed}
	}
	return &Row{
		Level:       geography.LevelTrust,
		EntityKey:   key,
		EntityName:  key + " Trust",
		Cohort:      5,
		Cases:       passed,
		Counts:      counts,
		LastUpdated: updated,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("upsert keeps one current row per entity", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Upsert(ctx, row("RGT", 1, now)))
		require.NoError(t, m.Upsert(ctx, row("RGT", 7, now.Add(time.Hour))))

		rows, err := m.Latest(ctx, geography.LevelTrust, 5, false)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 7, rows[0].Counts[scoring.MeasureECG].Passed)
	})

	t.Run("upsert of a measure subset merges into the current row", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Upsert(ctx, row("RGT", 1, now)))

		subset := &Row{
			Level:      geography.LevelTrust,
			EntityKey:  "RGT",
			EntityName: "RGT Trust",
			Cohort:     5,
			Cases:      2,
			Counts: map[scoring.MeasureID]*scoring.MeasureCounts{
				scoring.MeasureECG: {Passed: 2, TotalEligible: 2},
			},
			LastUpdated: now.Add(time.Hour),
		}
		require.NoError(t, m.Upsert(ctx, subset))

		rows, err := m.Latest(ctx, geography.LevelTrust, 5, false)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 2, rows[0].Counts[scoring.MeasureECG].Passed)
		assert.Equal(t, 1, rows[0].Counts[scoring.MeasureMRI].Passed,
			"measures outside the subset keep their counts")
		assert.Equal(t, 2, rows[0].Cases)
		assert.Equal(t, now.Add(time.Hour), rows[0].LastUpdated)
	})

	t.Run("publish appends and latest picks the newest", func(t *testing.T) {
		m := NewMemory()
		first := row("RGT", 1, now)
		first.OpenAccess = true
		second := row("RGT", 9, now.Add(time.Hour))
		second.OpenAccess = true
		require.NoError(t, m.Publish(ctx, first))
		require.NoError(t, m.Publish(ctx, second))

		assert.Equal(t, 2, m.PublishedCount(geography.LevelTrust, "RGT", 5))

		rows, err := m.Latest(ctx, geography.LevelTrust, 5, true)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 9, rows[0].Counts[scoring.MeasureECG].Passed)
	})

	t.Run("seed never overwrites", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Upsert(ctx, row("RGT", 3, now)))
		require.NoError(t, m.Seed(ctx, row("RGT", 0, now)))
		require.NoError(t, m.Seed(ctx, row("RBS", 0, now)))

		rows, err := m.Latest(ctx, geography.LevelTrust, 5, false)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "RBS", rows[0].EntityKey)
		assert.Equal(t, 0, rows[0].Counts[scoring.MeasureECG].Passed)
		assert.Equal(t, "RGT", rows[1].EntityKey)
		assert.Equal(t, 3, rows[1].Counts[scoring.MeasureECG].Passed)
	})

	t.Run("rows are copied on write and read", func(t *testing.T) {
		m := NewMemory()
		original := row("RGT", 2, now)
		require.NoError(t, m.Upsert(ctx, original))
		original.Counts[scoring.MeasureECG].Passed = 99

		rows, err := m.Latest(ctx, geography.LevelTrust, 5, false)
		require.NoError(t, err)
		assert.Equal(t, 2, rows[0].Counts[scoring.MeasureECG].Passed)
	})
}
