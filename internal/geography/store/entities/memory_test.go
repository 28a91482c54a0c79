package entities_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epiaudit/internal/geography"
	"epiaudit/internal/geography/store/entities"
	"epiaudit/pkg/platform/sentinel"
)

func TestMemoryFind(t *testing.T) {
	ctx := context.Background()
	store := entities.NewMemory()
	store.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})

	t.Run("known entity", func(t *testing.T) {
		e, err := store.Find(ctx, geography.LevelTrust, "RGT")
		require.NoError(t, err)
		assert.Equal(t, "Cambridge University Hospitals", e.Name)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := store.Find(ctx, geography.LevelTrust, "RBS")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("same key at another level misses", func(t *testing.T) {
		_, err := store.Find(ctx, geography.LevelICB, "RGT")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("put replaces", func(t *testing.T) {
		store.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Renamed"})
		e, err := store.Find(ctx, geography.LevelTrust, "RGT")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", e.Name)
	})
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	store := entities.NewMemory()
	store.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge"})
	store.Put(geography.Entity{Level: geography.LevelTrust, Key: "RBS", Name: "Alder Hey"})
	store.Put(geography.Entity{Level: geography.LevelCountry, Key: "E92000001", Name: "England"})

	trusts, err := store.List(ctx, geography.LevelTrust)
	require.NoError(t, err)
	require.Len(t, trusts, 2)
	assert.Equal(t, "RBS", trusts[0].Key)
	assert.Equal(t, "RGT", trusts[1].Key)

	none, err := store.List(ctx, geography.LevelOpenUKNetwork)
	require.NoError(t, err)
	assert.Empty(t, none)
}
