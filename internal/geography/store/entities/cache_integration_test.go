//go:build integration

package entities_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"epiaudit/internal/geography"
	"epiaudit/internal/geography/store/entities"
	platformredis "epiaudit/internal/platform/redis"
	"epiaudit/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *entities.Memory
	cache *entities.Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.inner = entities.NewMemory()

	cache, err := entities.NewCache(s.inner, &platformredis.Client{Client: s.redis.Client}, time.Minute)
	s.Require().NoError(err)
	s.cache = cache
}

func (s *CacheSuite) TestReadThrough() {
	ctx := context.Background()
	s.inner.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})

	got, err := s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Require().NoError(err)
	s.Equal("Cambridge University Hospitals", got.Name)

	// A store update is invisible until the TTL or an invalidation; the
	// cached copy keeps being served.
	s.inner.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Renamed Trust"})
	got, err = s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Require().NoError(err)
	s.Equal("Cambridge University Hospitals", got.Name)
}

func (s *CacheSuite) TestMissIsNotCached() {
	ctx := context.Background()

	_, err := s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Error(err)

	s.inner.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Cambridge University Hospitals"})
	got, err := s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Require().NoError(err)
	s.Equal("Cambridge University Hospitals", got.Name)
}

func (s *CacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.inner.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "Old Name"})

	_, err := s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Require().NoError(err)

	s.inner.Put(geography.Entity{Level: geography.LevelTrust, Key: "RGT", Name: "New Name"})
	s.Require().NoError(s.cache.Invalidate(ctx, geography.LevelTrust, "RGT"))

	got, err := s.cache.Find(ctx, geography.LevelTrust, "RGT")
	s.Require().NoError(err)
	s.Equal("New Name", got.Name)
}
