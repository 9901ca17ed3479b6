//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthstack/internal/presence/models"
	"healthstack/internal/presence/store"
	"healthstack/pkg/testutil/containers"
)

type RedisPresenceStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisPresenceStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisPresenceStoreSuite))
}

func (s *RedisPresenceStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisPresenceStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func record(identity string, lat, lng float64, seenAt time.Time) *models.PresenceRecord {
	return &models.PresenceRecord{
		Identity:     identity,
		LastLocation: &models.Location{Lat: lat, Lng: lng},
		LastSeenAt:   seenAt,
	}
}

func (s *RedisPresenceStoreSuite) TestUpsertAndGetMany() {
	ctx := context.Background()
	seenAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Upsert(ctx, record("a@example.com", 1, 2, seenAt)))
	s.Require().NoError(s.store.Upsert(ctx, record("b@example.com", 3, 4, seenAt)))

	records, err := s.store.GetMany(ctx, []string{"b@example.com", "ghost@example.com", "a@example.com"})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("b@example.com", records[0].Identity)
	s.Equal("a@example.com", records[1].Identity)
	s.True(records[0].LastSeenAt.Equal(seenAt))
}

func (s *RedisPresenceStoreSuite) TestUpsertReplacesAndIgnoresCase() {
	ctx := context.Background()
	seenAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Upsert(ctx, record("Helper@Example.com", 1, 2, seenAt)))
	s.Require().NoError(s.store.Upsert(ctx, record("helper@example.com", 5, 6, seenAt.Add(time.Minute))))

	records, err := s.store.GetMany(ctx, []string{"HELPER@example.com"})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(5.0, records[0].LastLocation.Lat)
}

func (s *RedisPresenceStoreSuite) TestGetManyEmptyInput() {
	records, err := s.store.GetMany(context.Background(), nil)
	s.NoError(err)
	s.Empty(records)
}
