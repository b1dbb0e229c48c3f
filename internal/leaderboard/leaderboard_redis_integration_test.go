//go:build integration

package leaderboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"bisaathi/internal/leaderboard"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/testutil/containers"
)

type RedisLeaderboardSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *leaderboard.InMemoryStore
	svc   *leaderboard.Service
}

func TestRedisLeaderboardSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLeaderboardSuite))
}

func (s *RedisLeaderboardSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisLeaderboardSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = leaderboard.NewMemoryStore()

	var err error
	s.svc, err = leaderboard.New(s.store, leaderboard.WithCache(s.redis.Client))
	s.Require().NoError(err)
}

func (s *RedisLeaderboardSuite) TestRankedReadsComeFromTheSortedSet() {
	ctx := context.Background()
	alice := id.NewUserID()
	bob := id.NewUserID()
	s.store.SetName(alice, "Alice")
	s.store.SetName(bob, "Bob")

	s.Require().NoError(s.svc.Record(ctx, alice, 150))
	s.Require().NoError(s.svc.Record(ctx, bob, 300))

	top, err := s.svc.Top(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(bob, top[0].UserID)
	s.Equal("Bob", top[0].Name)
	s.Equal(300, top[0].Score)
	s.Equal(1, top[0].Rank)
	s.Equal(alice, top[1].UserID)
}

func (s *RedisLeaderboardSuite) TestRecordIsIdempotentPerScore() {
	ctx := context.Background()
	userID := id.NewUserID()

	s.Require().NoError(s.svc.Record(ctx, userID, 50))
	s.Require().NoError(s.svc.Record(ctx, userID, 50))
	s.Require().NoError(s.svc.Record(ctx, userID, 90))

	top, err := s.svc.Top(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(90, top[0].Score)
}

func (s *RedisLeaderboardSuite) TestEmptyCacheFallsBackToStore() {
	ctx := context.Background()
	userID := id.NewUserID()
	s.Require().NoError(s.store.Record(ctx, userID, 120))

	top, err := s.svc.Top(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(120, top[0].Score)
}
