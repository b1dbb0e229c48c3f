// Package leaderboard ranks users by cumulative score. Rankings live in a
// Redis sorted set when one is configured; a store-backed fallback keeps the
// endpoint working without it.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

const rankingKey = "bisaathi:leaderboard"

// Entry is one leaderboard row.
type Entry struct {
	UserID id.UserID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	Score  int       `json:"score"`
	Rank   int       `json:"rank"`
}

// Store answers ranking queries from authoritative storage and resolves
// display names.
type Store interface {
	TopByScore(ctx context.Context, limit int) ([]Entry, error)
	NamesByID(ctx context.Context, userIDs []id.UserID) (map[id.UserID]string, error)
}

// Cmdable is the slice of the redis client the service uses.
type Cmdable interface {
	ZAdd(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *goredis.ZSliceCmd
}

type Service struct {
	store  Store
	cache  Cmdable
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCache enables the Redis sorted-set ranking path.
func WithCache(cache Cmdable) Option {
	return func(s *Service) { s.cache = cache }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("leaderboard store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Record mirrors a score change into the ranking cache. Absolute scores make
// the write idempotent. Without a cache this is a no-op; the fallback query
// reads authoritative storage directly.
func (s *Service) Record(ctx context.Context, userID id.UserID, score int) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.ZAdd(ctx, rankingKey, goredis.Z{
		Score:  float64(score),
		Member: userID.String(),
	}).Err()
}

// Top returns the highest-scoring users. The cache is tried first; on a cache
// miss or error the store answers and the failure is only logged.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.cache != nil {
		entries, err := s.topFromCache(ctx, limit)
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache read failed, falling back to store", "error", err)
		} else if len(entries) > 0 {
			return entries, nil
		}
	}

	entries, err := s.store.TopByScore(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rank users")
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) topFromCache(ctx context.Context, limit int) ([]Entry, error) {
	ranked, err := s.cache.ZRevRangeWithScores(ctx, rankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(ranked))
	ids := make([]id.UserID, 0, len(ranked))
	for i, z := range ranked {
		member, ok := z.Member.(string)
		if !ok {
			return nil, errors.New("unexpected member type in ranking set")
		}
		userID, err := id.ParseUserID(member)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{UserID: userID, Score: int(z.Score), Rank: i + 1})
		ids = append(ids, userID)
	}

	names, err := s.store.NamesByID(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve leaderboard names", "error", err)
		return entries, nil
	}
	for i := range entries {
		entries[i].Name = names[entries[i].UserID]
	}
	return entries, nil
}
