package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/pkg/circuitbreaker"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Leaderboard keys. The ranking itself lives in a single sorted set scored
// by total XP; metadata about the last full rebuild lives next to it.
const (
	keyLeaderboardXP   = PrefixLeaderboard + "xp"
	keyLeaderboardMeta = PrefixLeaderboard + "meta"
)

// LeaderboardCache implements progress.LeaderboardCache on a Redis sorted set.
// Calls go through a circuit breaker so a dead Redis fails fast, and through
// a short retry loop so transient hiccups don't surface to callers.
type LeaderboardCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewLeaderboardCache creates a leaderboard cache on top of an existing client.
func NewLeaderboardCache(cache *Cache, log *logger.Logger) *LeaderboardCache {
	lc := &LeaderboardCache{
		cache:   cache,
		retrier: retry.CacheRetrier(),
		log:     log.With(logger.Component("leaderboard_cache")),
	}
	lc.breaker = circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		lc.log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	return lc
}

// execute runs fn under the breaker and retrier.
func (lc *LeaderboardCache) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return lc.breaker.Execute(ctx, func(ctx context.Context) error {
		return lc.retrier.Do(ctx, fn)
	})
}

// UpdateScore sets the user's score in the ranking.
func (lc *LeaderboardCache) UpdateScore(ctx context.Context, userID string, totalXP int) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return lc.execute(ctx, func(ctx context.Context) error {
		return lc.cache.Client().ZAdd(ctx, keyLeaderboardXP, redis.Z{
			Score:  float64(totalXP),
			Member: userID,
		}).Err()
	})
}

// Top returns the first limit entries by descending XP, ranks starting at 1.
func (lc *LeaderboardCache) Top(ctx context.Context, limit int) ([]progress.LeaderboardEntry, error) {
	if limit <= 0 {
		return []progress.LeaderboardEntry{}, nil
	}

	var members []redis.Z
	err := lc.execute(ctx, func(ctx context.Context) error {
		var err error
		members, err = lc.cache.Client().ZRevRangeWithScores(ctx, keyLeaderboardXP, 0, int64(limit-1)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]progress.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, progress.LeaderboardEntry{
			Rank:    i + 1,
			UserID:  userID,
			TotalXP: int(m.Score),
		})
	}
	return entries, nil
}

// Rank returns the user's 1-based position, or 0 if the user is not ranked.
func (lc *LeaderboardCache) Rank(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrCacheKeyEmpty
	}

	var rank int64
	err := lc.execute(ctx, func(ctx context.Context) error {
		var err error
		rank, err = lc.cache.Client().ZRevRank(ctx, keyLeaderboardXP, userID).Result()
		if errors.Is(err, redis.Nil) {
			rank = -1
			return nil
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	if rank < 0 {
		return 0, nil
	}
	return int(rank) + 1, nil
}

// Rebuild atomically replaces the ranking with the given records.
// Runs as a transaction pipeline so readers never observe a half-built set.
func (lc *LeaderboardCache) Rebuild(ctx context.Context, records []*progress.GamificationRecord) error {
	start := time.Now()

	err := lc.execute(ctx, func(ctx context.Context) error {
		pipe := lc.cache.Client().TxPipeline()
		pipe.Del(ctx, keyLeaderboardXP)

		if len(records) > 0 {
			members := make([]redis.Z, 0, len(records))
			for _, r := range records {
				if r.UserID == "" {
					continue
				}
				members = append(members, redis.Z{
					Score:  float64(r.TotalXP),
					Member: r.UserID,
				})
			}
			pipe.ZAdd(ctx, keyLeaderboardXP, members...)
		}

		pipe.HSet(ctx, keyLeaderboardMeta,
			"rebuilt_at", time.Now().UTC().Format(time.RFC3339),
			"entries", strconv.Itoa(len(records)),
		)
		pipe.Expire(ctx, keyLeaderboardMeta, TTLLeaderboardMeta)

		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	lc.log.Info("leaderboard rebuilt",
		logger.Int("entries", len(records)),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}
