package redis

import (
	"context"
	"errors"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/circuitbreaker"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache implements progress.StatsCache. Dashboard responses are stored
// as opaque JSON under stats:{userID}:{view} and evicted either by TTL or
// by per-user invalidation after each completed session.
type StatsCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewStatsCache creates a stats cache on top of an existing client.
func NewStatsCache(cache *Cache, log *logger.Logger) *StatsCache {
	sc := &StatsCache{
		cache:   cache,
		retrier: retry.CacheRetrier(),
		log:     log.With(logger.Component("stats_cache")),
	}
	sc.breaker = circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		sc.log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	return sc
}

func (sc *StatsCache) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return sc.breaker.Execute(ctx, func(ctx context.Context) error {
		return sc.retrier.Do(ctx, fn)
	})
}

// Get returns the cached payload for the view, or shared.ErrNotFound on miss.
func (sc *StatsCache) Get(ctx context.Context, userID, view string) ([]byte, error) {
	if userID == "" || view == "" {
		return nil, ErrCacheKeyEmpty
	}

	var payload []byte
	err := sc.execute(ctx, func(ctx context.Context) error {
		var err error
		payload, err = sc.cache.GetBytes(ctx, StatsKey(userID, view))
		if errors.Is(err, ErrCacheMiss) {
			// A miss is an answer, not a failure: don't trip the breaker.
			payload = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, shared.ErrNotFound
	}
	return payload, nil
}

// Set stores the payload for the view with the given TTL.
func (sc *StatsCache) Set(ctx context.Context, userID, view string, payload []byte, ttl time.Duration) error {
	if userID == "" || view == "" {
		return ErrCacheKeyEmpty
	}
	if ttl <= 0 {
		ttl = TTLStatsCache
	}

	return sc.execute(ctx, func(ctx context.Context) error {
		return sc.cache.SetBytes(ctx, StatsKey(userID, view), payload, ttl)
	})
}

// InvalidateUser removes every cached view of the user.
func (sc *StatsCache) InvalidateUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return sc.execute(ctx, func(ctx context.Context) error {
		return sc.cache.DeleteByPattern(ctx, StatsUserPattern(userID))
	})
}
