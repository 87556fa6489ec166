// Package jobs contains implementations of scheduled jobs for Pomodoro Focus Hub.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRebuildInterval is how often the leaderboard is fully rebuilt.
const DefaultRebuildInterval = 15 * time.Minute

// RebuildLeaderboardJob recomputes the Redis ranking from the store.
// Incremental updates ride on completion events; this job repairs whatever
// those updates missed while Redis or the event bus was degraded.
type RebuildLeaderboardJob struct {
	store       progress.Store
	leaderboard progress.LeaderboardCache
	bus         shared.EventPublisher
	retrier     *retry.Retrier
	log         *logger.Logger
}

// NewRebuildLeaderboardJob creates the job. The event publisher is optional.
func NewRebuildLeaderboardJob(store progress.Store, leaderboard progress.LeaderboardCache, bus shared.EventPublisher, log *logger.Logger) *RebuildLeaderboardJob {
	return &RebuildLeaderboardJob{
		store:       store,
		leaderboard: leaderboard,
		bus:         bus,
		retrier:     retry.DatabaseRetrier(),
		log:         log.With(logger.Component("rebuild_leaderboard")),
	}
}

// Name returns the unique name of the job.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description returns a human-readable description of the job.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the XP leaderboard from the progress store"
}

// Run loads every progress record and atomically replaces the ranking.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	start := time.Now()

	var records []*progress.GamificationRecord
	err := j.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = j.store.LoadAll(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load progress records: %w", err)
	}

	if err := j.leaderboard.Rebuild(ctx, records); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}

	duration := time.Since(start)
	j.log.Info("leaderboard rebuild finished",
		logger.Int("entries", len(records)),
		logger.Duration("duration", duration),
	)

	if j.bus != nil {
		event := shared.NewLeaderboardRebuiltEvent(len(records), duration)
		if err := j.bus.Publish(event); err != nil {
			j.log.Warn("failed to publish rebuild event", logger.Err(err))
		}
	}

	return nil
}
