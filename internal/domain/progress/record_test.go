package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

func day(y, m, d int) time.Time {
	return timeutil.Date(y, m, d)
}

func TestNewRecord(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("user-1", now)

	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, 0, r.TotalXP)
	assert.Equal(t, 1, r.Level)
	assert.Equal(t, 0, r.CurrentStreak)
	assert.Equal(t, 0, r.LongestStreak)
	assert.True(t, r.LastSessionDate.IsZero())
	assert.Empty(t, r.UnlockedAchievements)
	assert.Empty(t, r.SessionHistory)
}

func TestRecord_AddXP(t *testing.T) {
	t.Run("accumulates and levels up at threshold", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))

		leveledUp := r.AddXP(50)
		assert.False(t, leveledUp)
		assert.Equal(t, 50, r.TotalXP)
		assert.Equal(t, 1, r.Level)

		leveledUp = r.AddXP(50)
		assert.True(t, leveledUp)
		assert.Equal(t, 100, r.TotalXP)
		assert.Equal(t, 2, r.Level)
	})

	t.Run("non-positive amounts are ignored", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		assert.False(t, r.AddXP(0))
		assert.False(t, r.AddXP(-10))
		assert.Equal(t, 0, r.TotalXP)
	})

	t.Run("level never decreases", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		r.AddXP(300)
		require.Equal(t, 3, r.Level)
		r.AddXP(1)
		assert.Equal(t, 3, r.Level)
	})
}

func TestRecord_UpdateStreak(t *testing.T) {
	t.Run("first session starts streak at 1", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))

		transition, missed := r.UpdateStreak(day(2026, 3, 1).Add(9 * time.Hour))
		assert.Equal(t, StreakStarted, transition)
		assert.Equal(t, 0, missed)
		assert.Equal(t, 1, r.CurrentStreak)
		assert.Equal(t, 1, r.LongestStreak)
		assert.Equal(t, day(2026, 3, 1), r.LastSessionDate)
	})

	t.Run("same day leaves streak unchanged", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		r.UpdateStreak(day(2026, 3, 1).Add(9 * time.Hour))

		transition, _ := r.UpdateStreak(day(2026, 3, 1).Add(21 * time.Hour))
		assert.Equal(t, StreakUnchanged, transition)
		assert.Equal(t, 1, r.CurrentStreak)
	})

	t.Run("next day extends streak", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		r.UpdateStreak(day(2026, 3, 1))

		transition, _ := r.UpdateStreak(day(2026, 3, 2).Add(23 * time.Hour))
		assert.Equal(t, StreakExtended, transition)
		assert.Equal(t, 2, r.CurrentStreak)
		assert.Equal(t, 2, r.LongestStreak)
	})

	t.Run("gap resets streak to 1, not 0", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		r.UpdateStreak(day(2026, 3, 1))
		r.UpdateStreak(day(2026, 3, 2))
		r.UpdateStreak(day(2026, 3, 3))
		require.Equal(t, 3, r.CurrentStreak)

		transition, missed := r.UpdateStreak(day(2026, 3, 6))
		assert.Equal(t, StreakReset, transition)
		assert.Equal(t, 2, missed)
		assert.Equal(t, 1, r.CurrentStreak)
		assert.Equal(t, 3, r.LongestStreak, "longest streak survives the reset")
	})

	t.Run("spec scenario: D+1 extends, D+3 resets", func(t *testing.T) {
		r := NewRecord("u", day(2026, 5, 10))
		r.UpdateStreak(day(2026, 5, 10))
		require.Equal(t, 1, r.CurrentStreak)

		r.UpdateStreak(day(2026, 5, 11))
		assert.Equal(t, 2, r.CurrentStreak)

		r.UpdateStreak(day(2026, 5, 14))
		assert.Equal(t, 1, r.CurrentStreak)
	})

	t.Run("midnight boundary uses UTC calendar dates", func(t *testing.T) {
		r := NewRecord("u", day(2026, 3, 1))
		r.UpdateStreak(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))

		transition, _ := r.UpdateStreak(time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))
		assert.Equal(t, StreakExtended, transition)
		assert.Equal(t, 2, r.CurrentStreak)
	})
}

func TestRecord_SessionHistory(t *testing.T) {
	r := NewRecord("u", day(2026, 3, 1))

	r.AppendSession(day(2026, 3, 1).Add(9*time.Hour), 1500)
	r.AppendSession(day(2026, 3, 1).Add(10*time.Hour), 1500)
	r.AppendSession(day(2026, 3, 2).Add(9*time.Hour), 3000)

	assert.Equal(t, 3, r.TotalSessions())
	assert.Equal(t, 6000, r.TotalFocusSeconds())
	assert.Equal(t, 2, r.SessionsOnDay(day(2026, 3, 1)))
	assert.Equal(t, 1, r.SessionsOnDay(day(2026, 3, 2)))
	assert.Equal(t, 0, r.SessionsOnDay(day(2026, 3, 3)))
}

func TestRecord_SessionsWithinDays(t *testing.T) {
	r := NewRecord("u", day(2026, 3, 1))
	r.AppendSession(day(2026, 3, 1), 1500)
	r.AppendSession(day(2026, 3, 4), 1500)
	r.AppendSession(day(2026, 3, 7), 1500)

	// Window of 7 days ending March 7 covers March 1..7.
	assert.Equal(t, 3, r.SessionsWithinDays(day(2026, 3, 7), 7))
	// Window of 3 days ending March 7 covers March 5..7.
	assert.Equal(t, 1, r.SessionsWithinDays(day(2026, 3, 7), 3))
	assert.Equal(t, 0, r.SessionsWithinDays(day(2026, 3, 7), 0))
}

func TestRecord_Achievements(t *testing.T) {
	r := NewRecord("u", day(2026, 3, 1))

	assert.False(t, r.HasAchievement(AchievementFirstSession))

	fresh, err := r.Unlock(AchievementFirstSession)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, r.HasAchievement(AchievementFirstSession))

	again, err := r.Unlock(AchievementFirstSession)
	require.NoError(t, err)
	assert.False(t, again, "unlock is idempotent")
	assert.Len(t, r.UnlockedAchievements, 1)
}

func TestRecord_UnlockUnknownAchievement(t *testing.T) {
	r := NewRecord("u", day(2026, 3, 1))

	fresh, err := r.Unlock("no-such-achievement")
	assert.ErrorIs(t, err, shared.ErrUnknownAchievement)
	assert.False(t, fresh)
	assert.Empty(t, r.UnlockedAchievements)
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord("u", day(2026, 3, 1))
	r.AddXP(120)
	r.AppendSession(day(2026, 3, 1), 1500)
	r.Unlock(AchievementFirstSession)

	cp := r.Clone()
	cp.AddXP(500)
	cp.AppendSession(day(2026, 3, 2), 1500)
	cp.Unlock(AchievementStreak3)

	assert.Equal(t, 120, r.TotalXP, "original record is untouched")
	assert.Len(t, r.SessionHistory, 1)
	assert.Len(t, r.UnlockedAchievements, 1)
	assert.Equal(t, 620, cp.TotalXP)
}
