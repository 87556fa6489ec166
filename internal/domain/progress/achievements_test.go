package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementIDs(defs []AchievementDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestEvaluate_FirstSession(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("u", now)
	r.AppendSession(now, 1500)

	unlocked := Evaluate(r, now)
	assert.Equal(t, []string{AchievementFirstSession}, achievementIDs(unlocked))
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("u", now)
	r.AppendSession(now, 1500)

	for _, d := range Evaluate(r, now) {
		r.Unlock(d.ID)
	}

	assert.Empty(t, Evaluate(r, now), "re-evaluating an unchanged record yields nothing new")
}

func TestEvaluate_StreakAchievements(t *testing.T) {
	now := day(2026, 3, 7)
	r := NewRecord("u", now)
	r.CurrentStreak = 3

	ids := achievementIDs(Evaluate(r, now))
	assert.Contains(t, ids, AchievementStreak3)
	assert.NotContains(t, ids, AchievementStreak7)

	r.CurrentStreak = 7
	ids = achievementIDs(Evaluate(r, now))
	assert.Contains(t, ids, AchievementStreak7)
}

func TestEvaluate_WeeklyWindow(t *testing.T) {
	now := day(2026, 3, 10)
	r := NewRecord("u", now)

	// 10 sessions spread over the last 7 days.
	for i := 0; i < 10; i++ {
		r.AppendSession(day(2026, 3, 4+i%7).Add(time.Duration(i)*time.Hour), 1500)
	}

	ids := achievementIDs(Evaluate(r, now))
	assert.Contains(t, ids, AchievementWeekly10)
	assert.NotContains(t, ids, AchievementWeekly25)

	// The same sessions evaluated two weeks later fall out of the window.
	later := day(2026, 3, 24)
	ids = achievementIDs(Evaluate(r, later))
	assert.NotContains(t, ids, AchievementWeekly10)
}

func TestEvaluate_TotalsAndFocusTime(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("u", now)

	// 50 sessions of 25 minutes each: 50 totals and > 10h of focus.
	for i := 0; i < 50; i++ {
		r.AppendSession(now.Add(time.Duration(i)*time.Minute), 1500)
	}

	ids := achievementIDs(Evaluate(r, now))
	assert.Contains(t, ids, AchievementTotal50)
	assert.Contains(t, ids, AchievementFocus10h)
	assert.NotContains(t, ids, AchievementTotal100)
}

func TestEvaluate_MonotonicUnlock(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("u", now)

	var seen []string
	for i := 0; i < 100; i++ {
		occurredAt := now.AddDate(0, 0, i)
		r.AppendSession(occurredAt, 1500)
		r.UpdateStreak(occurredAt)

		for _, d := range Evaluate(r, occurredAt) {
			require.NotContains(t, seen, d.ID, "achievement %s re-reported as new", d.ID)
			fresh, err := r.Unlock(d.ID)
			require.NoError(t, err)
			require.True(t, fresh)
			seen = append(seen, d.ID)
		}
	}

	// Daily sessions for 100 days unlock everything except the weekly-volume tiers.
	assert.Contains(t, seen, AchievementFirstSession)
	assert.Contains(t, seen, AchievementStreak3)
	assert.Contains(t, seen, AchievementStreak7)
	assert.Contains(t, seen, AchievementTotal50)
	assert.Contains(t, seen, AchievementTotal100)
	assert.Contains(t, seen, AchievementFocus10h)
	assert.NotContains(t, seen, AchievementWeekly10)
}

func TestAvailable_PreservesCatalogOrder(t *testing.T) {
	now := day(2026, 3, 1)
	r := NewRecord("u", now)
	r.Unlock(AchievementStreak3)

	avail := achievementIDs(Available(r))
	assert.NotContains(t, avail, AchievementStreak3)

	full := achievementIDs(Catalog())
	// Available is the catalog order minus unlocked entries.
	want := make([]string, 0, len(full)-1)
	for _, id := range full {
		if id != AchievementStreak3 {
			want = append(want, id)
		}
	}
	assert.Equal(t, want, avail)
}

func TestValidateCatalog(t *testing.T) {
	t.Run("production catalog is valid", func(t *testing.T) {
		require.NoError(t, validateCatalog(catalog))
	})

	t.Run("duplicate IDs rejected", func(t *testing.T) {
		bad := []AchievementDefinition{
			{ID: "a", Unlocked: func(*GamificationRecord, time.Time) bool { return false }},
			{ID: "a", Unlocked: func(*GamificationRecord, time.Time) bool { return false }},
		}
		assert.Error(t, validateCatalog(bad))
	})

	t.Run("missing predicate rejected", func(t *testing.T) {
		bad := []AchievementDefinition{{ID: "a"}}
		assert.Error(t, validateCatalog(bad))
	})
}
