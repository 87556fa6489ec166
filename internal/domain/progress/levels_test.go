package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name  string
		xp    int
		level int
	}{
		{"zero XP is level 1", 0, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2 threshold", 100, 2},
		{"mid level 2", 180, 2},
		{"level 3 threshold", 250, 3},
		{"level 5 threshold", 1000, 5},
		{"just below max", 10999, 9},
		{"max level threshold", 11000, 10},
		{"beyond max level", 50000, 10},
		{"negative XP clamps to level 1", -10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.level, LevelForXP(tt.xp))
		})
	}
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 12000; xp += 50 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level must never decrease as XP grows (xp=%d)", xp)
		prev = level
	}
}

func TestProgressForXP(t *testing.T) {
	t.Run("fresh record", func(t *testing.T) {
		p := ProgressForXP(0)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 2, p.NextLevel)
		assert.Equal(t, 0, p.CurrentLevelFloorXP)
		assert.Equal(t, 100, p.NextLevelThresholdXP)
		assert.Equal(t, 100, p.XPNeeded)
		assert.Equal(t, 0.0, p.ProgressPercentage)
		assert.False(t, p.IsMaxLevel)
	})

	t.Run("halfway to level 2", func(t *testing.T) {
		p := ProgressForXP(50)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 50, p.XPNeeded)
		assert.InDelta(t, 50.0, p.ProgressPercentage, 0.001)
	})

	t.Run("mid level 4", func(t *testing.T) {
		// Level 4 floor 500, level 5 threshold 1000.
		p := ProgressForXP(750)
		assert.Equal(t, 4, p.Level)
		assert.Equal(t, 5, p.NextLevel)
		assert.Equal(t, 250, p.XPNeeded)
		assert.InDelta(t, 50.0, p.ProgressPercentage, 0.001)
	})

	t.Run("max level reports no next threshold", func(t *testing.T) {
		p := ProgressForXP(20000)
		assert.Equal(t, MaxLevel, p.Level)
		assert.True(t, p.IsMaxLevel)
		assert.Equal(t, 0, p.NextLevel)
		assert.Equal(t, 0, p.XPNeeded)
		assert.Equal(t, 100.0, p.ProgressPercentage)
		assert.Equal(t, 20000, p.CurrentXP)
	})
}

func TestProgressForXP_PercentageBounds(t *testing.T) {
	for xp := -100; xp <= 15000; xp += 37 {
		p := ProgressForXP(xp)
		assert.GreaterOrEqual(t, p.ProgressPercentage, 0.0, "xp=%d", xp)
		assert.LessOrEqual(t, p.ProgressPercentage, 100.0, "xp=%d", xp)
	}
}

func TestValidateLevelTable(t *testing.T) {
	t.Run("production table is valid", func(t *testing.T) {
		require.NoError(t, validateLevelTable(levelTable))
	})

	t.Run("empty table rejected", func(t *testing.T) {
		assert.Error(t, validateLevelTable(nil))
	})

	t.Run("must start at level 1 with zero XP", func(t *testing.T) {
		bad := []LevelThreshold{{Level: 1, CumulativeXP: 10}}
		assert.Error(t, validateLevelTable(bad))
	})

	t.Run("non-increasing thresholds rejected", func(t *testing.T) {
		bad := []LevelThreshold{
			{Level: 1, CumulativeXP: 0},
			{Level: 2, CumulativeXP: 100},
			{Level: 3, CumulativeXP: 100},
		}
		err := validateLevelTable(bad)
		assert.ErrorIs(t, err, shared.ErrLevelTableCorrupted)
	})

	t.Run("level gap rejected", func(t *testing.T) {
		bad := []LevelThreshold{
			{Level: 1, CumulativeXP: 0},
			{Level: 3, CumulativeXP: 100},
		}
		assert.Error(t, validateLevelTable(bad))
	})
}
