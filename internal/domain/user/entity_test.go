package user

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid user", func(t *testing.T) {
		u, err := NewUser("id-1", "focus_fan", "$2a$10$hash", "ja", now)
		require.NoError(t, err)
		assert.Equal(t, "focus_fan", u.Username)
		assert.Equal(t, "ja", u.Language)
		assert.Equal(t, now, u.CreatedAt)
		assert.True(t, u.LastLoginAt.IsZero())
	})

	t.Run("empty language falls back to default", func(t *testing.T) {
		u, err := NewUser("id-1", "focus_fan", "$2a$10$hash", "", now)
		require.NoError(t, err)
		assert.Equal(t, DefaultLanguage, u.Language)
	})

	t.Run("unsupported language rejected", func(t *testing.T) {
		_, err := NewUser("id-1", "focus_fan", "$2a$10$hash", "xx", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("empty password hash rejected", func(t *testing.T) {
		_, err := NewUser("id-1", "focus_fan", "", "en", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with separators", "alice.b_c-d", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"too long", "a123456789012345678901234567890123", true},
		{"empty", "", true},
		{"spaces rejected", "alice smith", true},
		{"non-latin rejected", "алиса", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))

	long := make([]byte, MaxPasswordLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidatePassword(string(long)))
}

func TestRecordLogin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u, err := NewUser("id-1", "alice", "$2a$10$hash", "en", now)
	require.NoError(t, err)

	loginAt := now.Add(time.Hour)
	u.RecordLogin(loginAt)
	assert.Equal(t, loginAt, u.LastLoginAt)
}
