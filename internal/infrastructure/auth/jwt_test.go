package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mgr, err := NewTokenManager("test-secret", time.Hour, timeutil.FixedClock{At: now})
	require.NoError(t, err)

	token, expiresAt, err := mgr.Issue("u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, expiresAt, claims.ExpireAt)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mgr, err := NewTokenManager("test-secret", time.Hour, timeutil.FixedClock{At: issued})
	require.NoError(t, err)

	token, _, err := mgr.Issue("u1", "alice")
	require.NoError(t, err)

	later, err := NewTokenManager("test-secret", time.Hour, timeutil.FixedClock{At: issued.Add(2 * time.Hour)})
	require.NoError(t, err)

	_, err = later.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mgr, err := NewTokenManager("secret-a", time.Hour, timeutil.FixedClock{At: now})
	require.NoError(t, err)

	token, _, err := mgr.Issue("u1", "alice")
	require.NoError(t, err)

	other, err := NewTokenManager("secret-b", time.Hour, timeutil.FixedClock{At: now})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	mgr, err := NewTokenManager("test-secret", time.Hour, nil)
	require.NoError(t, err)

	_, err = mgr.Verify("")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)

	_, err = mgr.Verify("not.a.token")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour, nil)
	assert.Error(t, err)
}
