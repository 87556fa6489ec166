package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// staticIssuer issues a fixed token for tests.
type staticIssuer struct {
	token string
	err   error
}

func (i staticIssuer) Issue(userID, username string) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	return i.token, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), nil
}

func TestLoginUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := timeutil.FixedClock{At: now}

	register := func(t *testing.T, repo *fakeUserRepo) {
		t.Helper()
		reg := NewRegisterUserHandler(repo, clock, nil, testLogger())
		_, err := reg.Handle(context.Background(), RegisterUserCommand{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)
	}

	t.Run("successful login issues token and records time", func(t *testing.T) {
		repo := newFakeUserRepo()
		register(t, repo)
		h := NewLoginUserHandler(repo, staticIssuer{token: "tok-123"}, clock, testLogger())

		res, err := h.Handle(context.Background(), LoginUserCommand{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "tok-123", res.Token)
		assert.Equal(t, "alice", res.Username)

		stored, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, now, stored.LastLoginAt)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		register(t, repo)
		h := NewLoginUserHandler(repo, staticIssuer{token: "tok"}, clock, testLogger())

		_, err := h.Handle(context.Background(), LoginUserCommand{Username: "alice", Password: "wrong-horse-1"})
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})

	t.Run("unknown user gets the same error as wrong password", func(t *testing.T) {
		repo := newFakeUserRepo()
		h := NewLoginUserHandler(repo, staticIssuer{token: "tok"}, clock, testLogger())

		_, err := h.Handle(context.Background(), LoginUserCommand{Username: "nobody", Password: "correct-horse"})
		assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		h := NewLoginUserHandler(newFakeUserRepo(), staticIssuer{token: "tok"}, clock, testLogger())
		_, err := h.Handle(context.Background(), LoginUserCommand{})
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})

	t.Run("issuer failure surfaces as unavailable", func(t *testing.T) {
		repo := newFakeUserRepo()
		register(t, repo)
		h := NewLoginUserHandler(repo, staticIssuer{err: errors.New("no signing key")}, clock, testLogger())

		_, err := h.Handle(context.Background(), LoginUserCommand{Username: "alice", Password: "correct-horse"})
		assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
	})
}
