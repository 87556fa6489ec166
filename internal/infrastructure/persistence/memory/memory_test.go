package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

func TestProgressStore_RoundTrip(t *testing.T) {
	store := NewProgressStore()
	ctx := context.Background()
	now := timeutil.Date(2026, 3, 1)

	_, err := store.Load(ctx, "u1")
	assert.True(t, shared.IsNotFound(err))

	record := progress.NewRecord("u1", now)
	record.AddXP(150)
	record.AppendSession(now, 1500)
	require.NoError(t, store.Save(ctx, record))

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 150, loaded.TotalXP)
	assert.Equal(t, 1, loaded.TotalSessions())
}

func TestProgressStore_IsolatesCallersFromStoredState(t *testing.T) {
	store := NewProgressStore()
	ctx := context.Background()
	now := timeutil.Date(2026, 3, 1)

	record := progress.NewRecord("u1", now)
	require.NoError(t, store.Save(ctx, record))

	// Mutating what Save received must not leak into the store.
	record.AddXP(999)
	record.Unlock(progress.AchievementFirstSession)

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.TotalXP)
	assert.Empty(t, loaded.UnlockedAchievements)

	// Mutating what Load returned must not leak either.
	loaded.AddXP(999)
	again, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.TotalXP)
}

func TestProgressStore_LoadAll(t *testing.T) {
	store := NewProgressStore()
	ctx := context.Background()
	now := timeutil.Date(2026, 3, 1)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, progress.NewRecord(id, now)))
	}

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, store.Count())
}

func TestProgressStore_RejectsEmptyUserID(t *testing.T) {
	store := NewProgressStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Save(ctx, nil))
}

func newUser(t *testing.T, id, username string) *user.User {
	t.Helper()
	u, err := user.NewUser(id, username, "$2a$10$hash", "en", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "id1", "alice")))

	byID, err := repo.FindByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.FindByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "id1", byName.ID, "username lookup is case-insensitive")
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "id1", "alice")))
	err := repo.Create(ctx, newUser(t, "id2", "Alice"))
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestUserRepository_UpdateKeepsUsernameIndex(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "id1", "alice")))

	renamed := newUser(t, "id1", "alice2")
	require.NoError(t, repo.Update(ctx, renamed))

	_, err := repo.FindByUsername(ctx, "alice")
	assert.True(t, shared.IsNotFound(err))

	found, err := repo.FindByUsername(ctx, "alice2")
	require.NoError(t, err)
	assert.Equal(t, "id1", found.ID)
}

func TestUserRepository_FindByIDsSkipsMissing(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "id1", "alice")))

	found, err := repo.FindByIDs(ctx, []string{"id1", "ghost"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, "id1")
}
