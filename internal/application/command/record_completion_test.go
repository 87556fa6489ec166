package command

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
	"github.com/focushub/pomodoro-hub/pkg/userlock"
)

// spyStore counts loads and saves and can fail on demand.
type spyStore struct {
	mu      sync.Mutex
	records map[string]*progress.GamificationRecord
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func newSpyStore() *spyStore {
	return &spyStore{records: make(map[string]*progress.GamificationRecord)}
}

func (s *spyStore) Load(_ context.Context, userID string) (*progress.GamificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	r, ok := s.records[userID]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	return r.Clone(), nil
}

func (s *spyStore) Save(_ context.Context, record *progress.GamificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[record.UserID] = record.Clone()
	return nil
}

func (s *spyStore) LoadAll(_ context.Context) ([]*progress.GamificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*progress.GamificationRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// captureBus collects published events synchronously.
type captureBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (b *captureBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *captureBus) types() []shared.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shared.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventType())
	}
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

func newCompletionHandler(store progress.Store, bus shared.EventPublisher, at time.Time) *RecordCompletionHandler {
	return NewRecordCompletionHandler(
		store,
		userlock.New(),
		timeutil.FixedClock{At: at},
		bus,
		testLogger(),
	)
}

func TestRecordCompletion_FirstSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	bus := &captureBus{}
	h := newCompletionHandler(store, bus, now)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID:               "u1",
		FocusDurationSeconds: 1500,
	})
	require.NoError(t, err)

	assert.Equal(t, progress.XPPerSession, res.XPGained)
	assert.Equal(t, progress.XPPerSession, res.TotalXP)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 1, res.CurrentStreak)

	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, progress.AchievementFirstSession, res.NewAchievements[0].ID)
	assert.NotEmpty(t, res.NewAchievements[0].Name)

	assert.Equal(t, 1, store.loads)
	assert.Equal(t, 1, store.saves, "exactly one save per completion")

	types := bus.types()
	assert.Contains(t, types, shared.EventCompletionRecorded)
	assert.Contains(t, types, shared.EventAchievementUnlocked)
}

func TestRecordCompletion_LevelUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	bus := &captureBus{}
	h := newCompletionHandler(store, bus, now)

	// Level 2 requires 100 XP = 2 sessions at 50 XP each.
	_, err := h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 100, res.TotalXP)
	assert.Contains(t, bus.types(), shared.EventLevelUp)
}

func TestRecordCompletion_StreakProgression(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()

	completeAt := func(at time.Time) *RecordCompletionResult {
		h := newCompletionHandler(store, nil, at)
		res, err := h.Handle(context.Background(), RecordCompletionCommand{
			UserID:               "u1",
			FocusDurationSeconds: 1500,
			OccurredAt:           at,
		})
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, 1, completeAt(base).CurrentStreak)
	assert.Equal(t, 1, completeAt(base.Add(2*time.Hour)).CurrentStreak, "same day does not inflate the streak")
	assert.Equal(t, 2, completeAt(base.AddDate(0, 0, 1)).CurrentStreak)
	assert.Equal(t, 3, completeAt(base.AddDate(0, 0, 2)).CurrentStreak)

	res := completeAt(base.AddDate(0, 0, 5))
	assert.Equal(t, 1, res.CurrentStreak, "gap resets the streak")
	assert.Equal(t, 3, res.LongestStreak)
}

func TestRecordCompletion_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cmd  RecordCompletionCommand
		want error
	}{
		{"zero duration", RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 0}, shared.ErrNegativeDuration},
		{"negative duration", RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: -5}, shared.ErrNegativeDuration},
		{"empty user id", RecordCompletionCommand{UserID: "", FocusDurationSeconds: 1500}, shared.ErrEmptyUserID},
		{"far future timestamp", RecordCompletionCommand{
			UserID: "u1", FocusDurationSeconds: 1500, OccurredAt: now.Add(2 * time.Hour),
		}, shared.ErrCompletionInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSpyStore()
			h := newCompletionHandler(store, nil, now)

			_, err := h.Handle(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, shared.IsValidation(err), "expected a validation error, got %v", err)

			assert.Equal(t, 0, store.loads, "invalid input must not touch the store")
			assert.Equal(t, 0, store.saves, "invalid input must not touch the store")
		})
	}
}

func TestRecordCompletion_SaveFailureDiscardsMutation(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	h := newCompletionHandler(store, nil, now)

	_, err := h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))

	// The stored record still reflects only the first completion.
	store.saveErr = nil
	record, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, progress.XPPerSession, record.TotalXP)
	assert.Equal(t, 1, record.TotalSessions())
}

func TestRecordCompletion_LoadFailureAborts(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	store.loadErr = errors.New("connection refused")
	h := newCompletionHandler(store, nil, now)

	_, err := h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
	assert.Equal(t, 0, store.saves)
}

func TestRecordCompletion_ConcurrentSameUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	h := newCompletionHandler(store, nil, now)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := h.Handle(context.Background(), RecordCompletionCommand{
				UserID:               "u1",
				FocusDurationSeconds: 1500,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, n*progress.XPPerSession, record.TotalXP, "no lost updates under concurrency")
	assert.Equal(t, n, record.TotalSessions())
	assert.Equal(t, 1, record.CurrentStreak)
}

func TestRecordCompletion_DefaultsOccurredAtToClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := newSpyStore()
	h := newCompletionHandler(store, nil, now)

	_, err := h.Handle(context.Background(), RecordCompletionCommand{UserID: "u1", FocusDurationSeconds: 1500})
	require.NoError(t, err)

	record, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, record.SessionHistory, 1)
	assert.Equal(t, now, record.SessionHistory[0].Timestamp)
	assert.Equal(t, timeutil.DateOf(now), record.LastSessionDate)
}
