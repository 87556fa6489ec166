// Package memory implements in-memory persistence for Pomodoro Focus Hub.
// Used for local development without a database and as a reference
// implementation for the persistence interfaces in tests.
package memory

import (
	"context"
	"sync"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressStore implements progress.Store backed by a map.
// All records are deep-copied on the way in and out, so callers can
// mutate what they get back without affecting the stored state.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]*progress.GamificationRecord
}

// NewProgressStore creates an empty in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[string]*progress.GamificationRecord),
	}
}

// Load returns a copy of the record for the given user.
func (s *ProgressStore) Load(_ context.Context, userID string) (*progress.GamificationRecord, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[userID]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}

	return record.Clone(), nil
}

// Save stores a copy of the record, replacing any previous version.
func (s *ProgressStore) Save(_ context.Context, record *progress.GamificationRecord) error {
	if record == nil || record.UserID == "" {
		return shared.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.UserID] = record.Clone()
	return nil
}

// LoadAll returns copies of all stored records in unspecified order.
func (s *ProgressStore) LoadAll(_ context.Context) ([]*progress.GamificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*progress.GamificationRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *ProgressStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
