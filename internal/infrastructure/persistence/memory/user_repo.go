package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository backed by maps.
// Username lookup is case-insensitive, mirroring the unique index the
// PostgreSQL implementation relies on.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*user.User
	byUsername map[string]string // lower(username) -> id
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*user.User),
		byUsername: make(map[string]string),
	}
}

// Create stores a new user. Fails if the ID or username is taken.
func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, exists := r.byID[u.ID]; exists {
		return shared.ErrUserAlreadyExists
	}
	if _, exists := r.byUsername[key]; exists {
		return shared.ErrUserAlreadyExists
	}

	clone := *u
	r.byID[u.ID] = &clone
	r.byUsername[key] = u.ID
	return nil
}

// Update replaces an existing user.
func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[u.ID]
	if !ok {
		return shared.ErrUserNotFound
	}

	// Username changes must keep the lookup index consistent.
	oldKey := strings.ToLower(stored.Username)
	newKey := strings.ToLower(u.Username)
	if oldKey != newKey {
		if _, taken := r.byUsername[newKey]; taken {
			return shared.ErrUserAlreadyExists
		}
		delete(r.byUsername, oldKey)
		r.byUsername[newKey] = u.ID
	}

	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

// FindByID returns a copy of the user with the given ID.
func (r *UserRepository) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}

	clone := *stored
	return &clone, nil
}

// FindByUsername returns a copy of the user with the given username.
func (r *UserRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, shared.ErrUserNotFound
	}

	clone := *r.byID[id]
	return &clone, nil
}

// FindByIDs returns copies of the users found among the given IDs.
// Missing IDs are silently skipped.
func (r *UserRepository) FindByIDs(_ context.Context, ids []string) (map[string]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*user.User, len(ids))
	for _, id := range ids {
		if stored, ok := r.byID[id]; ok {
			clone := *stored
			out[id] = &clone
		}
	}
	return out, nil
}
