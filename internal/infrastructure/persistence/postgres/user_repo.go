package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, language, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var lastLogin *time.Time
	if !u.LastLoginAt.IsZero() {
		lastLogin = &u.LastLoginAt
	}

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Language,
		u.CreatedAt,
		lastLogin,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			username = $1,
			password_hash = $2,
			language = $3,
			last_login_at = $4
		WHERE id = $5
	`

	var lastLogin *time.Time
	if !u.LastLoginAt.IsZero() {
		lastLogin = &u.LastLoginAt
	}

	result, err := r.conn.Exec(ctx, query,
		u.Username,
		u.PasswordHash,
		u.Language,
		lastLogin,
		u.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// FindByID returns a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, language, created_at, last_login_at
		FROM users
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanUser(row)
}

// FindByUsername returns a user by username, case-insensitively.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, language, created_at, last_login_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`

	row := r.conn.QueryRow(ctx, query, username)
	return scanUser(row)
}

// FindByIDs returns users by a list of IDs. Missing IDs are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*user.User, error) {
	if len(ids) == 0 {
		return map[string]*user.User{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, username, password_hash, language, created_at, last_login_at
		FROM users
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*user.User, len(ids))
	for rows.Next() {
		u, err := scanUserFromRows(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanUser scans a single user from a row.
func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var lastLogin *time.Time

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Language,
		&u.CreatedAt,
		&lastLogin,
	)

	if IsNoRows(err) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lastLogin != nil {
		u.LastLoginAt = lastLogin.UTC()
	}

	return &u, nil
}

// scanUserFromRows scans a user from rows.
func scanUserFromRows(rows pgx.Rows) (*user.User, error) {
	var u user.User
	var lastLogin *time.Time

	err := rows.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Language,
		&u.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lastLogin != nil {
		u.LastLoginAt = lastLogin.UTC()
	}

	return &u, nil
}
