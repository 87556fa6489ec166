package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressStore implements progress.Store for PostgreSQL.
// Each record occupies a single row; achievements and session history live
// in JSONB columns so Save replaces the whole record in one statement.
type ProgressStore struct {
	conn *Connection
}

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(conn *Connection) *ProgressStore {
	return &ProgressStore{conn: conn}
}

// Load loads the record for the given user.
func (s *ProgressStore) Load(ctx context.Context, userID string) (*progress.GamificationRecord, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}

	query := `
		SELECT user_id, total_xp, level, current_streak, longest_streak,
			   last_session_date, unlocked_achievements, session_history,
			   created_at, updated_at
		FROM progress_records
		WHERE user_id = $1
	`

	row := s.conn.QueryRow(ctx, query, userID)
	return scanRecord(row)
}

// Save upserts the whole record.
func (s *ProgressStore) Save(ctx context.Context, record *progress.GamificationRecord) error {
	if record == nil || record.UserID == "" {
		return shared.ErrEmptyUserID
	}

	query := `
		INSERT INTO progress_records (
			user_id, total_xp, level, current_streak, longest_streak,
			last_session_date, unlocked_achievements, session_history,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT(user_id) DO UPDATE SET
			total_xp = EXCLUDED.total_xp,
			level = EXCLUDED.level,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_session_date = EXCLUDED.last_session_date,
			unlocked_achievements = EXCLUDED.unlocked_achievements,
			session_history = EXCLUDED.session_history,
			updated_at = EXCLUDED.updated_at
	`

	achievementsJSON, err := json.Marshal(record.UnlockedAchievements)
	if err != nil {
		return fmt.Errorf("failed to marshal achievements: %w", err)
	}

	historyJSON, err := json.Marshal(record.SessionHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal session history: %w", err)
	}

	var lastSessionDate *time.Time
	if !record.LastSessionDate.IsZero() {
		lastSessionDate = &record.LastSessionDate
	}

	_, err = s.conn.Exec(ctx, query,
		record.UserID,
		record.TotalXP,
		record.Level,
		record.CurrentStreak,
		record.LongestStreak,
		lastSessionDate,
		achievementsJSON,
		historyJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if IsForeignKeyViolation(err) {
		// progress_records.user_id references users: a record for a deleted
		// or never-registered user is rejected at the boundary.
		return shared.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save progress record: %w", err)
	}

	return nil
}

// LoadAll loads every record, used by the leaderboard rebuild job.
// The scan runs in a read-only transaction so the rebuild sees a
// consistent snapshot while completions keep writing.
func (s *ProgressStore) LoadAll(ctx context.Context) ([]*progress.GamificationRecord, error) {
	query := `
		SELECT user_id, total_xp, level, current_streak, longest_streak,
			   last_session_date, unlocked_achievements, session_history,
			   created_at, updated_at
		FROM progress_records
		ORDER BY total_xp DESC
	`

	var records []*progress.GamificationRecord
	err := s.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to query progress records: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanRecord scans a single record from a row.
func scanRecord(row pgx.Row) (*progress.GamificationRecord, error) {
	var record progress.GamificationRecord
	var lastSessionDate *time.Time
	var achievementsJSON, historyJSON []byte

	err := row.Scan(
		&record.UserID,
		&record.TotalXP,
		&record.Level,
		&record.CurrentStreak,
		&record.LongestStreak,
		&lastSessionDate,
		&achievementsJSON,
		&historyJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan progress record: %w", err)
	}

	if lastSessionDate != nil {
		record.LastSessionDate = lastSessionDate.UTC()
	}

	if len(achievementsJSON) > 0 {
		if err := json.Unmarshal(achievementsJSON, &record.UnlockedAchievements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal achievements: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &record.SessionHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session history: %w", err)
		}
	}

	return &record, nil
}
