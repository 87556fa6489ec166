package query

import (
	"context"
	"sort"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
	"github.com/focushub/pomodoro-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD (Лидерборд)
// ══════════════════════════════════════════════════════════════════════════════

// Границы размера лидерборда.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardRow - строка лидерборда в ответе.
type LeaderboardRow struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	TotalXP  int    `json:"total_xp"`
}

// GetLeaderboardHandler отвечает на запрос лидерборда. Основной путь -
// Redis ZSET; при недоступности кеша строки считаются из хранилища.
type GetLeaderboardHandler struct {
	cache progress.LeaderboardCache
	store progress.Store
	users user.Repository
	log   *logger.Logger
}

// NewGetLeaderboardHandler создаёт обработчик. Кеш опционален.
func NewGetLeaderboardHandler(cache progress.LeaderboardCache, store progress.Store, users user.Repository, log *logger.Logger) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{cache: cache, store: store, users: users, log: log}
}

// Handle возвращает первые limit строк лидерборда по убыванию XP.
// limit <= 0 заменяется значением по умолчанию; слишком большой - отклоняется.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return nil, shared.ErrInvalidLimit
	}

	entries, err := h.topEntries(ctx, limit)
	if err != nil {
		return nil, err
	}

	return h.buildRows(ctx, entries)
}

// topEntries достаёт верх лидерборда из кеша, падая обратно на полный
// пересчёт из хранилища при сбое кеша.
func (h *GetLeaderboardHandler) topEntries(ctx context.Context, limit int) ([]progress.LeaderboardEntry, error) {
	if h.cache != nil {
		entries, err := h.cache.Top(ctx, limit)
		if err == nil {
			return entries, nil
		}
		h.log.Warn("leaderboard cache unavailable, falling back to store", logger.Err(err))
	}

	records, err := h.store.LoadAll(ctx)
	if err != nil {
		// Кеш и хранилище недоступны одновременно - отдать лидерборд нечем.
		h.log.Error("leaderboard store fallback failed", logger.Err(err))
		return nil, shared.ErrLeaderboardUnavailable
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].TotalXP != records[j].TotalXP {
			return records[i].TotalXP > records[j].TotalXP
		}
		return records[i].UserID < records[j].UserID
	})

	if len(records) > limit {
		records = records[:limit]
	}

	entries := make([]progress.LeaderboardEntry, 0, len(records))
	for i, r := range records {
		entries = append(entries, progress.LeaderboardEntry{
			Rank:    i + 1,
			UserID:  r.UserID,
			TotalXP: r.TotalXP,
		})
	}
	return entries, nil
}

// buildRows дополняет записи лидерборда именами пользователей и уровнями.
func (h *GetLeaderboardHandler) buildRows(ctx context.Context, entries []progress.LeaderboardEntry) ([]LeaderboardRow, error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}

	names := map[string]*user.User{}
	if h.users != nil && len(ids) > 0 {
		found, err := h.users.FindByIDs(ctx, ids)
		if err != nil {
			h.log.Warn("failed to resolve leaderboard usernames", logger.Err(err))
		} else {
			names = found
		}
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		row := LeaderboardRow{
			Rank:    e.Rank,
			UserID:  e.UserID,
			Level:   progress.LevelForXP(e.TotalXP),
			TotalXP: e.TotalXP,
		}
		if u, ok := names[e.UserID]; ok {
			row.Username = u.Username
		}
		rows = append(rows, row)
	}
	return rows, nil
}
