// Package query содержит обработчики запросов - read-only представлений
// для дашборда. Запросы никогда не мутируют запись прогресса; неизвестный
// пользователь - валидное состояние и получает нулевое представление.
package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS (Статистика пользователя)
// ══════════════════════════════════════════════════════════════════════════════

// statsCacheTTL - время жизни закешированной статистики. Кеш также
// инвалидируется при каждом завершении сессии, так что TTL - страховка.
const statsCacheTTL = 5 * time.Minute

// viewStats - ключ представления в кеше статистики.
const viewStats = "stats"

// AchievementView - достижение в ответе дашборда.
type AchievementView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StatsView - сводная статистика пользователя.
type StatsView struct {
	Level                 int               `json:"level"`
	TotalXP               int               `json:"total_xp"`
	CurrentStreak         int               `json:"current_streak"`
	LongestStreak         int               `json:"longest_streak"`
	TotalSessions         int               `json:"total_sessions"`
	TotalFocusSeconds     int               `json:"total_focus_seconds"`
	Achievements          []AchievementView `json:"achievements"`
	AvailableAchievements []AchievementView `json:"available_achievements"`
}

// GetStatsHandler отвечает на запрос статистики.
type GetStatsHandler struct {
	store progress.Store
	cache progress.StatsCache
	log   *logger.Logger
}

// NewGetStatsHandler создаёт обработчик. Кеш опционален (nil - без кеша).
func NewGetStatsHandler(store progress.Store, cache progress.StatsCache, log *logger.Logger) *GetStatsHandler {
	return &GetStatsHandler{store: store, cache: cache, log: log}
}

// Handle возвращает статистику пользователя. Пользователь без истории
// получает нулевое представление: уровень 1, пустые достижения.
func (h *GetStatsHandler) Handle(ctx context.Context, userID string) (*StatsView, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}

	if cached := h.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	record, err := loadOrZero(ctx, h.store, userID)
	if err != nil {
		return nil, err
	}

	view := buildStatsView(record)
	h.toCache(ctx, userID, view)
	return view, nil
}

// buildStatsView собирает представление из записи прогресса.
func buildStatsView(record *progress.GamificationRecord) *StatsView {
	view := &StatsView{
		Level:                 record.Level,
		TotalXP:               record.TotalXP,
		CurrentStreak:         record.CurrentStreak,
		LongestStreak:         record.LongestStreak,
		TotalSessions:         record.TotalSessions(),
		TotalFocusSeconds:     record.TotalFocusSeconds(),
		Achievements:          make([]AchievementView, 0, len(record.UnlockedAchievements)),
		AvailableAchievements: []AchievementView{},
	}

	// Разблокированные - в порядке разблокировки.
	for _, id := range record.UnlockedAchievements {
		if d, ok := progress.Definition(id); ok {
			view.Achievements = append(view.Achievements, achievementView(d))
		}
	}

	// Недостигнутые - в порядке объявления каталога ("что дальше").
	for _, d := range progress.Available(record) {
		view.AvailableAchievements = append(view.AvailableAchievements, achievementView(d))
	}

	return view
}

func achievementView(d progress.AchievementDefinition) AchievementView {
	return AchievementView{ID: d.ID, Name: d.Name, Description: d.Description}
}

// fromCache пытается достать готовый ответ из кеша. Любой сбой кеша
// означает промах, а не ошибку запроса.
func (h *GetStatsHandler) fromCache(ctx context.Context, userID string) *StatsView {
	if h.cache == nil {
		return nil
	}
	payload, err := h.cache.Get(ctx, userID, viewStats)
	if err != nil {
		if !shared.IsNotFound(err) {
			h.log.Debug("stats cache miss", logger.UserID(userID), logger.Err(err))
		}
		return nil
	}
	var view StatsView
	if err := json.Unmarshal(payload, &view); err != nil {
		h.log.Warn("corrupt stats cache entry", logger.UserID(userID), logger.Err(err))
		return nil
	}
	return &view
}

// toCache кладёт ответ в кеш, best effort.
func (h *GetStatsHandler) toCache(ctx context.Context, userID string, view *StatsView) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, userID, viewStats, payload, statsCacheTTL); err != nil {
		h.log.Debug("failed to cache stats", logger.UserID(userID), logger.Err(err))
	}
}

// loadOrZero загружает запись прогресса, подставляя нулевую для
// пользователя без истории. Прочие ошибки хранилища - StoreUnavailable.
func loadOrZero(ctx context.Context, store progress.Store, userID string) (*progress.GamificationRecord, error) {
	record, err := store.Load(ctx, userID)
	if err == nil {
		return record, nil
	}
	if shared.IsNotFound(err) {
		return progress.NewRecord(userID, timeutil.Now()), nil
	}
	return nil, shared.WrapError("progress", "Query",
		shared.ErrServiceUnavailable, "failed to load progress record", err)
}
