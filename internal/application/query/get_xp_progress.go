package query

import (
	"context"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET XP PROGRESS (Прогресс к следующему уровню)
// ══════════════════════════════════════════════════════════════════════════════

// XPProgressView - позиция пользователя между уровнями.
// На максимальном уровне поля следующего уровня опущены.
type XPProgressView struct {
	Level              int     `json:"level"`
	NextLevel          int     `json:"next_level,omitempty"`
	CurrentXP          int     `json:"current_xp"`
	XPForNextLevel     int     `json:"xp_for_next_level,omitempty"`
	XPNeeded           int     `json:"xp_needed,omitempty"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsMaxLevel         bool    `json:"is_max_level"`
}

// GetXPProgressHandler отвечает на запрос XP-прогресса.
// Вся арифметика делегируется таблице уровней.
type GetXPProgressHandler struct {
	store progress.Store
	log   *logger.Logger
}

// NewGetXPProgressHandler создаёт обработчик.
func NewGetXPProgressHandler(store progress.Store, log *logger.Logger) *GetXPProgressHandler {
	return &GetXPProgressHandler{store: store, log: log}
}

// Handle возвращает XP-прогресс пользователя.
func (h *GetXPProgressHandler) Handle(ctx context.Context, userID string) (*XPProgressView, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}

	record, err := loadOrZero(ctx, h.store, userID)
	if err != nil {
		return nil, err
	}

	p := progress.ProgressForXP(record.TotalXP)
	return &XPProgressView{
		Level:              p.Level,
		NextLevel:          p.NextLevel,
		CurrentXP:          p.CurrentXP,
		XPForNextLevel:     p.NextLevelThresholdXP,
		XPNeeded:           p.XPNeeded,
		ProgressPercentage: p.ProgressPercentage,
		IsMaxLevel:         p.IsMaxLevel,
	}, nil
}
