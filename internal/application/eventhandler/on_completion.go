// Package eventhandler содержит подписчиков на доменные события.
// Обработчики трогают только кеши, никогда - основное хранилище, поэтому
// свойство "один load и один save на завершение" сохраняется.
package eventhandler

import (
	"context"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
)

// cacheOpTimeout - бюджет времени на обновление кешей по одному событию.
const cacheOpTimeout = 5 * time.Second

// CompletionHandler обновляет кеши после завершения фокус-сессии:
// новый XP попадает в лидерборд, устаревшие представления дашборда
// инвалидируются.
type CompletionHandler struct {
	leaderboard progress.LeaderboardCache
	stats       progress.StatsCache
	log         *logger.Logger
}

// NewCompletionHandler создаёт обработчик. Оба кеша опциональны.
func NewCompletionHandler(leaderboard progress.LeaderboardCache, stats progress.StatsCache, log *logger.Logger) *CompletionHandler {
	return &CompletionHandler{
		leaderboard: leaderboard,
		stats:       stats,
		log:         log,
	}
}

// Register подписывает обработчик на события завершения.
func (h *CompletionHandler) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventCompletionRecorded, h.Handle)
}

// Handle обрабатывает одно событие завершения. Сбои кеша логируются,
// но не считаются ошибкой обработки: лидерборд досчитает плановый
// пересборщик, а представления дашборда истекут по TTL.
func (h *CompletionHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.CompletionRecordedEvent)
	if !ok {
		h.log.Warn("unexpected event payload",
			logger.String("event_type", string(event.EventType())))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if h.leaderboard != nil {
		if err := h.leaderboard.UpdateScore(ctx, e.UserID, e.TotalXP); err != nil {
			h.log.Warn("failed to update leaderboard score",
				logger.UserID(e.UserID), logger.Err(err))
		}
	}

	if h.stats != nil {
		if err := h.stats.InvalidateUser(ctx, e.UserID); err != nil {
			h.log.Warn("failed to invalidate stats cache",
				logger.UserID(e.UserID), logger.Err(err))
		}
	}

	return nil
}
