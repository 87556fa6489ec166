// Package command содержит обработчики команд - операций, изменяющих
// состояние. Каждый обработчик принимает команду, валидирует её,
// выполняет доменную логику и публикует доменные события.
package command

import (
	"context"
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
	"github.com/focushub/pomodoro-hub/pkg/userlock"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD COMPLETION (Завершение фокус-сессии)
// ══════════════════════════════════════════════════════════════════════════════

// futureSkewTolerance - допустимое опережение часов клиента.
const futureSkewTolerance = time.Minute

// RecordCompletionCommand - команда "фокус-сессия завершена".
type RecordCompletionCommand struct {
	// UserID - идентификатор пользователя.
	UserID string

	// FocusDurationSeconds - длительность сессии в секундах. Должна быть > 0.
	FocusDurationSeconds int

	// OccurredAt - момент завершения. Нулевое значение - взять текущее
	// время у провайдера часов.
	OccurredAt time.Time
}

// NewAchievement - только что разблокированное достижение в ответе.
type NewAchievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RecordCompletionResult - дельты, возникшие из-за завершения сессии.
type RecordCompletionResult struct {
	XPGained        int              `json:"xp_gained"`
	TotalXP         int              `json:"total_xp"`
	LeveledUp       bool             `json:"leveled_up"`
	Level           int              `json:"level"`
	CurrentStreak   int              `json:"current_streak"`
	LongestStreak   int              `json:"longest_streak"`
	NewAchievements []NewAchievement `json:"new_achievements"`
}

// RecordCompletionHandler обрабатывает завершения фокус-сессий:
// загрузить запись, начислить XP, обновить серию, оценить достижения,
// сохранить целиком, опубликовать события.
//
// Записи одного пользователя сериализуются пер-пользовательским мьютексом:
// load-mutate-save из трёх шагов без взаимного исключения теряет
// обновления при конкурентных завершениях.
type RecordCompletionHandler struct {
	store progress.Store
	locks *userlock.KeyedMutex
	clock timeutil.Clock
	bus   shared.EventPublisher
	log   *logger.Logger
}

// NewRecordCompletionHandler создаёт обработчик завершений.
func NewRecordCompletionHandler(
	store progress.Store,
	locks *userlock.KeyedMutex,
	clock timeutil.Clock,
	bus shared.EventPublisher,
	log *logger.Logger,
) *RecordCompletionHandler {
	return &RecordCompletionHandler{
		store: store,
		locks: locks,
		clock: clock,
		bus:   bus,
		log:   log,
	}
}

// Handle выполняет команду. Валидация происходит до любого обращения
// к хранилищу: невалидная команда не оставляет следов.
func (h *RecordCompletionHandler) Handle(ctx context.Context, cmd RecordCompletionCommand) (*RecordCompletionResult, error) {
	now := h.clock.Now()

	occurredAt := cmd.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	occurredAt = occurredAt.UTC()

	if err := h.validate(cmd, occurredAt, now); err != nil {
		return nil, err
	}

	// Конкурентные завершения одного пользователя выполняются по очереди.
	h.locks.Lock(cmd.UserID)
	defer h.locks.Unlock(cmd.UserID)

	record, err := h.loadOrInit(ctx, cmd.UserID, now)
	if err != nil {
		return nil, err
	}

	oldLevel := record.Level
	prevStreak := record.CurrentStreak

	leveledUp := record.AddXP(progress.XPPerSession)
	transition, daysMissed := record.UpdateStreak(occurredAt)
	record.AppendSession(occurredAt, cmd.FocusDurationSeconds)

	newDefs := progress.Evaluate(record, occurredAt)
	for _, d := range newDefs {
		if _, err := record.Unlock(d.ID); err != nil {
			return nil, err
		}
	}

	record.UpdatedAt = now

	if err := h.store.Save(ctx, record); err != nil {
		// Сохранение не удалось - мутированная запись отбрасывается,
		// в хранилище не попадает ничего.
		return nil, shared.WrapError("progress", "RecordCompletion",
			shared.ErrServiceUnavailable, "failed to save progress record", err)
	}

	h.publishEvents(record, oldLevel, prevStreak, leveledUp, transition, daysMissed, newDefs, cmd.FocusDurationSeconds, occurredAt)

	h.log.Info("completion recorded",
		logger.UserID(cmd.UserID),
		logger.XPAmount(progress.XPPerSession),
		logger.LevelNum(record.Level),
		logger.StreakDays(record.CurrentStreak),
		logger.FocusSeconds(cmd.FocusDurationSeconds),
	)

	result := &RecordCompletionResult{
		XPGained:        progress.XPPerSession,
		TotalXP:         record.TotalXP,
		LeveledUp:       leveledUp,
		Level:           record.Level,
		CurrentStreak:   record.CurrentStreak,
		LongestStreak:   record.LongestStreak,
		NewAchievements: make([]NewAchievement, 0, len(newDefs)),
	}
	for _, d := range newDefs {
		result.NewAchievements = append(result.NewAchievements, NewAchievement{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
		})
	}
	return result, nil
}

// validate отклоняет невалидные команды до обращения к хранилищу.
func (h *RecordCompletionHandler) validate(cmd RecordCompletionCommand, occurredAt, now time.Time) error {
	if cmd.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if cmd.FocusDurationSeconds <= 0 {
		return shared.ErrNegativeDuration
	}
	if occurredAt.After(now.Add(futureSkewTolerance)) {
		return shared.ErrCompletionInFuture
	}
	return nil
}

// loadOrInit загружает запись или создаёт нулевую при первой сессии.
func (h *RecordCompletionHandler) loadOrInit(ctx context.Context, userID string, now time.Time) (*progress.GamificationRecord, error) {
	record, err := h.store.Load(ctx, userID)
	if err == nil {
		return record, nil
	}
	if shared.IsNotFound(err) {
		return progress.NewRecord(userID, now), nil
	}
	return nil, shared.WrapError("progress", "RecordCompletion",
		shared.ErrServiceUnavailable, "failed to load progress record", err)
}

// publishEvents публикует доменные события после успешного сохранения.
func (h *RecordCompletionHandler) publishEvents(
	record *progress.GamificationRecord,
	oldLevel int,
	prevStreak int,
	leveledUp bool,
	transition progress.StreakTransition,
	daysMissed int,
	newDefs []progress.AchievementDefinition,
	focusSeconds int,
	occurredAt time.Time,
) {
	if h.bus == nil {
		return
	}

	h.publish(shared.NewCompletionRecordedEvent(
		record.UserID, progress.XPPerSession, record.TotalXP, record.Level,
		record.CurrentStreak, record.TotalSessions(), focusSeconds, occurredAt,
	))

	if leveledUp {
		h.publish(shared.NewLevelUpEvent(record.UserID, oldLevel, record.Level, record.TotalXP))
	}

	switch transition {
	case progress.StreakExtended:
		h.publish(shared.NewStreakExtendedEvent(record.UserID, record.CurrentStreak))
	case progress.StreakReset:
		h.publish(shared.NewStreakBrokenEvent(record.UserID, prevStreak, daysMissed))
	}

	for _, d := range newDefs {
		h.publish(shared.NewAchievementUnlockedEvent(record.UserID, d.ID))
	}
}

// publish отправляет событие, логируя сбой вместо прерывания операции:
// запись уже сохранена, события - best effort.
func (h *RecordCompletionHandler) publish(event shared.Event) {
	if err := h.bus.Publish(event); err != nil {
		h.log.Warn("failed to publish event",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
	}
}
