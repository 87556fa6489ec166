// Package progress содержит ядро геймификации: запись прогресса пользователя,
// таблицу уровней, каталог достижений и контракты хранилища.
package progress

import (
	"time"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAMIFICATION RECORD (Запись прогресса)
// ══════════════════════════════════════════════════════════════════════════════

// SessionEntry - одна запись в истории сессий.
type SessionEntry struct {
	// Timestamp - момент завершения сессии (UTC).
	Timestamp time.Time `json:"timestamp"`

	// FocusSeconds - длительность фокус-сессии в секундах.
	FocusSeconds int `json:"focus_seconds"`
}

// GamificationRecord - полный игровой прогресс одного пользователя.
// Запись загружается и сохраняется хранилищем целиком; частичных
// записей не бывает.
type GamificationRecord struct {
	// UserID - идентификатор пользователя.
	UserID string

	// TotalXP - накопленный XP. Монотонно не убывает; растёт только
	// через завершённые сессии.
	TotalXP int

	// Level - текущий уровень, производный от TotalXP. Никогда не падает.
	Level int

	// CurrentStreak - текущая серия календарных дней с хотя бы одной сессией.
	CurrentStreak int

	// LongestStreak - лучшая серия. Всегда >= CurrentStreak.
	LongestStreak int

	// LastSessionDate - календарная дата последней сессии (00:00 UTC).
	// Нулевое значение - сессий ещё не было.
	LastSessionDate time.Time

	// UnlockedAchievements - идентификаторы полученных достижений
	// в порядке разблокировки. Достижение не отзывается.
	UnlockedAchievements []string

	// SessionHistory - история сессий в хронологическом порядке,
	// только добавление. Используется агрегатором графиков.
	SessionHistory []SessionEntry

	// CreatedAt - когда запись создана.
	CreatedAt time.Time

	// UpdatedAt - когда запись последний раз изменялась.
	UpdatedAt time.Time
}

// NewRecord создаёт нулевую запись прогресса для пользователя.
func NewRecord(userID string, now time.Time) *GamificationRecord {
	return &GamificationRecord{
		UserID:               userID,
		TotalXP:              0,
		Level:                1,
		CurrentStreak:        0,
		LongestStreak:        0,
		UnlockedAchievements: []string{},
		SessionHistory:       []SessionEntry{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Clone возвращает глубокую копию записи. Обработчик завершения мутирует
// копию и сохраняет её целиком: при ошибке сохранения исходная запись
// остаётся нетронутой.
func (r *GamificationRecord) Clone() *GamificationRecord {
	cp := *r
	cp.UnlockedAchievements = make([]string, len(r.UnlockedAchievements))
	copy(cp.UnlockedAchievements, r.UnlockedAchievements)
	cp.SessionHistory = make([]SessionEntry, len(r.SessionHistory))
	copy(cp.SessionHistory, r.SessionHistory)
	return &cp
}

// AddXP добавляет XP и пересчитывает уровень.
// Возвращает true, если произошло повышение уровня.
func (r *GamificationRecord) AddXP(amount int) bool {
	if amount <= 0 {
		return false
	}
	r.TotalXP += amount

	newLevel := LevelForXP(r.TotalXP)
	if newLevel > r.Level {
		r.Level = newLevel
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK (Серия активных дней)
// ══════════════════════════════════════════════════════════════════════════════

// StreakTransition описывает, что произошло с серией при завершении сессии.
type StreakTransition int

const (
	// StreakStarted - первая сессия пользователя, серия началась с 1.
	StreakStarted StreakTransition = iota
	// StreakUnchanged - повторная сессия в тот же день, серия не меняется.
	StreakUnchanged
	// StreakExtended - сессия ровно на следующий день, серия выросла на 1.
	StreakExtended
	// StreakReset - пропущен хотя бы один день, серия сброшена до 1.
	StreakReset
)

// String возвращает строковое представление перехода.
func (t StreakTransition) String() string {
	switch t {
	case StreakStarted:
		return "started"
	case StreakUnchanged:
		return "unchanged"
	case StreakExtended:
		return "extended"
	case StreakReset:
		return "reset"
	default:
		return "unknown"
	}
}

// UpdateStreak обновляет серию по календарной дате завершения.
// Возвращает тип перехода и количество пропущенных дней (только для сброса).
//
// Правила:
//   - первая сессия: серия = 1;
//   - тот же день: без изменений (повторные сессии серию не раздувают);
//   - ровно на день позже: серия +1;
//   - больший разрыв: серия сбрасывается до 1 (не до 0).
func (r *GamificationRecord) UpdateStreak(occurredAt time.Time) (StreakTransition, int) {
	date := timeutil.DateOf(occurredAt)

	if r.LastSessionDate.IsZero() {
		r.CurrentStreak = 1
		r.LongestStreak = 1
		r.LastSessionDate = date
		return StreakStarted, 0
	}

	days := timeutil.DaysBetween(r.LastSessionDate, date)

	switch {
	case days == 0:
		return StreakUnchanged, 0

	case days == 1:
		r.CurrentStreak++
		if r.CurrentStreak > r.LongestStreak {
			r.LongestStreak = r.CurrentStreak
		}
		r.LastSessionDate = date
		return StreakExtended, 0

	default:
		missed := days - 1
		r.CurrentStreak = 1
		if r.LongestStreak < 1 {
			r.LongestStreak = 1
		}
		r.LastSessionDate = date
		return StreakReset, missed
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HISTORY (История сессий)
// ══════════════════════════════════════════════════════════════════════════════

// AppendSession добавляет сессию в историю. История хранит каждую сессию,
// включая повторные за один день: графики считают сессии, а не дни.
func (r *GamificationRecord) AppendSession(occurredAt time.Time, focusSeconds int) {
	r.SessionHistory = append(r.SessionHistory, SessionEntry{
		Timestamp:    occurredAt.UTC(),
		FocusSeconds: focusSeconds,
	})
}

// TotalSessions возвращает общее количество завершённых сессий.
func (r *GamificationRecord) TotalSessions() int {
	return len(r.SessionHistory)
}

// TotalFocusSeconds возвращает суммарное время фокуса в секундах.
func (r *GamificationRecord) TotalFocusSeconds() int {
	total := 0
	for _, s := range r.SessionHistory {
		total += s.FocusSeconds
	}
	return total
}

// SessionsOnDay возвращает количество сессий за календарный день.
func (r *GamificationRecord) SessionsOnDay(day time.Time) int {
	count := 0
	for _, s := range r.SessionHistory {
		if timeutil.SameDay(s.Timestamp, day) {
			count++
		}
	}
	return count
}

// SessionsWithinDays возвращает количество сессий за последние n календарных
// дней, включая день now.
func (r *GamificationRecord) SessionsWithinDays(now time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	from := timeutil.DateOf(now).AddDate(0, 0, -(n - 1))
	to := timeutil.EndOfDay(now)

	count := 0
	for _, s := range r.SessionHistory {
		ts := s.Timestamp.UTC()
		if !ts.Before(from) && !ts.After(to) {
			count++
		}
	}
	return count
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT STATE (Состояние достижений)
// ══════════════════════════════════════════════════════════════════════════════

// HasAchievement проверяет, разблокировано ли достижение.
func (r *GamificationRecord) HasAchievement(id string) bool {
	for _, a := range r.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// Unlock добавляет достижение, если его ещё нет. Идентификатор обязан
// существовать в каталоге: запись хранит только известные достижения.
// Возвращает true, если достижение новое.
func (r *GamificationRecord) Unlock(id string) (bool, error) {
	if _, ok := Definition(id); !ok {
		return false, shared.ErrUnknownAchievement
	}
	if r.HasAchievement(id) {
		return false, nil
	}
	r.UnlockedAchievements = append(r.UnlockedAchievements, id)
	return true, nil
}
