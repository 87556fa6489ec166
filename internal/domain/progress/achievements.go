package progress

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT CATALOG (Каталог достижений)
// ══════════════════════════════════════════════════════════════════════════════

// Идентификаторы достижений. Сохраняются в записи прогресса, поэтому
// менять их после релиза нельзя.
const (
	AchievementFirstSession = "first_session"
	AchievementStreak3      = "streak_3"
	AchievementStreak7      = "streak_7"
	AchievementWeekly10     = "weekly_10"
	AchievementWeekly25     = "weekly_25"
	AchievementTotal50      = "total_50"
	AchievementTotal100     = "total_100"
	AchievementFocus10h     = "focus_10h"
)

// Predicate - условие разблокировки достижения. Детерминированная функция
// записи и момента оценки: никаких внешних данных и данных конкретного
// вызова. Момент нужен только "недельным" достижениям, чьё окно
// привязано к дню оценки.
type Predicate func(r *GamificationRecord, now time.Time) bool

// AchievementDefinition описывает достижение каталога.
type AchievementDefinition struct {
	// ID - уникальный идентификатор.
	ID string

	// Name - название (английский текст по умолчанию; переводы - в i18n).
	Name string

	// Description - описание условия.
	Description string

	// Unlocked - предикат разблокировки.
	Unlocked Predicate
}

// catalog - все достижения в порядке объявления. Порядок важен:
// дашборд показывает недостигнутые достижения именно в этом порядке.
var catalog = []AchievementDefinition{
	{
		ID:          AchievementFirstSession,
		Name:        "First Focus",
		Description: "Complete your first focus session",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.TotalSessions() >= 1
		},
	},
	{
		ID:          AchievementStreak3,
		Name:        "Three in a Row",
		Description: "Keep a 3-day streak",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.CurrentStreak >= 3
		},
	},
	{
		ID:          AchievementStreak7,
		Name:        "Full Week",
		Description: "Keep a 7-day streak",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.CurrentStreak >= 7
		},
	},
	{
		ID:          AchievementWeekly10,
		Name:        "Productive Week",
		Description: "Complete 10 sessions within 7 days",
		Unlocked: func(r *GamificationRecord, now time.Time) bool {
			return r.SessionsWithinDays(now, 7) >= 10
		},
	},
	{
		ID:          AchievementWeekly25,
		Name:        "Focus Machine",
		Description: "Complete 25 sessions within 7 days",
		Unlocked: func(r *GamificationRecord, now time.Time) bool {
			return r.SessionsWithinDays(now, 7) >= 25
		},
	},
	{
		ID:          AchievementTotal50,
		Name:        "Half Century",
		Description: "Complete 50 sessions in total",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.TotalSessions() >= 50
		},
	},
	{
		ID:          AchievementTotal100,
		Name:        "Centurion",
		Description: "Complete 100 sessions in total",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.TotalSessions() >= 100
		},
	},
	{
		ID:          AchievementFocus10h,
		Name:        "Deep Diver",
		Description: "Accumulate 10 hours of focus time",
		Unlocked: func(r *GamificationRecord, _ time.Time) bool {
			return r.TotalFocusSeconds() >= 10*60*60
		},
	},
}

// init валидирует каталог при старте: пустые или повторяющиеся
// идентификаторы - ошибка программирования.
func init() {
	if err := validateCatalog(catalog); err != nil {
		panic(err)
	}
}

// validateCatalog проверяет уникальность идентификаторов и наличие предикатов.
func validateCatalog(defs []AchievementDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("progress: achievement with empty ID")
		}
		if seen[d.ID] {
			return fmt.Errorf("progress: duplicate achievement ID %q", d.ID)
		}
		if d.Unlocked == nil {
			return fmt.Errorf("progress: achievement %q has no predicate", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// Catalog возвращает все определения достижений в порядке объявления.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Definition возвращает определение достижения по идентификатору.
func Definition(id string) (AchievementDefinition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return AchievementDefinition{}, false
}

// Evaluate возвращает определения достижений, чьи предикаты стали истинными
// и которых ещё нет в записи. Повторная оценка неизменённой записи даёт
// пустой результат; уже разблокированные достижения никогда не
// возвращаются как новые.
func Evaluate(r *GamificationRecord, now time.Time) []AchievementDefinition {
	var unlocked []AchievementDefinition
	for _, d := range catalog {
		if r.HasAchievement(d.ID) {
			continue
		}
		if d.Unlocked(r, now) {
			unlocked = append(unlocked, d)
		}
	}
	return unlocked
}

// Available возвращает определения достижений, ещё не разблокированных
// в записи, в порядке объявления каталога.
func Available(r *GamificationRecord) []AchievementDefinition {
	var avail []AchievementDefinition
	for _, d := range catalog {
		if !r.HasAchievement(d.ID) {
			avail = append(avail, d)
		}
	}
	return avail
}
