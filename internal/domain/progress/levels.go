package progress

import (
	"fmt"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL TABLE (Таблица уровней)
// ══════════════════════════════════════════════════════════════════════════════

// XPPerSession - фиксированная награда XP за одну завершённую фокус-сессию.
// Длительность сессии - настроенная цель, а не переменный результат,
// поэтому награда не масштабируется по времени.
const XPPerSession = 50

// MaxLevel - максимальный уровень. После его достижения XP продолжает
// накапливаться, но уровень больше не растёт.
const MaxLevel = 10

// LevelThreshold - одна ступень таблицы уровней.
type LevelThreshold struct {
	// Level - номер уровня.
	Level int

	// CumulativeXP - суммарный XP, необходимый для достижения уровня.
	CumulativeXP int
}

// levelTable - таблица уровней. Пороги растут нелинейно, чтобы прогресс
// замедлялся: каждый следующий уровень требует заметно больше XP.
// Таблица - настраиваемая константа; движок никогда не вычисляет кривую сам.
var levelTable = []LevelThreshold{
	{Level: 1, CumulativeXP: 0},
	{Level: 2, CumulativeXP: 100},
	{Level: 3, CumulativeXP: 250},
	{Level: 4, CumulativeXP: 500},
	{Level: 5, CumulativeXP: 1000},
	{Level: 6, CumulativeXP: 2000},
	{Level: 7, CumulativeXP: 3500},
	{Level: 8, CumulativeXP: 5500},
	{Level: 9, CumulativeXP: 8000},
	{Level: 10, CumulativeXP: 11000},
}

// init валидирует таблицу уровней при старте процесса. Немонотонная таблица -
// ошибка программирования, а не восстановимое состояние: падаем сразу.
func init() {
	if err := validateLevelTable(levelTable); err != nil {
		panic(err)
	}
}

// validateLevelTable проверяет, что уровни и пороги строго возрастают
// и первый уровень начинается с нуля XP.
func validateLevelTable(table []LevelThreshold) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: table is empty", shared.ErrLevelTableCorrupted)
	}
	if table[0].Level != 1 || table[0].CumulativeXP != 0 {
		return fmt.Errorf("%w: must start at level 1 with 0 XP, got level %d with %d XP",
			shared.ErrLevelTableCorrupted, table[0].Level, table[0].CumulativeXP)
	}
	for i := 1; i < len(table); i++ {
		if table[i].Level != table[i-1].Level+1 {
			return fmt.Errorf("%w: gap between levels %d and %d",
				shared.ErrLevelTableCorrupted, table[i-1].Level, table[i].Level)
		}
		if table[i].CumulativeXP <= table[i-1].CumulativeXP {
			return fmt.Errorf("%w: not strictly increasing at level %d (%d <= %d)",
				shared.ErrLevelTableCorrupted, table[i].Level, table[i].CumulativeXP, table[i-1].CumulativeXP)
		}
	}
	if table[len(table)-1].Level != MaxLevel {
		return fmt.Errorf("%w: tops out at level %d, expected %d",
			shared.ErrLevelTableCorrupted, table[len(table)-1].Level, MaxLevel)
	}
	return nil
}

// LevelForXP возвращает уровень для накопленного XP: максимальный уровень L,
// порог которого не превышает xp. Результат ограничен MaxLevel.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	level := 1
	for _, t := range levelTable {
		if xp >= t.CumulativeXP {
			level = t.Level
		} else {
			break
		}
	}
	return level
}

// XPProgress - позиция пользователя между порогом текущего уровня
// и порогом следующего.
type XPProgress struct {
	// Level - текущий уровень.
	Level int

	// NextLevel - следующий уровень (0, если достигнут максимум).
	NextLevel int

	// CurrentXP - накопленный XP.
	CurrentXP int

	// CurrentLevelFloorXP - порог текущего уровня.
	CurrentLevelFloorXP int

	// NextLevelThresholdXP - порог следующего уровня (0 на максимуме).
	NextLevelThresholdXP int

	// XPNeeded - сколько XP осталось до следующего уровня (0 на максимуме).
	XPNeeded int

	// ProgressPercentage - прогресс к следующему уровню в [0, 100].
	// На максимальном уровне всегда 100.
	ProgressPercentage float64

	// IsMaxLevel - достигнут ли максимальный уровень.
	IsMaxLevel bool
}

// ProgressForXP вычисляет XPProgress для накопленного XP.
func ProgressForXP(xp int) XPProgress {
	if xp < 0 {
		xp = 0
	}

	level := LevelForXP(xp)
	floor := levelTable[level-1].CumulativeXP

	if level >= MaxLevel {
		return XPProgress{
			Level:               level,
			CurrentXP:           xp,
			CurrentLevelFloorXP: floor,
			ProgressPercentage:  100,
			IsMaxLevel:          true,
		}
	}

	threshold := levelTable[level].CumulativeXP
	pct := 100 * float64(xp-floor) / float64(threshold-floor)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return XPProgress{
		Level:                level,
		NextLevel:            level + 1,
		CurrentXP:            xp,
		CurrentLevelFloorXP:  floor,
		NextLevelThresholdXP: threshold,
		XPNeeded:             threshold - xp,
		ProgressPercentage:   pct,
		IsMaxLevel:           false,
	}
}

// LevelTable возвращает копию таблицы уровней (для дашбордов и тестов).
func LevelTable() []LevelThreshold {
	out := make([]LevelThreshold, len(levelTable))
	copy(out, levelTable)
	return out
}
