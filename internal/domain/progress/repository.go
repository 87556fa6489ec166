package progress

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE CONTRACTS (Контракты хранилища)
// ══════════════════════════════════════════════════════════════════════════════

// Store - долговременное хранилище записей прогресса. Запись читается
// и пишется целиком, атомарно; движок никогда не делает частичных записей.
//
// Load возвращает shared.ErrRecordNotFound (kind ErrNotFound), если записи
// для пользователя нет.
type Store interface {
	// Load загружает запись прогресса пользователя.
	Load(ctx context.Context, userID string) (*GamificationRecord, error)

	// Save сохраняет запись целиком, создавая её при необходимости.
	Save(ctx context.Context, record *GamificationRecord) error

	// LoadAll загружает все записи (для полного пересчёта лидерборда).
	LoadAll(ctx context.Context) ([]*GamificationRecord, error)
}

// LeaderboardEntry - строка лидерборда.
type LeaderboardEntry struct {
	// Rank - позиция (с 1).
	Rank int

	// UserID - идентификатор пользователя.
	UserID string

	// TotalXP - накопленный XP.
	TotalXP int
}

// LeaderboardCache - кеш лидерборда, упорядоченного по XP.
// Реализуется поверх Redis ZSET; при недоступности кеша вызывающая
// сторона падает обратно на Store.
type LeaderboardCache interface {
	// UpdateScore обновляет XP пользователя в лидерборде.
	UpdateScore(ctx context.Context, userID string, totalXP int) error

	// Top возвращает первые limit строк по убыванию XP.
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// Rank возвращает позицию пользователя (0, если его нет в лидерборде).
	Rank(ctx context.Context, userID string) (int, error)

	// Rebuild атомарно заменяет лидерборд содержимым записей.
	Rebuild(ctx context.Context, records []*GamificationRecord) error
}

// StatsCache - кеш сериализованных ответов дашборда (статистика, графики).
// Значения хранятся как готовый JSON и инвалидируются при каждом
// завершении сессии пользователя.
type StatsCache interface {
	// Get возвращает закешированный ответ по ключу или shared.ErrNotFound.
	Get(ctx context.Context, userID, view string) ([]byte, error)

	// Set сохраняет ответ с TTL.
	Set(ctx context.Context, userID, view string, payload []byte, ttl time.Duration) error

	// InvalidateUser удаляет все закешированные ответы пользователя.
	InvalidateUser(ctx context.Context, userID string) error
}
