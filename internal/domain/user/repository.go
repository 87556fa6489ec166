package user

import "context"

// Repository - хранилище учётных записей.
//
// FindByID и FindByUsername возвращают shared.ErrUserNotFound (kind
// ErrNotFound), если записи нет; Create возвращает shared.ErrUserAlreadyExists
// при конфликте имени.
type Repository interface {
	// Create сохраняет новую учётную запись.
	Create(ctx context.Context, u *User) error

	// Update обновляет существующую учётную запись (язык, время входа).
	Update(ctx context.Context, u *User) error

	// FindByID ищет пользователя по идентификатору.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername ищет пользователя по имени.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByIDs ищет пользователей пачкой (для строк лидерборда).
	FindByIDs(ctx context.Context, ids []string) (map[string]*User, error)
}
