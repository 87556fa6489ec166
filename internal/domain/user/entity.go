// Package user содержит учётные записи пользователей: сущность, правила
// валидации и контракт репозитория.
package user

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER ENTITY (Учётная запись)
// ══════════════════════════════════════════════════════════════════════════════

// Ограничения валидации.
const (
	// MinUsernameLength - минимальная длина имени пользователя.
	MinUsernameLength = 3
	// MaxUsernameLength - максимальная длина имени пользователя.
	MaxUsernameLength = 32
	// MinPasswordLength - минимальная длина пароля.
	MinPasswordLength = 8
	// MaxPasswordLength - максимальная длина пароля (ограничение bcrypt - 72 байта).
	MaxPasswordLength = 72
)

// usernamePattern - допустимые символы имени: латиница, цифры, подчёркивание,
// дефис и точка.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// SupportedLanguages - языки интерфейса, которые понимает каталог i18n.
var SupportedLanguages = []string{"en", "ja", "kk"}

// DefaultLanguage - язык по умолчанию для новых пользователей.
const DefaultLanguage = "en"

// User - учётная запись пользователя.
type User struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// Username - уникальное имя для входа.
	Username string

	// PasswordHash - bcrypt-хеш пароля. Сырой пароль нигде не хранится.
	PasswordHash string

	// Language - предпочитаемый язык интерфейса (en, ja, kk).
	Language string

	// CreatedAt - когда зарегистрирован.
	CreatedAt time.Time

	// LastLoginAt - время последнего входа. Нулевое значение - ещё не входил.
	LastLoginAt time.Time
}

// NewUser создаёт учётную запись с уже вычисленным хешем пароля.
func NewUser(id, username, passwordHash, language string, now time.Time) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.WrapError("user", "New", shared.ErrInvalidInput, "empty password hash", nil)
	}
	if language == "" {
		language = DefaultLanguage
	}
	if !IsSupportedLanguage(language) {
		return nil, shared.NewDomainError("user", "New", shared.ErrInvalidInput, "unsupported language")
	}

	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Language:     language,
		CreatedAt:    now,
	}, nil
}

// RecordLogin отмечает успешный вход.
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = now
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION (Валидация)
// ══════════════════════════════════════════════════════════════════════════════

// ValidateUsername проверяет имя пользователя по правилам регистрации.
func ValidateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < MinUsernameLength || length > MaxUsernameLength {
		return shared.ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return shared.ErrInvalidUsername
	}
	return nil
}

// ValidatePassword проверяет сырой пароль перед хешированием.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return shared.ErrWeakPassword
	}
	return nil
}

// IsSupportedLanguage проверяет, поддержан ли язык интерфейса.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
