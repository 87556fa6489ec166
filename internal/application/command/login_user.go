package command

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN (Вход)
// ══════════════════════════════════════════════════════════════════════════════

// TokenIssuer выпускает токены доступа для HTTP-слоя.
type TokenIssuer interface {
	// Issue выпускает подписанный токен для пользователя.
	Issue(userID, username string) (token string, expiresAt time.Time, err error)
}

// LoginUserCommand - команда входа.
type LoginUserCommand struct {
	Username string
	Password string
}

// LoginUserResult - результат входа.
type LoginUserResult struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginUserHandler проверяет учётные данные и выпускает токен.
type LoginUserHandler struct {
	users  user.Repository
	tokens TokenIssuer
	clock  timeutil.Clock
	log    *logger.Logger
}

// NewLoginUserHandler создаёт обработчик входа.
func NewLoginUserHandler(users user.Repository, tokens TokenIssuer, clock timeutil.Clock, log *logger.Logger) *LoginUserHandler {
	return &LoginUserHandler{
		users:  users,
		tokens: tokens,
		clock:  clock,
		log:    log,
	}
}

// Handle выполняет вход. Несуществующее имя и неверный пароль дают один
// и тот же ответ: по ошибке нельзя перечислять пользователей.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginUserResult, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return nil, shared.ErrInvalidCredentials
	}

	u, err := h.users.FindByUsername(ctx, cmd.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.WrapError("user", "Login", shared.ErrServiceUnavailable, "failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := h.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, shared.WrapError("user", "Login", shared.ErrServiceUnavailable, "failed to issue token", err)
	}

	u.RecordLogin(h.clock.Now())
	if err := h.users.Update(ctx, u); err != nil {
		// Вход уже состоялся; отметка времени - best effort.
		h.log.Warn("failed to record login time", logger.UserID(u.ID), logger.Err(err))
	}

	h.log.Info("user logged in", logger.UserID(u.ID), logger.Username(u.Username))

	return &LoginUserResult{
		UserID:    u.ID,
		Username:  u.Username,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
