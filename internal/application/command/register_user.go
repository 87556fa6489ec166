package command

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER (Регистрация)
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand - команда регистрации.
type RegisterUserCommand struct {
	// Username - желаемое имя пользователя.
	Username string

	// Password - сырой пароль. Хешируется bcrypt'ом, нигде не сохраняется.
	Password string

	// Language - предпочитаемый язык интерфейса (опционально).
	Language string
}

// RegisterUserResult - результат регистрации.
type RegisterUserResult struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Language string `json:"language"`
}

// RegisterUserHandler регистрирует нового пользователя.
type RegisterUserHandler struct {
	users user.Repository
	clock timeutil.Clock
	bus   shared.EventPublisher
	log   *logger.Logger
}

// NewRegisterUserHandler создаёт обработчик регистрации.
func NewRegisterUserHandler(users user.Repository, clock timeutil.Clock, bus shared.EventPublisher, log *logger.Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		users: users,
		clock: clock,
		bus:   bus,
		log:   log,
	}
}

// Handle выполняет регистрацию: валидация, хеширование пароля, сохранение.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := user.ValidateUsername(cmd.Username); err != nil {
		return nil, err
	}
	if err := user.ValidatePassword(cmd.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.WrapError("user", "Register", shared.ErrInvalidInput, "failed to hash password", err)
	}

	u, err := user.NewUser(uuid.NewString(), cmd.Username, string(hash), cmd.Language, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.users.Create(ctx, u); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrUserAlreadyExists
		}
		return nil, shared.WrapError("user", "Register", shared.ErrServiceUnavailable, "failed to create user", err)
	}

	if h.bus != nil {
		if err := h.bus.Publish(shared.NewUserRegisteredEvent(u.ID, u.Username, u.Language)); err != nil {
			h.log.Warn("failed to publish event",
				logger.String("event_type", string(shared.EventUserRegistered)),
				logger.Err(err),
			)
		}
	}

	h.log.Info("user registered", logger.UserID(u.ID), logger.Username(u.Username))

	return &RegisterUserResult{
		UserID:   u.ID,
		Username: u.Username,
		Language: u.Language,
	}, nil
}
