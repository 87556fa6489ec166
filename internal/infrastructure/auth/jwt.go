// Package auth implements JWT token issuing and verification for the HTTP API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOKEN MANAGER
// ══════════════════════════════════════════════════════════════════════════════

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "pomodoro-hub"

// Claims captures the validated token claims the API cares about.
type Claims struct {
	UserID   string
	Username string
	IssuedAt time.Time
	ExpireAt time.Time
}

// tokenClaims is the internal claims type used for JWT signing and parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenManager issues and verifies HMAC-signed tokens.
// Implements the TokenIssuer interface the login command depends on.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  timeutil.Clock
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret string, ttl time.Duration, clock timeutil.Clock) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clock == nil {
		clock = timeutil.SystemClock{}
	}

	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// Issue mints a signed token for the user.
func (m *TokenManager) Issue(userID, username string) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a token, returning its claims.
// All failure modes map to shared.ErrInvalidToken so callers cannot
// distinguish a forged token from an expired one.
func (m *TokenManager) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, shared.ErrInvalidToken
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return Claims{}, shared.ErrInvalidToken
	}

	if parsed.Subject == "" {
		return Claims{}, shared.ErrInvalidToken
	}

	claims := Claims{
		UserID:   parsed.Subject,
		Username: parsed.Username,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		claims.ExpireAt = parsed.ExpiresAt.Time.UTC()
	}
	return claims, nil
}
