package identity

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenService encodes and verifies stateless signed access tokens.
type TokenService interface {
	Generate(accountID string, authorities []string) (token string, expiresIn int64, err error)
	Decode(token string) (*AccessClaims, error)
	Validate(token string) bool
}

// PasswordHasher is the one-way hash capability used for local credentials.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// CredentialVerifier authenticates a username/password pair against a stored
// account. Failures never disclose whether the identifier matched an account.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, account *Account, password string) error
}

// Config holds the knobs consumed by the token service, refresh store, and
// the authware middleware.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetTokenLookup() string
	GetAuthScheme() string
	GetContextKey() string
	GetBypassPaths() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
