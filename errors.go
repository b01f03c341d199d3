package identity

import (
	"github.com/goliatone/go-errors"
)

// Error taxonomy for the subsystem. Every externally visible failure is one
// of these rich errors so an HTTP layer can map category/code mechanically.
var (
	// ErrAccountNotFound is returned when an account lookup by id, email, or
	// username finds nothing.
	ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
				WithTextCode("ACCOUNT_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	// ErrRoleNotFound is returned when a named role has not been seeded.
	ErrRoleNotFound = errors.New("role not found", errors.CategoryNotFound).
			WithTextCode("ROLE_NOT_FOUND").
			WithCode(errors.CodeNotFound)

	// ErrEmailTaken rejects registration with an email already in use.
	ErrEmailTaken = errors.New("email is already in use", errors.CategoryConflict).
			WithTextCode("EMAIL_TAKEN").
			WithCode(errors.CodeConflict)

	// ErrUsernameTaken rejects registration with a username already taken.
	ErrUsernameTaken = errors.New("username is already taken", errors.CategoryConflict).
				WithTextCode("USERNAME_TAKEN").
				WithCode(errors.CodeConflict)

	// ErrUsernameConflict is returned when username generation exhausts its
	// retry budget against concurrent registrations.
	ErrUsernameConflict = errors.New("could not allocate a unique username", errors.CategoryConflict).
				WithTextCode("USERNAME_CONFLICT").
				WithCode(errors.CodeConflict)

	// ErrProviderConflict rejects an external sign-in for an email that is
	// already registered as a local account. The accounts are never merged.
	ErrProviderConflict = errors.New("email is registered with local credentials", errors.CategoryConflict).
				WithTextCode("PROVIDER_CONFLICT").
				WithCode(errors.CodeConflict)

	// ErrInvalidCredentials covers every credential verification failure:
	// unknown identifier, wrong password, or unusable account data. The
	// message is deliberately uniform to avoid enumeration leaks.
	ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	// ErrAccountDisabled is distinct from invalid credentials: the account is
	// known to exist and has been switched off.
	ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
				WithTextCode("ACCOUNT_DISABLED").
				WithCode(errors.CodeForbidden)

	// ErrAccountLocked is distinct from invalid credentials: the account is
	// known to exist and has been locked.
	ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
				WithTextCode("ACCOUNT_LOCKED").
				WithCode(errors.CodeForbidden)

	// ErrTokenExpired is returned for expired access and refresh tokens.
	ErrTokenExpired = errors.New("token expired, please sign in again", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	// ErrTokenRevoked is returned for refresh tokens revoked by logout or by
	// issuance of a newer token.
	ErrTokenRevoked = errors.New("token revoked, please sign in again", errors.CategoryAuth).
			WithTextCode("TOKEN_REVOKED").
			WithCode(errors.CodeUnauthorized)

	// ErrTokenMalformed covers tokens that cannot be parsed at all.
	ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	// ErrTokenInvalidSignature covers tokens whose signature does not verify
	// against the configured key.
	ErrTokenInvalidSignature = errors.New("invalid token signature", errors.CategoryAuth).
					WithTextCode("TOKEN_BAD_SIGNATURE").
					WithCode(errors.CodeUnauthorized)

	// ErrRefreshTokenInvalid is returned when a refresh token string matches
	// no stored token.
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid", errors.CategoryAuth).
				WithTextCode("REFRESH_TOKEN_INVALID").
				WithCode(errors.CodeUnauthorized)

	// ErrUnsupportedProvider rejects identity payloads from unknown provider
	// tags. This is a configuration problem, not a user error.
	ErrUnsupportedProvider = errors.New("identity provider is not supported", errors.CategoryBadInput).
				WithTextCode("UNSUPPORTED_PROVIDER").
				WithCode(errors.CodeBadRequest)

	// ErrMissingEmail rejects provider identities without a usable email;
	// email is mandatory for account resolution.
	ErrMissingEmail = errors.New("email not found from identity provider", errors.CategoryBadInput).
			WithTextCode("MISSING_EMAIL").
			WithCode(errors.CodeBadRequest)

	// ErrMismatchedHashAndPassword is the internal bcrypt mismatch marker.
	// Callers surface ErrInvalidCredentials instead.
	ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
					WithTextCode("PASSWORD_MISMATCH").
					WithCode(errors.CodeUnauthorized)

	// ErrNoEmptyString rejects empty input to the password hasher.
	ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
				WithTextCode("EMPTY_PASSWORD").
				WithCode(errors.CodeBadRequest)
)
