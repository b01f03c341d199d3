package identity

import (
	"context"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = 14

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(bytes), nil
}

// ComparePasswordAndHash verifies a plaintext password against a bcrypt hash.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to compare password and hash")
	}
	return nil
}

type bcryptHasher struct{}

// NewPasswordHasher returns the default bcrypt backed PasswordHasher.
func NewPasswordHasher() PasswordHasher {
	return bcryptHasher{}
}

func (bcryptHasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

type hashCredentialVerifier struct {
	hasher PasswordHasher
}

// NewCredentialVerifier verifies local credentials against the stored hash.
// Every failure collapses to ErrInvalidCredentials so callers cannot tell a
// wrong password from an account that has no local credentials at all.
func NewCredentialVerifier(hasher PasswordHasher) CredentialVerifier {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	return hashCredentialVerifier{hasher: hasher}
}

func (v hashCredentialVerifier) VerifyCredentials(ctx context.Context, account *Account, password string) error {
	if account == nil || account.PasswordHash == "" {
		return ErrInvalidCredentials
	}

	if err := v.hasher.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}

	return nil
}
