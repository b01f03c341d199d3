package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements TokenService with HS256 signed JWTs.
//
// All operations are pure functions of the input, the configured key, and the
// clock; nothing is persisted and no locking is required.
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService from the shared Config.
func NewTokenService(cfg Config, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        cfg.GetAccessTokenTTL(),
		issuer:     cfg.GetIssuer(),
		audience:   jwt.ClaimStrings(cfg.GetAudience()),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source, useful for expiry tests.
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Generate mints a signed access token for the account and its authority set.
// It returns the token string and the TTL in seconds.
func (ts *TokenServiceImpl) Generate(accountID string, authorities []string) (string, int64, error) {
	if accountID == "" {
		return "", 0, errors.New("account id is required", errors.CategoryBadInput)
	}

	now := ts.now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   accountID,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
			ID:        uuid.NewString(),
		},
		UID:         accountID,
		Authorities: append([]string(nil), authorities...),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.CategoryInternal, "failed to sign access token")
	}

	return signed, int64(ts.ttl.Seconds()), nil
}

// Decode parses and verifies the token, returning structured claims.
//
// Malformed tokens, signature mismatches, and expired tokens produce three
// distinct errors so callers can log the reason, but callers must treat all
// three identically as "unauthenticated" and never surface which one occurred.
func (ts *TokenServiceImpl) Decode(tokenString string) (*AccessClaims, error) {
	parserOptions := []jwt.ParserOption{jwt.WithTimeFunc(ts.now)}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode rejected unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalidSignature
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token decode could not map claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Validate reports whether the token carries a valid signature and is not
// yet expired.
func (ts *TokenServiceImpl) Validate(tokenString string) bool {
	_, err := ts.Decode(tokenString)
	return err == nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
