package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/go-identity"
)

func TestTokenService_GenerateAndDecode(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	token, expiresIn, err := svc.Generate("account-123", []string{"ROLE_USER", "content:read"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := svc.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "account-123", claims.AccountID())
	assert.Equal(t, "account-123", claims.Subject)
	assert.Equal(t, "go-identity-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "every token should carry a unique jti")
	assert.Equal(t, []string{"ROLE_USER", "content:read"}, claims.Authorities)
	assert.True(t, claims.HasAuthority("content:read"))
	assert.True(t, claims.HasRole("USER"))
	assert.False(t, claims.HasRole("ADMIN"))
}

func TestTokenService_GenerateRequiresAccountID(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	_, _, err := svc.Generate("", nil)
	require.Error(t, err)
}

func TestTokenService_DecodeExpired(t *testing.T) {
	now := time.Now()
	svc := identity.NewTokenService(newTestConfig(), nil).
		WithClock(func() time.Time { return now })

	token, _, err := svc.Generate("account-123", nil)
	require.NoError(t, err)

	// Just before the expiry boundary the token still verifies.
	svc.WithClock(func() time.Time { return now.Add(15*time.Minute - time.Second) })
	_, err = svc.Decode(token)
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = svc.Decode(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrTokenExpired)
	assert.False(t, svc.Validate(token))
}

func TestTokenService_DecodeTamperedSignature(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	token, _, err := svc.Generate("account-123", nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.Decode(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrTokenInvalidSignature)
}

func TestTokenService_DecodeWrongKey(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	otherCfg := newTestConfig()
	otherCfg.SigningKey = "a-completely-different-key"
	other := identity.NewTokenService(otherCfg, nil)

	token, _, err := other.Generate("account-123", nil)
	require.NoError(t, err)

	_, err = svc.Decode(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrTokenInvalidSignature)
}

func TestTokenService_DecodeMalformed(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := svc.Decode(garbage)
		require.Error(t, err, "expected decode failure for %q", garbage)
		assert.False(t, svc.Validate(garbage))
	}
}

func TestTokenService_Validate(t *testing.T) {
	svc := identity.NewTokenService(newTestConfig(), nil)

	token, _, err := svc.Generate("account-123", []string{"ROLE_USER"})
	require.NoError(t, err)

	assert.True(t, svc.Validate(token))
	assert.False(t, svc.Validate(token+"x"))
}
