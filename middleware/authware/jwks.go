package authware

import (
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/veridia/go-identity"
)

// JWKSDecoder verifies access tokens against one or more remote JWK Sets.
// Use it when tokens are minted by an external issuer (an OIDC provider or
// a separate auth service) instead of the local HMAC token service.
type JWKSDecoder struct {
	keyFunc jwt.Keyfunc
	issuer  string
}

type JWKSOption func(*JWKSDecoder)

// WithJWKSIssuer enables issuer verification during decode.
func WithJWKSIssuer(issuer string) JWKSOption {
	return func(d *JWKSDecoder) {
		d.issuer = issuer
	}
}

// NewJWKSDecoder fetches and caches the JWK Sets at the given URLs,
// refreshing them in the background.
func NewJWKSDecoder(jwkSetURLs []string, opts ...JWKSOption) (*JWKSDecoder, error) {
	if len(jwkSetURLs) == 0 {
		return nil, fmt.Errorf("authware: at least one JWK Set URL is required")
	}

	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = keyfuncOptions()
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK Set URLs: %w", err)
	}

	decoder := &JWKSDecoder{keyFunc: multi.Keyfunc}
	for _, opt := range opts {
		if opt != nil {
			opt(decoder)
		}
	}

	return decoder, nil
}

func (d *JWKSDecoder) Decode(tokenString string) (*identity.AccessClaims, error) {
	parserOptions := []jwt.ParserOption{}
	if d.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(d.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &identity.AccessClaims{}, d.keyFunc, parserOptions...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*identity.AccessClaims)
	if !ok || !token.Valid {
		return nil, identity.ErrTokenMalformed
	}

	return claims, nil
}

var _ Decoder = (*JWKSDecoder)(nil)

func keyfuncOptions() keyfunc.Options {
	return keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK Set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}
