package identity

import "time"

const (
	// DefaultTokenLookup is the extraction order for request credentials:
	// Authorization header first, then the token query parameter, then the
	// token cookie. The first present, non-blank value wins.
	DefaultTokenLookup = "header:Authorization,query:token,cookie:token"

	// DefaultAuthScheme is the expected Authorization header scheme.
	DefaultAuthScheme = "Bearer"

	// DefaultContextKey is where authware stores the authenticated identity.
	DefaultContextKey = "identity"
)

// SimpleConfig is a plain struct implementation of Config.
type SimpleConfig struct {
	SigningKey      string
	SigningMethod   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        []string
	TokenLookup     string
	AuthScheme      string
	ContextKey      string
	BypassPaths     []string
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *SimpleConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return 15 * time.Minute
	}
	return c.AccessTokenTTL
}

func (c *SimpleConfig) GetRefreshTokenTTL() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.RefreshTokenTTL
}

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetAudience() []string { return c.Audience }

func (c *SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return DefaultTokenLookup
	}
	return c.TokenLookup
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return DefaultAuthScheme
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetBypassPaths() []string { return c.BypassPaths }
