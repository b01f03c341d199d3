// Package authware resolves the authentication context for every request.
//
// The middleware never rejects a request for carrying a bad token: requests
// without a usable credential proceed anonymously and route-level guards
// decide what anonymous callers may do. The single exception is a valid
// token whose account no longer exists, which indicates a data integrity
// problem and fails the request.
//
// Account lookup requires Config.Accounts; without it the middleware runs
// in claims-only mode and trusts the signed token alone. See Config.
package authware

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/veridia/go-identity"
)

// Decoder verifies an access token and returns its claims.
type Decoder interface {
	Decode(tokenString string) (*identity.AccessClaims, error)
}

// AccountLoader confirms the token's subject still maps to a live account.
type AccountLoader interface {
	FindByID(ctx context.Context, id string) (*identity.Account, error)
}

type Config struct {
	// Decoder is required.
	Decoder Decoder
	// Accounts verifies on every authenticated request that the subject
	// account still exists and is enabled, and enriches the principal with
	// the account's current authorities. Leaving it nil opts into
	// claims-only mode: the identity is taken from the signed token alone,
	// with no existence check. Claims-only mode is meant for services that
	// hold the signing key but not the account store; anything with store
	// access should set it.
	Accounts AccountLoader
	// ContextKey is the router locals key the principal is stored under.
	ContextKey string
	// TokenLookup is an ordered "source:name" list, e.g.
	// "header:Authorization,query:token,cookie:token".
	TokenLookup string
	AuthScheme  string
	// BypassPaths are extra path prefixes skipped on top of the built-in
	// bypass set.
	BypassPaths []string
	Logger      identity.Logger
	// ContextEnricher propagates the principal into the standard context.
	// Defaults to identity.WithAuthenticatedIdentity.
	ContextEnricher func(ctx context.Context, ident *identity.AuthenticatedIdentity) context.Context
	// ErrorHandler handles the account-integrity failure case.
	ErrorHandler router.ErrorHandler
}

func getDefaultConfig(cfg Config) Config {
	if cfg.Decoder == nil {
		panic("authware: Decoder is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = identity.DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = identity.DefaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = identity.DefaultAuthScheme
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = identity.WithAuthenticatedIdentity
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.Status(router.StatusUnauthorized).SendString("Unauthorized")
		}
	}

	return cfg
}

// New builds the authentication context middleware.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		var cfg Config
		if len(config) > 0 {
			cfg = config[0]
		}
		cfg = getDefaultConfig(cfg)
		extractors := GetExtractors(cfg.TokenLookup, cfg.AuthScheme)

		if cfg.Accounts == nil {
			cfg.Logger.Info("no account store configured, identities come from token claims only")
		}

		return func(c router.Context) error {
			if ShouldBypass(c.Path(), cfg.BypassPaths...) {
				return c.Next()
			}

			raw, err := ExtractRawToken(c, extractors)
			if err != nil || raw == "" {
				return c.Next()
			}

			claims, err := cfg.Decoder.Decode(raw)
			if err != nil {
				// Anonymous degradation: the reason is logged, never surfaced.
				cfg.Logger.Debug("token rejected for %s: %s", c.Path(), err)
				return c.Next()
			}

			ident := &identity.AuthenticatedIdentity{
				AccountID:   claims.AccountID(),
				Authorities: claims.Authorities,
			}

			if cfg.Accounts != nil {
				account, err := cfg.Accounts.FindByID(c.Context(), claims.AccountID())
				if err != nil {
					// A verified signature naming a missing account means the
					// store and the token issuer disagree. Unlike a bad token
					// this is not the caller's fault, so it fails loudly.
					cfg.Logger.Error("verified token references unknown account %s on %s: %s",
						claims.AccountID(), c.Path(), err)
					return cfg.ErrorHandler(c, err)
				}

				if !account.Enabled || account.Locked {
					cfg.Logger.Warn("token for disabled or locked account %s rejected", claims.AccountID())
					return c.Next()
				}

				ident.Username = account.Username
				ident.Email = account.Email
				ident.Authorities = account.Authorities()
			}

			c.Locals(cfg.ContextKey, ident)
			c.SetContext(cfg.ContextEnricher(c.Context(), ident))

			return c.Next()
		}
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
