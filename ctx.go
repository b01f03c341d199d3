package identity

import "context"

type contextKey struct{ name string }

var identityContextKey = contextKey{"authenticated-identity"}

// AuthenticatedIdentity is the request-scoped principal attached to the
// context after a token has been verified and its account resolved.
type AuthenticatedIdentity struct {
	AccountID   string
	Username    string
	Email       string
	Authorities []string
}

// HasAuthority reports whether the principal carries the given authority.
func (a *AuthenticatedIdentity) HasAuthority(authority string) bool {
	for _, item := range a.Authorities {
		if item == authority {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal carries the role, without the
// "ROLE_" prefix.
func (a *AuthenticatedIdentity) HasRole(role string) bool {
	return a.HasAuthority("ROLE_" + role)
}

// WithAuthenticatedIdentity attaches the principal to the context.
func WithAuthenticatedIdentity(ctx context.Context, ident *AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// AuthenticatedIdentityFromContext returns the principal stored in the
// context, or nil when the request is anonymous.
func AuthenticatedIdentityFromContext(ctx context.Context) *AuthenticatedIdentity {
	ident, _ := ctx.Value(identityContextKey).(*AuthenticatedIdentity)
	return ident
}
