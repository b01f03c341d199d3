package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the signed payload of an access token: subject account id,
// the authority set derived at issuance, and the registered time bounds.
type AccessClaims struct {
	jwt.RegisteredClaims
	UID         string   `json:"uid,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
}

// AccountID returns the subject account id.
func (c *AccessClaims) AccountID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// HasAuthority reports whether the claim set carries the given authority.
func (c *AccessClaims) HasAuthority(authority string) bool {
	for _, a := range c.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasRole reports whether the claim set carries "ROLE_<name>".
func (c *AccessClaims) HasRole(name string) bool {
	return c.HasAuthority("ROLE_" + name)
}

// Expires returns the embedded expiry, zero when absent.
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the embedded issuance time, zero when absent.
func (c *AccessClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
