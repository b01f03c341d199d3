package identity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Provider is the origin of an account's identity.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderGithub   Provider = "github"
	ProviderFacebook Provider = "facebook"
)

// ParseProvider normalizes a raw provider tag.
func ParseProvider(raw string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderLocal:
		return ProviderLocal, true
	case ProviderGoogle:
		return ProviderGoogle, true
	case ProviderGithub:
		return ProviderGithub, true
	case ProviderFacebook:
		return ProviderFacebook, true
	default:
		return "", false
	}
}

// IsExternal reports whether the provider is a third-party identity system.
func (p Provider) IsExternal() bool {
	return p != "" && p != ProviderLocal
}

// Account is the canonical principal model.
//
// Invariants: local accounts carry a password hash, external accounts carry a
// provider-assigned external id; email and username are each globally unique.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	Provider      Provider   `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderID    string     `bun:"provider_id" json:"provider_id,omitempty"`
	EmailVerified bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Enabled       bool       `bun:"is_enabled" json:"is_enabled,omitempty"`
	Locked        bool       `bun:"is_locked" json:"is_locked,omitempty"`
	Roles         []*Role    `bun:"m2m:account_roles,join:Account=Role" json:"roles,omitempty"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName joins the name parts, tolerating a missing last name.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Authorities derives the capability grants attached to access tokens: one
// "ROLE_<name>" entry per role plus every permission name reachable through
// those roles, deduplicated and sorted.
func (a *Account) Authorities() []string {
	seen := make(map[string]struct{})
	for _, role := range a.Roles {
		if role == nil || role.Name == "" {
			continue
		}
		seen["ROLE_"+role.Name] = struct{}{}
		for _, perm := range role.Permissions {
			if perm != nil && perm.Name != "" {
				seen[perm.Name] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for authority := range seen {
		out = append(out, authority)
	}
	sort.Strings(out)
	return out
}

// View returns the public projection of the account. It never carries the
// password hash.
func (a *Account) View() *AccountView {
	return &AccountView{
		ID:            a.ID.String(),
		Email:         a.Email,
		Username:      a.Username,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		FullName:      a.FullName(),
		AvatarURL:     a.AvatarURL,
		EmailVerified: a.EmailVerified,
		Provider:      a.Provider,
		CreatedAt:     a.CreatedAt,
	}
}

// AccountView is the externally visible account shape.
type AccountView struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	FullName      string     `json:"full_name,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	Provider      Provider   `json:"provider"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// Role is a named grant bundle. Roles are seeded once and read-only here.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`

	ID          uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name        string        `bun:"name,notnull,unique" json:"name,omitempty"`
	Description string        `bun:"description" json:"description,omitempty"`
	Permissions []*Permission `bun:"m2m:role_permissions,join:Role=Permission" json:"permissions,omitempty"`
}

// Permission is a single named capability.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:perm"`

	ID   uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name string    `bun:"name,notnull,unique" json:"name,omitempty"`
}

// AccountRole is the accounts<->roles join row.
type AccountRole struct {
	bun.BaseModel `bun:"table:account_roles,alias:acr"`

	AccountID uuid.UUID `bun:"account_id,pk,type:uuid"`
	Account   *Account  `bun:"rel:belongs-to,join:account_id=id"`
	RoleID    uuid.UUID `bun:"role_id,pk,type:uuid"`
	Role      *Role     `bun:"rel:belongs-to,join:role_id=id"`
}

// RolePermission is the roles<->permissions join row.
type RolePermission struct {
	bun.BaseModel `bun:"table:role_permissions,alias:rpm"`

	RoleID       uuid.UUID   `bun:"role_id,pk,type:uuid"`
	Role         *Role       `bun:"rel:belongs-to,join:role_id=id"`
	PermissionID uuid.UUID   `bun:"permission_id,pk,type:uuid"`
	Permission   *Permission `bun:"rel:belongs-to,join:permission_id=id"`
}

// RefreshToken is one still-possibly-valid long-lived credential.
//
// For a given account at most one row may have revoked == false and a future
// expiry; RefreshTokens.Issue enforces this inside a single transaction.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rft"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token     string    `bun:"token,notnull,unique" json:"token,omitempty"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	Account   *Account  `bun:"rel:belongs-to,join:account_id=id" json:"-"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Revoked   bool      `bun:"revoked,notnull,default:false" json:"revoked,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// RegisterModels registers the many-to-many join models with bun. Call once
// per bun.DB before using the repositories.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*AccountRole)(nil), (*RolePermission)(nil))
}
