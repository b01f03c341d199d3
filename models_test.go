package identity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/veridia/go-identity"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		raw  string
		want identity.Provider
		ok   bool
	}{
		{"google", identity.ProviderGoogle, true},
		{"GitHub", identity.ProviderGithub, true},
		{" FACEBOOK ", identity.ProviderFacebook, true},
		{"local", identity.ProviderLocal, true},
		{"myspace", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := identity.ParseProvider(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestProviderIsExternal(t *testing.T) {
	assert.False(t, identity.ProviderLocal.IsExternal())
	assert.True(t, identity.ProviderGoogle.IsExternal())
	assert.True(t, identity.ProviderGithub.IsExternal())
	assert.True(t, identity.ProviderFacebook.IsExternal())
}

func TestAccountFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&identity.Account{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&identity.Account{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&identity.Account{LastName: "Lovelace"}).FullName())
	assert.Equal(t, "", (&identity.Account{}).FullName())
}

func TestAccountAuthorities(t *testing.T) {
	account := &identity.Account{
		ID: uuid.New(),
		Roles: []*identity.Role{
			{
				Name: "ADMIN",
				Permissions: []*identity.Permission{
					{Name: "content:write"},
					{Name: "content:read"},
				},
			},
			{
				Name: "USER",
				Permissions: []*identity.Permission{
					{Name: "content:read"}, // shared with ADMIN
				},
			},
		},
	}

	got := account.Authorities()

	assert.Equal(t, []string{
		"ROLE_ADMIN",
		"ROLE_USER",
		"content:read",
		"content:write",
	}, got, "authorities should be deduplicated and sorted")
}

func TestAccountAuthoritiesNoRoles(t *testing.T) {
	assert.Empty(t, (&identity.Account{}).Authorities())
}

func TestAccountView(t *testing.T) {
	account := &identity.Account{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$2a$14$secret",
		Provider:     identity.ProviderGithub,
	}

	view := account.View()
	assert.Equal(t, account.ID.String(), view.ID)
	assert.Equal(t, "ada@example.com", view.Email)
	assert.Equal(t, "Ada Lovelace", view.FullName)
	assert.Equal(t, identity.ProviderGithub, view.Provider)
}
