package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/go-identity"
)

func TestNormalizeProviderIdentity_Google(t *testing.T) {
	ident, err := identity.NormalizeProviderIdentity(identity.ProviderGoogle, map[string]any{
		"sub":         "10402",
		"email":       "Ada@Example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"picture":     "https://lh3.example.com/ada.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "10402", ident.ExternalID)
	assert.Equal(t, "ada@example.com", ident.Email, "email should be lowercased")
	assert.Equal(t, "Ada", ident.FirstName)
	assert.Equal(t, "Lovelace", ident.LastName)
	assert.Equal(t, "https://lh3.example.com/ada.png", ident.AvatarURL)
}

func TestNormalizeProviderIdentity_Github(t *testing.T) {
	t.Run("splits display name at first space", func(t *testing.T) {
		ident, err := identity.NormalizeProviderIdentity(identity.ProviderGithub, map[string]any{
			"id":         float64(583231),
			"name":       "Ada Augusta Lovelace",
			"email":      "ada@example.com",
			"avatar_url": "https://avatars.example.com/u/583231",
		})
		require.NoError(t, err)

		assert.Equal(t, "583231", ident.ExternalID, "numeric id should be stringified")
		assert.Equal(t, "Ada", ident.FirstName)
		assert.Equal(t, "Augusta Lovelace", ident.LastName)
	})

	t.Run("single token name has empty last name", func(t *testing.T) {
		ident, err := identity.NormalizeProviderIdentity(identity.ProviderGithub, map[string]any{
			"id":    float64(1),
			"name":  "octocat",
			"email": "octo@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, "octocat", ident.FirstName)
		assert.Empty(t, ident.LastName)
	})

	t.Run("missing name yields empty names", func(t *testing.T) {
		ident, err := identity.NormalizeProviderIdentity(identity.ProviderGithub, map[string]any{
			"id":    "42",
			"email": "anon@example.com",
		})
		require.NoError(t, err)

		assert.Empty(t, ident.FirstName)
		assert.Empty(t, ident.LastName)
	})
}

func TestNormalizeProviderIdentity_Facebook(t *testing.T) {
	ident, err := identity.NormalizeProviderIdentity(identity.ProviderFacebook, map[string]any{
		"id":         "9000",
		"email":      "grace@example.com",
		"first_name": "Grace",
		"last_name":  "Hopper",
		"picture": map[string]any{
			"data": map[string]any{
				"url": "https://graph.example.com/9000/picture",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", ident.ExternalID)
	assert.Equal(t, "Grace", ident.FirstName)
	assert.Equal(t, "Hopper", ident.LastName)
	assert.Equal(t, "https://graph.example.com/9000/picture", ident.AvatarURL)
}

func TestNormalizeProviderIdentity_FacebookMissingPicture(t *testing.T) {
	ident, err := identity.NormalizeProviderIdentity(identity.ProviderFacebook, map[string]any{
		"id":    "9000",
		"email": "grace@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, ident.AvatarURL)
}

func TestNormalizeProviderIdentity_UnsupportedProvider(t *testing.T) {
	_, err := identity.NormalizeProviderIdentity(identity.Provider("myspace"), map[string]any{
		"email": "tom@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrUnsupportedProvider)
}

func TestNormalizeProviderIdentity_MissingEmail(t *testing.T) {
	for _, attrs := range []map[string]any{
		{"sub": "1"},
		{"sub": "1", "email": "   "},
	} {
		_, err := identity.NormalizeProviderIdentity(identity.ProviderGoogle, attrs)
		require.Error(t, err)
		assert.ErrorIs(t, err, identity.ErrMissingEmail)
	}
}
