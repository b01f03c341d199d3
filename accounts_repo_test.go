package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/go-identity"
)

func TestAccountsRepository_RegisterAndFind(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	account := seedLocalAccount(t, repo, "ada@example.com", "ada", "securePassword1!")

	t.Run("FindByID loads roles", func(t *testing.T) {
		found, err := repo.Accounts().FindByID(ctx, account.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", found.Email)
		require.Len(t, found.Roles, 1)
		assert.Equal(t, identity.DefaultRoleUser, found.Roles[0].Name)
	})

	t.Run("FindByEmail is case insensitive", func(t *testing.T) {
		found, err := repo.Accounts().FindByEmail(ctx, "ADA@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
	})

	t.Run("FindByUsernameOrEmail resolves both", func(t *testing.T) {
		byUsername, err := repo.Accounts().FindByUsernameOrEmail(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, account.ID, byUsername.ID)

		byEmail, err := repo.Accounts().FindByUsernameOrEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, account.ID, byEmail.ID)
	})

	t.Run("missing account reports not found", func(t *testing.T) {
		_, err := repo.Accounts().FindByEmail(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, identity.ErrAccountNotFound)

		_, err = repo.Accounts().FindByUsernameOrEmail(ctx, "nobody")
		require.Error(t, err)
		assert.ErrorIs(t, err, identity.ErrAccountNotFound)
	})
}

func TestAccountsRepository_Exists(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedLocalAccount(t, repo, "ada@example.com", "ada", "securePassword1!")

	taken, err := repo.Accounts().ExistsByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.Accounts().ExistsByEmail(ctx, "free@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.Accounts().ExistsByUsername(ctx, "ADA")
	require.NoError(t, err)
	assert.True(t, taken, "username existence check should be case insensitive")

	taken, err = repo.Accounts().ExistsByUsername(ctx, "grace")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestAccountsRepository_UniqueViolations(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedLocalAccount(t, repo, "ada@example.com", "ada", "securePassword1!")

	_, err := repo.Accounts().Register(ctx, &identity.Account{
		Email:    "ada@example.com",
		Username: "ada2",
		Provider: identity.ProviderLocal,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrEmailTaken)

	_, err = repo.Accounts().Register(ctx, &identity.Account{
		Email:    "ada2@example.com",
		Username: "ada",
		Provider: identity.ProviderLocal,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrUsernameTaken)
}

func TestAccountsRepository_FindByProviderID(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	created, err := repo.Accounts().Register(ctx, &identity.Account{
		Email:         "octo@example.com",
		Username:      "octo",
		Provider:      identity.ProviderGithub,
		ProviderID:    "583231",
		EmailVerified: true,
		Enabled:       true,
	})
	require.NoError(t, err)

	found, err := repo.Accounts().FindByProviderID(ctx, identity.ProviderGithub, "583231")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.Accounts().FindByProviderID(ctx, identity.ProviderGoogle, "583231")
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestAccountsRepository_TrackSuccessfulLogin(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	account := seedLocalAccount(t, repo, "ada@example.com", "ada", "securePassword1!")
	require.Nil(t, account.LastLoginAt)

	require.NoError(t, repo.Accounts().TrackSuccessfulLogin(ctx, account))
	require.NotNil(t, account.LastLoginAt)

	found, err := repo.Accounts().FindByID(ctx, account.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, found.LastLoginAt)
}
