package identity_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/veridia/go-identity"

	_ "github.com/mattn/go-sqlite3"
)

const testSchema = `
CREATE TABLE accounts (
	id TEXT NOT NULL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT,
	first_name TEXT,
	last_name TEXT,
	avatar_url TEXT,
	provider TEXT NOT NULL,
	provider_id TEXT,
	is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	last_login_at TIMESTAMP NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP
);

CREATE TABLE roles (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT
);

CREATE TABLE permissions (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE account_roles (
	account_id TEXT NOT NULL,
	role_id TEXT NOT NULL,
	PRIMARY KEY (account_id, role_id),
	FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE,
	FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE CASCADE
);

CREATE TABLE role_permissions (
	role_id TEXT NOT NULL,
	permission_id TEXT NOT NULL,
	PRIMARY KEY (role_id, permission_id),
	FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE CASCADE,
	FOREIGN KEY (permission_id) REFERENCES permissions (id) ON DELETE CASCADE
);

CREATE TABLE refresh_tokens (
	id TEXT NOT NULL PRIMARY KEY,
	token TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	revoked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE
);
`

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	_, err = bunDB.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

func setupRepoManager(t *testing.T, opts ...identity.ManagerOption) identity.RepositoryManager {
	t.Helper()

	repo := identity.NewRepositoryManager(setupTestDB(t), opts...)
	require.NoError(t, repo.Roles().EnsureDefaults(context.Background()))

	return repo
}

func newTestConfig() *identity.SimpleConfig {
	return &identity.SimpleConfig{
		SigningKey:     "test-signing-key-for-unit-tests",
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "go-identity-test",
		Audience:       []string{"test:audience"},
	}
}

func seedLocalAccount(t *testing.T, repo identity.RepositoryManager, email, username, password string) *identity.Account {
	t.Helper()
	ctx := context.Background()

	hash, err := identity.HashPassword(password)
	require.NoError(t, err)

	role, err := repo.Roles().GetByName(ctx, identity.DefaultRoleUser)
	require.NoError(t, err)

	account, err := repo.Accounts().Register(ctx, &identity.Account{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Provider:     identity.ProviderLocal,
		Enabled:      true,
	})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&identity.AccountRole{
			AccountID: account.ID,
			RoleID:    role.ID,
		}).Exec(ctx)
		return err
	})
	require.NoError(t, err)

	account.Roles = []*identity.Role{role}
	return account
}
