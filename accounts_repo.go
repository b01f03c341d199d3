package identity

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var trackSuccessfulLoginSQL = `UPDATE "accounts" AS "acc"
SET
	"last_login_at" = ?,
	"updated_at" = ?
WHERE
	("acc"."id" = ?);`

// Accounts is the persistence surface for account records. Read paths that
// feed authorization eagerly load roles and permissions so callers never
// issue follow-up queries per request.
type Accounts interface {
	repository.Repository[*Account]

	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*Account, error)
	FindByProviderID(ctx context.Context, provider Provider, providerID string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)

	TrackSuccessfulLogin(ctx context.Context, account *Account) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                         = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string { return "email" },
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) FindByID(ctx context.Context, id string) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"account_id": id,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}

	return record, nil
}

// FindByUsernameOrEmail resolves a login identifier against the username
// column first, then the email column.
func (a *accounts) FindByUsernameOrEmail(ctx context.Context, identifier string) (*Account, error) {
	identifier = strings.TrimSpace(identifier)

	for _, column := range []string{"username", "email"} {
		record := &Account{}
		err := a.db.NewSelect().
			Model(record).
			Relation("Roles").
			Relation("Roles.Permissions").
			Where("LOWER(?TableAlias."+column+") = LOWER(?)", identifier).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
		"identifier": identifier,
	})
}

func (a *accounts) FindByProviderID(ctx context.Context, provider Provider, providerID string) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.provider_id = ?", providerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"provider":    string(provider),
				"provider_id": providerID,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email)).
		Exists(ctx)
}

func (a *accounts) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("LOWER(?TableAlias.username) = LOWER(?)", strings.TrimSpace(username)).
		Exists(ctx)
}

func (a *accounts) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, account)
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	out, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, mapUniqueViolation(err, record)
		}
		return nil, err
	}
	return out, nil
}

func (a *accounts) TrackSuccessfulLogin(ctx context.Context, account *Account) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, account)
}

func (a *accounts) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error {
	now := time.Now()
	_, err := tx.NewRaw(trackSuccessfulLoginSQL, now, now, account.ID).Exec(ctx)
	if err == nil {
		account.LastLoginAt = &now
	}
	return err
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.Provider == "" {
		record.Provider = ProviderLocal
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	record.Username = strings.TrimSpace(record.Username)
}

// isUniqueViolation detects unique constraint failures across the SQLite
// and Postgres drivers without importing either error type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func mapUniqueViolation(err error, record *Account) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return ErrEmailTaken.Clone().WithMetadata(map[string]any{
			"email": record.Email,
		})
	case strings.Contains(msg, "username"):
		return ErrUsernameTaken.Clone().WithMetadata(map[string]any{
			"username": record.Username,
		})
	default:
		return err
	}
}
