package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultRoleUser is the role every newly registered account starts with.
const DefaultRoleUser = "USER"

// defaultRoles are seeded on startup so account creation can always attach
// a role without racing migrations.
var defaultRoles = []struct {
	name        string
	description string
}{
	{"USER", "Default role for registered accounts"},
	{"MODERATOR", "Content moderation role"},
	{"ADMIN", "Administrative role"},
}

// Roles is the persistence surface for role records.
type Roles interface {
	repository.Repository[*Role]

	GetByName(ctx context.Context, name string) (*Role, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)
	EnsureDefaults(ctx context.Context) error
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string { return "name" },
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

func (r *roles) GetByName(ctx context.Context, name string) (*Role, error) {
	return r.GetByNameTx(ctx, r.db, name)
}

func (r *roles) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Relation("Permissions").
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRoleNotFound.Clone().WithMetadata(map[string]any{
				"name": name,
			})
		}
		return nil, err
	}

	return record, nil
}

// EnsureDefaults creates any of the default roles that do not exist yet.
// Safe to run on every startup.
func (r *roles) EnsureDefaults(ctx context.Context) error {
	for _, def := range defaultRoles {
		exists, err := r.db.NewSelect().
			Model((*Role)(nil)).
			Where("?TableAlias.name = ?", def.name).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		record := &Role{
			ID:          uuid.New(),
			Name:        def.name,
			Description: def.description,
		}
		if _, err := r.Repository.Create(ctx, record); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}

	return nil
}
