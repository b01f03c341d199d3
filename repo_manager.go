package identity

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	Roles() Roles
	RefreshTokens() RefreshTokens
}

type mngr struct {
	db            *bun.DB
	accounts      Accounts
	roles         Roles
	refreshTokens RefreshTokens
	refreshTTL    time.Duration
	logger        Logger
}

type ManagerOption func(*mngr)

// WithRefreshTokenTTL sets the lifetime of issued refresh tokens.
func WithRefreshTokenTTL(ttl time.Duration) ManagerOption {
	return func(m *mngr) {
		if ttl > 0 {
			m.refreshTTL = ttl
		}
	}
}

func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *mngr) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewRepositoryManager(db *bun.DB, opts ...ManagerOption) RepositoryManager {
	RegisterModels(db)

	m := &mngr{
		db:         db,
		refreshTTL: 7 * 24 * time.Hour,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.accounts = NewAccountsRepository(db)
	m.roles = NewRolesRepository(db)
	m.refreshTokens = NewRefreshTokenStore(db, m.refreshTTL, WithRefreshLogger(m.logger))

	return m
}

func (m *mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized", errors.CategoryInternal)
	}

	if m.roles == nil {
		return errors.New("repository roles should be initialized", errors.CategoryInternal)
	}

	if m.refreshTokens == nil {
		return errors.New("repository refreshTokens should be initialized", errors.CategoryInternal)
	}

	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *mngr) Accounts() Accounts {
	return m.accounts
}

func (m *mngr) Roles() Roles {
	return m.roles
}

func (m *mngr) RefreshTokens() RefreshTokens {
	return m.refreshTokens
}
