package identity

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens manages the server side of the refresh token lifecycle.
// An account has at most one live refresh token: issuing a new one revokes
// every previous token for that account in the same transaction.
type RefreshTokens interface {
	Issue(ctx context.Context, accountID uuid.UUID) (*RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Verify(ctx context.Context, record *RefreshToken) (*Account, error)
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokens struct {
	db     *bun.DB
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

var _ RefreshTokens = (*refreshTokens)(nil)

type RefreshTokensOption func(*refreshTokens)

// WithRefreshClock overrides the time source, useful for expiry tests.
func WithRefreshClock(now func() time.Time) RefreshTokensOption {
	return func(r *refreshTokens) {
		if now != nil {
			r.now = now
		}
	}
}

func WithRefreshLogger(logger Logger) RefreshTokensOption {
	return func(r *refreshTokens) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRefreshTokenStore(db *bun.DB, ttl time.Duration, opts ...RefreshTokensOption) RefreshTokens {
	store := &refreshTokens{
		db:     db,
		ttl:    ttl,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Issue revokes every live token for the account and inserts a fresh one,
// atomically. The transaction write-locks the owning account row before
// touching the token table: revoking zero live rows locks nothing, so two
// racing issuers could otherwise both see "no live token" and both insert
// one. Serializing on the account row keeps the invariant without locking
// the whole table.
func (r *refreshTokens) Issue(ctx context.Context, accountID uuid.UUID) (*RefreshToken, error) {
	record := &RefreshToken{
		ID:        uuid.New(),
		Token:     uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: r.now().Add(r.ttl),
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Touch-update the account row: acquires a row lock on MVCC stores
		// and doubles as the existence check.
		res, err := tx.NewUpdate().
			Model((*Account)(nil)).
			Set("id = id").
			Where("?TableAlias.id = ?", accountID).
			Exec(ctx)
		if err != nil {
			return err
		}
		matched, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if matched == 0 {
			return ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"account_id": accountID.String(),
			})
		}

		if _, err := tx.NewUpdate().
			Model((*RefreshToken)(nil)).
			Set("revoked = ?", true).
			Where("?TableAlias.account_id = ?", accountID).
			Where("?TableAlias.revoked = ?", false).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	})

	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue refresh token")
	}

	return record, nil
}

// FindByToken looks up a refresh token by its opaque string. Unknown tokens
// report the same error as structurally invalid ones so probing reveals
// nothing.
func (r *refreshTokens) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	return record, nil
}

// Verify checks the token's lifecycle state and returns the owning account
// with roles and permissions loaded. A token is expired the instant its
// expiry is reached; expired rows are deleted on sight.
func (r *refreshTokens) Verify(ctx context.Context, record *RefreshToken) (*Account, error) {
	if record == nil {
		return nil, ErrRefreshTokenInvalid
	}

	if !r.now().Before(record.ExpiresAt) {
		if _, err := r.db.NewDelete().
			Model((*RefreshToken)(nil)).
			Where("?TableAlias.id = ?", record.ID).
			Exec(ctx); err != nil {
			r.logger.Warn("failed to delete expired refresh token %s: %s", record.ID, err)
		}
		return nil, ErrTokenExpired.Clone().WithMetadata(map[string]any{
			"expired_at": record.ExpiresAt,
		})
	}

	if record.Revoked {
		return nil, ErrTokenRevoked
	}

	account := &Account{}
	err := r.db.NewSelect().
		Model(account).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.id = ?", record.AccountID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"account_id": record.AccountID.String(),
			})
		}
		return nil, err
	}

	return account, nil
}

// RevokeAllForAccount marks every live token for the account as revoked.
// Calling it when no live tokens exist is a no-op.
func (r *refreshTokens) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("?TableAlias.account_id = ?", accountID).
		Where("?TableAlias.revoked = ?", false).
		Exec(ctx)
	return err
}

// PurgeExpired deletes every token whose expiry is strictly before now and
// returns the number of rows removed. Meant to be run from a periodic job.
func (r *refreshTokens) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("?TableAlias.expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
