package identity

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// usernameRetryCap bounds the suffix search when deriving a username from
// an email local part. Past this many collisions we give up rather than
// scan indefinitely.
const usernameRetryCap = 10

// AccountResolver maps a normalized provider identity onto a persisted
// account: matching an existing account by email, or provisioning a new
// one with a derived username and the default role.
type AccountResolver struct {
	repo   RepositoryManager
	logger Logger
}

type ResolverOption func(*AccountResolver)

func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *AccountResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewAccountResolver(repo RepositoryManager, opts ...ResolverOption) *AccountResolver {
	resolver := &AccountResolver{
		repo:   repo,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(resolver)
		}
	}
	return resolver
}

// ResolveOrCreate returns the account owning the identity's email address,
// creating one when none exists.
//
// An existing local-credential account blocks external sign-in under the
// same email: we refuse rather than silently link, since the provider has
// not proven ownership of the local account.
func (r *AccountResolver) ResolveOrCreate(ctx context.Context, provider Provider, ident *ProviderIdentity) (*Account, error) {
	if !provider.IsExternal() {
		return nil, ErrUnsupportedProvider.Clone().WithMetadata(map[string]any{
			"provider": string(provider),
		})
	}

	account, err := r.repo.Accounts().FindByEmail(ctx, ident.Email)
	if err == nil {
		return r.refreshExisting(ctx, provider, ident, account)
	}

	if !goerrors.IsNotFound(err) && !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return r.provision(ctx, provider, ident)
}

// refreshExisting reconciles a returning identity against the account that
// already owns the email.
func (r *AccountResolver) refreshExisting(ctx context.Context, provider Provider, ident *ProviderIdentity, account *Account) (*Account, error) {
	if !account.Provider.IsExternal() {
		return nil, ErrProviderConflict.Clone().WithMetadata(map[string]any{
			"email":    ident.Email,
			"provider": string(provider),
			"existing": string(account.Provider),
		})
	}

	if ident.AvatarURL != "" && ident.AvatarURL != account.AvatarURL {
		account.AvatarURL = ident.AvatarURL
		if _, err := r.repo.Accounts().Update(ctx, &Account{
			ID:        account.ID,
			AvatarURL: ident.AvatarURL,
		}, repository.UpdateByID(account.ID.String())); err != nil {
			r.logger.Warn("failed to refresh avatar for account %s: %s", account.ID, err)
		}
	}

	return account, nil
}

// provision creates a brand new account for the identity, attaching the
// default role. Username candidates are the email local part and its
// integer-suffixed variants: alice, alice1, alice2, ... The exists check
// and the insert are not atomic, so a concurrent registrant can grab a
// candidate in between; the store's unique constraint is the final arbiter
// and a collision on save moves on to the next candidate.
func (r *AccountResolver) provision(ctx context.Context, provider Provider, ident *ProviderIdentity) (*Account, error) {
	role, err := r.repo.Roles().GetByName(ctx, DefaultRoleUser)
	if err != nil {
		return nil, err
	}

	base := usernameBase(ident.Email)

	for i := 0; i <= usernameRetryCap; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}

		taken, err := r.repo.Accounts().ExistsByUsername(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		account, err := r.insertAccount(ctx, provider, ident, candidate, role)
		if err == nil {
			r.logger.Info("provisioned account %s (%s) from %s identity",
				account.ID, account.Username, provider)
			return account, nil
		}
		if goerrors.Is(err, ErrUsernameTaken) {
			r.logger.Debug("username %q taken concurrently, trying next candidate", candidate)
			continue
		}
		return nil, err
	}

	return nil, ErrUsernameConflict.Clone().WithMetadata(map[string]any{
		"base": base,
	})
}

func (r *AccountResolver) insertAccount(ctx context.Context, provider Provider, ident *ProviderIdentity, username string, role *Role) (*Account, error) {
	account := &Account{
		Email:         ident.Email,
		Username:      username,
		FirstName:     ident.FirstName,
		LastName:      ident.LastName,
		AvatarURL:     ident.AvatarURL,
		Provider:      provider,
		ProviderID:    ident.ExternalID,
		EmailVerified: true,
		Enabled:       true,
	}

	if id, err := hashid.NewUUID(ident.Email); err == nil {
		account.ID = id
	} else {
		account.ID = uuid.New()
	}

	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := r.repo.Accounts().RegisterTx(ctx, tx, account)
		if err != nil {
			return err
		}
		account = created

		_, err = tx.NewInsert().Model(&AccountRole{
			AccountID: account.ID,
			RoleID:    role.ID,
		}).Exec(ctx)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account provisioning transaction failed")
	}

	account.Roles = []*Role{role}
	return account, nil
}

// usernameBase is the lowercased email local part.
func usernameBase(email string) string {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}
	return strings.ToLower(strings.TrimSpace(base))
}
