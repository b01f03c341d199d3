package identity

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Session is the credential bundle handed to a client after a successful
// login, registration, or refresh.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	Account      *AccountView `json:"account,omitempty"`
}

// LoginRequest carries local credentials. Identifier accepts a username or
// an email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

// RegisterRequest carries the fields needed to create a local account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		// bcrypt reads at most 72 bytes of input.
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
	)
}

// SessionOrchestrator drives the credential flows end to end: local login
// and registration, external provider sign-in, token refresh, and logout.
type SessionOrchestrator struct {
	repo     RepositoryManager
	tokens   TokenService
	refresh  RefreshTokens
	resolver *AccountResolver
	hasher   PasswordHasher
	verifier CredentialVerifier
	logger   Logger
}

type OrchestratorOption func(*SessionOrchestrator)

func WithOrchestratorLogger(logger Logger) OrchestratorOption {
	return func(o *SessionOrchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithPasswordHasher(hasher PasswordHasher) OrchestratorOption {
	return func(o *SessionOrchestrator) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

// WithCredentialVerifier replaces the default hash-comparison verifier.
func WithCredentialVerifier(verifier CredentialVerifier) OrchestratorOption {
	return func(o *SessionOrchestrator) {
		if verifier != nil {
			o.verifier = verifier
		}
	}
}

func NewSessionOrchestrator(repo RepositoryManager, tokens TokenService, opts ...OrchestratorOption) *SessionOrchestrator {
	orch := &SessionOrchestrator{
		repo:    repo,
		tokens:  tokens,
		refresh: repo.RefreshTokens(),
		hasher:  NewPasswordHasher(),
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(orch)
		}
	}

	if orch.verifier == nil {
		orch.verifier = NewCredentialVerifier(orch.hasher)
	}

	orch.resolver = NewAccountResolver(repo, WithResolverLogger(orch.logger))

	return orch
}

// Login authenticates local credentials and opens a session. Unknown
// identifiers and wrong passwords both collapse to ErrInvalidCredentials;
// disabled and locked are reported distinctly, before credential
// verification, since those accounts are known to exist.
func (o *SessionOrchestrator) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	account, err := o.repo.Accounts().FindByUsernameOrEmail(ctx, req.Identifier)
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.Enabled {
		return nil, ErrAccountDisabled
	}

	if account.Locked {
		return nil, ErrAccountLocked
	}

	if err := o.verifier.VerifyCredentials(ctx, account, req.Password); err != nil {
		return nil, err
	}

	if err := o.repo.Accounts().TrackSuccessfulLogin(ctx, account); err != nil {
		o.logger.Warn("failed to track successful login for %s: %s", account.ID, err)
	}

	return o.issueSession(ctx, account)
}

// Register creates a local account and opens a session for it. The new
// account starts unverified but enabled, with the default role attached.
func (o *SessionOrchestrator) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	if taken, err := o.repo.Accounts().ExistsByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken.Clone().WithMetadata(map[string]any{"email": req.Email})
	}

	if taken, err := o.repo.Accounts().ExistsByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken.Clone().WithMetadata(map[string]any{"username": req.Username})
	}

	hash, err := o.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role, err := o.repo.Roles().GetByName(ctx, DefaultRoleUser)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Provider:     ProviderLocal,
		Enabled:      true,
	}

	if id, err := hashid.NewUUID(req.Email); err == nil {
		account.ID = id
	} else {
		account.ID = uuid.New()
	}

	err = o.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := o.repo.Accounts().RegisterTx(ctx, tx, account)
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
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	account.Roles = []*Role{role}

	// Same verification path a subsequent login takes, proving the stored
	// hash actually matches before a session is handed out.
	if err := o.verifier.VerifyCredentials(ctx, account, req.Password); err != nil {
		return nil, err
	}

	o.logger.Info("registered local account %s (%s)", account.ID, account.Username)

	return o.issueSession(ctx, account)
}

// LoginWithProvider signs in an external identity, provisioning the account
// on first contact, and opens a session.
func (o *SessionOrchestrator) LoginWithProvider(ctx context.Context, provider Provider, attrs map[string]any) (*Session, error) {
	ident, err := NormalizeProviderIdentity(provider, attrs)
	if err != nil {
		return nil, err
	}

	account, err := o.resolver.ResolveOrCreate(ctx, provider, ident)
	if err != nil {
		return nil, err
	}

	if !account.Enabled {
		return nil, ErrAccountDisabled
	}

	if account.Locked {
		return nil, ErrAccountLocked
	}

	if err := o.repo.Accounts().TrackSuccessfulLogin(ctx, account); err != nil {
		o.logger.Warn("failed to track successful login for %s: %s", account.ID, err)
	}

	return o.issueSession(ctx, account)
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token itself is not rotated: the same string stays valid until
// it expires, is revoked, or a new one is issued.
func (o *SessionOrchestrator) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	record, err := o.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := o.refresh.Verify(ctx, record)
	if err != nil {
		return nil, err
	}

	access, expiresIn, err := o.tokens.Generate(account.ID.String(), account.Authorities())
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: record.Token,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		Account:      account.View(),
	}, nil
}

// Logout revokes every live refresh token for the account. Access tokens
// already in flight stay valid until they expire. Idempotent.
func (o *SessionOrchestrator) Logout(ctx context.Context, accountID uuid.UUID) error {
	return o.refresh.RevokeAllForAccount(ctx, accountID)
}

func (o *SessionOrchestrator) issueSession(ctx context.Context, account *Account) (*Session, error) {
	access, expiresIn, err := o.tokens.Generate(account.ID.String(), account.Authorities())
	if err != nil {
		return nil, err
	}

	refresh, err := o.refresh.Issue(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		Account:      account.View(),
	}, nil
}
