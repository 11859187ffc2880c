package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-ledger/internal/domain/credential"
	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/repository"
)

type MintInput struct {
	Holder      uuid.UUID
	Category    string
	Subcategory string
	Level       int
	ExpiresAt   *time.Time
	Metadata    string
}

type CredentialUsecase interface {
	Mint(ctx context.Context, caller uuid.UUID, in MintInput) (credential.Credential, error)
	UpdateLevel(ctx context.Context, caller uuid.UUID, id int64, newLevel int, evidence string) error
	Revoke(ctx context.Context, caller uuid.UUID, id int64, reason string) error
	Endorse(ctx context.Context, caller uuid.UUID, id int64, data string) error
	Get(ctx context.Context, id int64) (credential.Credential, error)
	ListByHolder(ctx context.Context, holder uuid.UUID) ([]credential.Credential, error)
	IsActive(ctx context.Context, id int64) (bool, error)
	OwnerOf(ctx context.Context, id int64) (uuid.UUID, error)
}

type Credentials struct {
	creds    repository.CredentialRepository
	accounts repository.AccountRepository
	events   repository.EventRepository
	logger   *zap.Logger

	now func() time.Time
}

func NewCredentialUsecase(
	creds repository.CredentialRepository,
	accounts repository.AccountRepository,
	events repository.EventRepository,
	logger *zap.Logger,
) *Credentials {
	return &Credentials{
		creds:    creds,
		accounts: accounts,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *Credentials) Mint(ctx context.Context, caller uuid.UUID, in MintInput) (credential.Credential, error) {
	if !credential.ValidLevel(in.Level) {
		return credential.Credential{}, ErrInvalidLevel
	}
	if strings.TrimSpace(in.Category) == "" {
		return credential.Credential{}, ErrEmptyCategory
	}
	if in.Holder == uuid.Nil {
		return credential.Credential{}, ErrInvalidInput
	}

	if err := u.requireRole(ctx, caller, repository.RoleIssuer, repository.RoleAdmin); err != nil {
		return credential.Credential{}, err
	}

	if _, err := u.accounts.FindByID(ctx, in.Holder); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return credential.Credential{}, ErrAccountNotFound
		}
		return credential.Credential{}, ErrInternal
	}

	c := credential.Credential{
		Holder:      in.Holder,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Level:       in.Level,
		IssuedAt:    u.now().UTC(),
		ExpiresAt:   in.ExpiresAt,
		Issuer:      caller,
		IsActive:    true,
		Metadata:    in.Metadata,
	}

	id, err := u.creds.Create(ctx, c)
	if err != nil {
		u.logger.Error("credential mint failed", zap.Error(err))
		return credential.Credential{}, ErrInternal
	}
	c.ID = id

	u.append(ctx, event.New(event.TypeCredentialMinted, caller, map[string]any{
		"holder":   in.Holder.String(),
		"category": c.Category,
		"level":    c.Level,
	}).WithCredential(id))

	return c, nil
}

func (u *Credentials) UpdateLevel(ctx context.Context, caller uuid.UUID, id int64, newLevel int, evidence string) error {
	if !credential.ValidLevel(newLevel) {
		return ErrInvalidLevel
	}

	if err := u.requireRole(ctx, caller, repository.RoleOracle); err != nil {
		return err
	}

	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return ErrInternal
	}
	if !c.IsActive {
		return ErrCredentialNotFound
	}

	if err := u.creds.SetLevel(ctx, id, newLevel); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return ErrInternal
	}

	u.append(ctx, event.New(event.TypeCredentialLevelSet, caller, map[string]any{
		"old_level": c.Level,
		"new_level": newLevel,
		"evidence":  evidence,
	}).WithCredential(id))

	return nil
}

func (u *Credentials) Revoke(ctx context.Context, caller uuid.UUID, id int64, reason string) error {
	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return ErrInternal
	}

	// The minting issuer may revoke their own issuance; anyone else
	// needs the platform admin role.
	if c.Issuer != caller {
		if err := u.requireRole(ctx, caller, repository.RoleAdmin); err != nil {
			return err
		}
	}

	ok, err := u.creds.Deactivate(ctx, id)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrAlreadyRevoked
	}

	u.append(ctx, event.New(event.TypeCredentialRevoked, caller, map[string]any{
		"reason": reason,
	}).WithCredential(id))

	return nil
}

func (u *Credentials) Endorse(ctx context.Context, caller uuid.UUID, id int64, data string) error {
	if caller == uuid.Nil {
		return ErrUnauthorized
	}

	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return ErrInternal
	}
	if c.Holder == caller {
		return ErrSelfEndorsement
	}
	if !c.IsActive {
		return ErrCredentialNotFound
	}

	e := credential.Endorsement{
		Endorser:  caller,
		Data:      data,
		IsActive:  true,
		CreatedAt: u.now().UTC(),
	}
	if err := u.creds.AddEndorsement(ctx, id, e); err != nil {
		return ErrInternal
	}

	u.append(ctx, event.New(event.TypeCredentialEndorsed, caller, nil).WithCredential(id))
	return nil
}

func (u *Credentials) Get(ctx context.Context, id int64) (credential.Credential, error) {
	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return credential.Credential{}, ErrCredentialNotFound
		}
		return credential.Credential{}, ErrInternal
	}
	return c, nil
}

func (u *Credentials) ListByHolder(ctx context.Context, holder uuid.UUID) ([]credential.Credential, error) {
	out, err := u.creds.ListByHolder(ctx, holder)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Credentials) IsActive(ctx context.Context, id int64) (bool, error) {
	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrCredentialNotFound
		}
		return false, ErrInternal
	}
	return c.Usable(u.now()), nil
}

func (u *Credentials) OwnerOf(ctx context.Context, id int64) (uuid.UUID, error) {
	c, err := u.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, ErrCredentialNotFound
		}
		return uuid.Nil, ErrInternal
	}
	return c.Holder, nil
}

func (u *Credentials) requireRole(ctx context.Context, caller uuid.UUID, roles ...string) error {
	if caller == uuid.Nil {
		return ErrUnauthorized
	}
	acc, err := u.accounts.FindByID(ctx, caller)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return ErrInternal
	}
	for _, r := range roles {
		if acc.Role == r {
			return nil
		}
	}
	return ErrNotAuthorized
}

// append records an audit event. The state change already committed, so
// a failing append is logged loudly rather than surfaced to the caller.
func (u *Credentials) append(ctx context.Context, e event.Event) {
	if err := u.events.Append(ctx, e); err != nil {
		u.logger.Error("audit event append failed",
			zap.String("event_type", string(e.Type)), zap.Error(err))
	}
}
