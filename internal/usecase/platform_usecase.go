package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-ledger/internal/domain/escrow"
	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/repository"
)

type PlatformUsecase interface {
	FeeRate(ctx context.Context) (int, error)
	// SetFeeRate changes the platform fee rate for pools created from now
	// on. Existing pools keep their snapshotted rate.
	SetFeeRate(ctx context.Context, caller uuid.UUID, rateBP int) error
	// SetRole grants or revokes an elevated role (ISSUER, ORACLE, ADMIN).
	SetRole(ctx context.Context, caller uuid.UUID, account uuid.UUID, role string) error
	Deposit(ctx context.Context, caller uuid.UUID, account uuid.UUID, amount int64) error
	Balance(ctx context.Context, caller uuid.UUID, account uuid.UUID) (int64, error)
	RecentEvents(ctx context.Context, limit int) ([]event.Event, error)
}

type Platform struct {
	config   repository.PlatformConfigRepository
	accounts repository.AccountRepository
	events   repository.EventRepository
	logger   *zap.Logger
}

func NewPlatformUsecase(
	config repository.PlatformConfigRepository,
	accounts repository.AccountRepository,
	events repository.EventRepository,
	logger *zap.Logger,
) *Platform {
	return &Platform{config: config, accounts: accounts, events: events, logger: logger}
}

func (u *Platform) FeeRate(ctx context.Context) (int, error) {
	rate, err := u.config.FeeRateBP(ctx)
	if err != nil {
		u.logger.Error("fee rate read failed", zap.Error(err))
		return 0, ErrInternal
	}
	return rate, nil
}

func (u *Platform) SetFeeRate(ctx context.Context, caller uuid.UUID, rateBP int) error {
	if rateBP < 0 || rateBP > escrow.MaxFeeRateBP {
		return ErrInvalidFeeRate
	}
	if err := u.requireAdmin(ctx, caller); err != nil {
		return err
	}

	old, err := u.config.FeeRateBP(ctx)
	if err != nil {
		return ErrInternal
	}
	if err := u.config.SetFeeRateBP(ctx, rateBP); err != nil {
		u.logger.Error("fee rate update failed", zap.Error(err))
		return ErrInternal
	}

	e := event.New(event.TypeFeeRateChanged, caller, map[string]any{
		"old_rate_bp": old,
		"new_rate_bp": rateBP,
	})
	if err := u.events.Append(ctx, e); err != nil {
		u.logger.Error("audit event append failed", zap.Error(err))
	}
	return nil
}

func (u *Platform) SetRole(ctx context.Context, caller uuid.UUID, account uuid.UUID, role string) error {
	switch role {
	case repository.RoleMember, repository.RoleIssuer, repository.RoleOracle, repository.RoleAdmin:
	default:
		return ErrInvalidInput
	}
	if err := u.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := u.accounts.UpdateRole(ctx, account, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		u.logger.Error("role update failed", zap.Error(err))
		return ErrInternal
	}

	e := event.New(event.TypeRoleChanged, caller, map[string]any{
		"account": account.String(),
		"role":    role,
	})
	if err := u.events.Append(ctx, e); err != nil {
		u.logger.Error("audit event append failed", zap.Error(err))
	}
	return nil
}

func (u *Platform) Deposit(ctx context.Context, caller uuid.UUID, account uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidInput
	}
	if err := u.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := u.accounts.Deposit(ctx, account, amount); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		u.logger.Error("deposit failed", zap.Error(err))
		return ErrInternal
	}
	return nil
}

// Balance is visible to the account owner and to admins.
func (u *Platform) Balance(ctx context.Context, caller uuid.UUID, account uuid.UUID) (int64, error) {
	if caller == uuid.Nil {
		return 0, ErrUnauthorized
	}
	if caller != account {
		if err := u.requireAdmin(ctx, caller); err != nil {
			return 0, err
		}
	}
	acc, err := u.accounts.FindByID(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, ErrInternal
	}
	return acc.Balance, nil
}

func (u *Platform) RecentEvents(ctx context.Context, limit int) ([]event.Event, error) {
	out, err := u.events.ListRecent(ctx, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Platform) requireAdmin(ctx context.Context, caller uuid.UUID) error {
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
	if acc.Role != repository.RoleAdmin {
		return ErrNotAuthorized
	}
	return nil
}
