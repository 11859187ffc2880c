package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-ledger/internal/repository"
)

func newPlatformFixture(t *testing.T) (*Platform, *mockAccountStore, *mockConfigStore, uuid.UUID, uuid.UUID) {
	t.Helper()
	accounts := &mockAccountStore{accounts: make(map[uuid.UUID]repository.Account)}
	config := &mockConfigStore{feeRateBP: 250}

	admin, member := uuid.New(), uuid.New()
	accounts.accounts[admin] = repository.Account{ID: admin, Role: repository.RoleAdmin}
	accounts.accounts[member] = repository.Account{ID: member, Role: repository.RoleMember, Balance: 500}

	uc := NewPlatformUsecase(config, accounts, &mockEventStore{}, zap.NewNop())
	return uc, accounts, config, admin, member
}

func TestSetFeeRate(t *testing.T) {
	uc, _, config, admin, member := newPlatformFixture(t)
	ctx := context.Background()

	if err := uc.SetFeeRate(ctx, admin, 500); err != nil {
		t.Fatalf("set: %v", err)
	}
	if config.feeRateBP != 500 {
		t.Fatalf("rate = %d, want 500", config.feeRateBP)
	}

	if err := uc.SetFeeRate(ctx, admin, 1001); !errors.Is(err, ErrInvalidFeeRate) {
		t.Fatalf("over cap: got %v, want ErrInvalidFeeRate", err)
	}
	if err := uc.SetFeeRate(ctx, admin, -1); !errors.Is(err, ErrInvalidFeeRate) {
		t.Fatalf("negative: got %v, want ErrInvalidFeeRate", err)
	}
	if err := uc.SetFeeRate(ctx, member, 100); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("member caller: got %v, want ErrNotAuthorized", err)
	}
	if err := uc.SetFeeRate(ctx, uuid.New(), 100); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown caller: got %v, want ErrUnauthorized", err)
	}

	// Zero disables the platform cut entirely.
	if err := uc.SetFeeRate(ctx, admin, 0); err != nil {
		t.Fatalf("zero rate: %v", err)
	}
}

func TestDeposit(t *testing.T) {
	uc, accounts, _, admin, member := newPlatformFixture(t)
	ctx := context.Background()

	if err := uc.Deposit(ctx, admin, member, 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := accounts.accounts[member].Balance; got != 1500 {
		t.Fatalf("balance = %d, want 1500", got)
	}

	if err := uc.Deposit(ctx, admin, member, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero amount: got %v, want ErrInvalidInput", err)
	}
	if err := uc.Deposit(ctx, member, member, 100); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("self deposit by member: got %v, want ErrNotAuthorized", err)
	}
	if err := uc.Deposit(ctx, admin, uuid.New(), 100); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("unknown target: got %v, want ErrAccountNotFound", err)
	}
}

func TestSetRole(t *testing.T) {
	uc, accounts, _, admin, member := newPlatformFixture(t)
	ctx := context.Background()

	if err := uc.SetRole(ctx, admin, member, repository.RoleIssuer); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if got := accounts.accounts[member].Role; got != repository.RoleIssuer {
		t.Fatalf("role = %s, want ISSUER", got)
	}

	if err := uc.SetRole(ctx, admin, member, "SUPERUSER"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bogus role: got %v, want ErrInvalidInput", err)
	}
	if err := uc.SetRole(ctx, member, member, repository.RoleAdmin); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("self promotion: got %v, want ErrNotAuthorized", err)
	}
	if err := uc.SetRole(ctx, admin, uuid.New(), repository.RoleOracle); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("unknown account: got %v, want ErrAccountNotFound", err)
	}
}

func TestBalanceVisibility(t *testing.T) {
	uc, _, _, admin, member := newPlatformFixture(t)
	ctx := context.Background()

	if got, err := uc.Balance(ctx, member, member); err != nil || got != 500 {
		t.Fatalf("own balance = %d, %v; want 500, nil", got, err)
	}
	if got, err := uc.Balance(ctx, admin, member); err != nil || got != 500 {
		t.Fatalf("admin view = %d, %v; want 500, nil", got, err)
	}
	if _, err := uc.Balance(ctx, member, admin); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("foreign balance: got %v, want ErrNotAuthorized", err)
	}
}
