package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"talent-ledger/internal/database"
)

// Account roles. Issuers mint credentials, oracles adjust levels,
// admins govern platform config; members are companies and candidates.
const (
	RoleMember = "MEMBER"
	RoleIssuer = "ISSUER"
	RoleOracle = "ORACLE"
	RoleAdmin  = "ADMIN"
)

type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	Balance      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AccountRepository interface {
	Create(ctx context.Context, acc Account) error
	FindByID(ctx context.Context, id uuid.UUID) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Deposit credits an account from outside the ledger (treasury/admin).
	Deposit(ctx context.Context, id uuid.UUID, amount int64) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

type PostgresAccountRepository struct {
	db database.DB
}

func NewPostgresAccountRepository(db database.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, acc Account) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, role, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		acc.ID, acc.Email, acc.PasswordHash, acc.Role, acc.Balance, acc.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return r.scanAccount(r.db.QueryRow(ctx, `
SELECT id, email, password_hash, role, balance, created_at, updated_at
FROM accounts WHERE id = $1`, id))
}

func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.scanAccount(r.db.QueryRow(ctx, `
SELECT id, email, password_hash, role, balance, created_at, updated_at
FROM accounts WHERE email = $1`, email))
}

func (r *PostgresAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *PostgresAccountRepository) Deposit(ctx context.Context, id uuid.UUID, amount int64) error {
	n, err := r.db.Exec(ctx, `
UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	n, err := r.db.Exec(ctx, `
UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepository) scanAccount(row database.Row) (Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// debitBalance moves funds out of an account inside a transaction. The
// balance guard makes overdrafts impossible without a separate read.
func debitBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) error {
	n, err := q.Exec(ctx, `
UPDATE accounts SET balance = balance - $2, updated_at = now()
WHERE id = $1 AND balance >= $2`, id, amount)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func creditBalance(ctx context.Context, q database.Querier, id uuid.UUID, amount int64) error {
	n, err := q.Exec(ctx, `
UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
