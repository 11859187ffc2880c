package seeder

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"talent-ledger/internal/database"
)

// TreasurySeeder ensures the fee collector account exists. The account
// has no password hash and cannot log in; it only accumulates fees.
type TreasurySeeder struct {
	ID uuid.UUID
}

func (TreasurySeeder) Name() string { return "treasury" }

func (s TreasurySeeder) Run(ctx context.Context, db database.DB) error {
	if s.ID == uuid.Nil {
		return nil
	}
	_, err := db.Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, role, balance)
VALUES ($1, 'treasury@ledger.internal', '', 'MEMBER', 0)
ON CONFLICT (id) DO NOTHING`, s.ID)
	return err
}

// AdminSeeder creates a bootstrap admin from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skipped when either is unset; never overwrites an
// existing account.
type AdminSeeder struct{}

func (AdminSeeder) Name() string { return "admin" }

func (AdminSeeder) Run(ctx context.Context, db database.DB) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, role, balance)
VALUES ($1, $2, $3, 'ADMIN', 0)
ON CONFLICT (email) DO NOTHING`, uuid.New(), email, string(hash))
	return err
}

func Defaults(feeCollector uuid.UUID) []Seeder {
	return []Seeder{
		TreasurySeeder{ID: feeCollector},
		AdminSeeder{},
	}
}
