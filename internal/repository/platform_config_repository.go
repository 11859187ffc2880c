package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"talent-ledger/internal/database"
)

const feeRateKey = "fee_rate_bp"

// PlatformConfigRepository holds governance-owned settings. Only the
// fee rate lives here today; pools snapshot it at creation so changes
// never reach in-flight pools.
type PlatformConfigRepository interface {
	FeeRateBP(ctx context.Context) (int, error)
	SetFeeRateBP(ctx context.Context, rateBP int) error
}

type PostgresPlatformConfigRepository struct {
	db database.DB
}

func NewPostgresPlatformConfigRepository(db database.DB) *PostgresPlatformConfigRepository {
	return &PostgresPlatformConfigRepository{db: db}
}

func (r *PostgresPlatformConfigRepository) FeeRateBP(ctx context.Context) (int, error) {
	var raw string
	err := r.db.QueryRow(ctx, `SELECT value FROM platform_config WHERE key = $1`, feeRateKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func (r *PostgresPlatformConfigRepository) SetFeeRateBP(ctx context.Context, rateBP int) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO platform_config (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		feeRateKey, strconv.Itoa(rateBP))
	return err
}
