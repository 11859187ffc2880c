package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"talent-ledger/internal/database"
	"talent-ledger/internal/domain/credential"
)

type CredentialRepository interface {
	Create(ctx context.Context, c credential.Credential) (int64, error)
	FindByID(ctx context.Context, id int64) (credential.Credential, error)
	ListByHolder(ctx context.Context, holder uuid.UUID) ([]credential.Credential, error)
	ListByIDs(ctx context.Context, ids []int64) ([]credential.Credential, error)
	SetLevel(ctx context.Context, id int64, level int) error
	// Deactivate flips is_active off exactly once. It reports false when
	// the credential was already inactive.
	Deactivate(ctx context.Context, id int64) (bool, error)
	AddEndorsement(ctx context.Context, id int64, e credential.Endorsement) error
}

type PostgresCredentialRepository struct {
	db database.DB
}

func NewPostgresCredentialRepository(db database.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{db: db}
}

func (r *PostgresCredentialRepository) Create(ctx context.Context, c credential.Credential) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO credentials (holder, category, subcategory, level, issued_at, expires_at, issuer, is_active, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
RETURNING id`,
		c.Holder, c.Category, c.Subcategory, c.Level, c.IssuedAt, c.ExpiresAt, c.Issuer, c.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresCredentialRepository) FindByID(ctx context.Context, id int64) (credential.Credential, error) {
	var c credential.Credential
	err := r.db.QueryRow(ctx, `
SELECT id, holder, category, subcategory, level, issued_at, expires_at, issuer, is_active, metadata
FROM credentials WHERE id = $1`, id).Scan(
		&c.ID, &c.Holder, &c.Category, &c.Subcategory, &c.Level,
		&c.IssuedAt, &c.ExpiresAt, &c.Issuer, &c.IsActive, &c.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return credential.Credential{}, ErrNotFound
	}
	if err != nil {
		return credential.Credential{}, err
	}

	ends, err := r.listEndorsements(ctx, id)
	if err != nil {
		return credential.Credential{}, err
	}
	c.Endorsements = ends
	return c, nil
}

func (r *PostgresCredentialRepository) ListByHolder(ctx context.Context, holder uuid.UUID) ([]credential.Credential, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, holder, category, subcategory, level, issued_at, expires_at, issuer, is_active, metadata
FROM credentials WHERE holder = $1 ORDER BY id ASC`, holder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (r *PostgresCredentialRepository) ListByIDs(ctx context.Context, ids []int64) ([]credential.Credential, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
SELECT id, holder, category, subcategory, level, issued_at, expires_at, issuer, is_active, metadata
FROM credentials WHERE id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (r *PostgresCredentialRepository) SetLevel(ctx context.Context, id int64, level int) error {
	n, err := r.db.Exec(ctx, `
UPDATE credentials SET level = $2 WHERE id = $1 AND is_active`, id, level)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCredentialRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	n, err := r.db.Exec(ctx, `
UPDATE credentials SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresCredentialRepository) AddEndorsement(ctx context.Context, id int64, e credential.Endorsement) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO credential_endorsements (credential_id, endorser, data, is_active, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		id, e.Endorser, e.Data, e.IsActive, e.CreatedAt)
	return err
}

func (r *PostgresCredentialRepository) listEndorsements(ctx context.Context, id int64) ([]credential.Endorsement, error) {
	rows, err := r.db.Query(ctx, `
SELECT endorser, data, is_active, created_at
FROM credential_endorsements WHERE credential_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]credential.Endorsement, 0)
	for rows.Next() {
		var e credential.Endorsement
		if err := rows.Scan(&e.Endorser, &e.Data, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanCredentials(rows database.Rows) ([]credential.Credential, error) {
	out := make([]credential.Credential, 0)
	for rows.Next() {
		var c credential.Credential
		if err := rows.Scan(
			&c.ID, &c.Holder, &c.Category, &c.Subcategory, &c.Level,
			&c.IssuedAt, &c.ExpiresAt, &c.Issuer, &c.IsActive, &c.Metadata,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
