package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"talent-ledger/internal/database"
	"talent-ledger/internal/domain/escrow"
	"talent-ledger/internal/domain/pool"
)

type PoolFilter struct {
	Status  pool.Status
	Company *uuid.UUID
	Limit   int
	Offset  int
}

// PoolRepository persists pools together with their applications; the
// pair is one aggregate and every mutating method is a single atomic
// transaction against it.
type PoolRepository interface {
	// Create escrows the company stake and inserts the pool with its
	// requirements in one transaction.
	Create(ctx context.Context, p pool.Pool) (int64, error)
	FindByID(ctx context.Context, id int64) (pool.Pool, error)
	List(ctx context.Context, f PoolFilter) ([]pool.Pool, error)
	// SetStatus performs a guarded status flip (pause/resume). It reports
	// ErrStaleStatus when the pool is no longer in the from status.
	SetStatus(ctx context.Context, id int64, from, to pool.Status) error
	// ListDue returns ids of ACTIVE pools whose deadline has passed.
	ListDue(ctx context.Context, now time.Time) ([]int64, error)

	CreateApplication(ctx context.Context, a pool.Application) error
	FindApplication(ctx context.Context, poolID int64, candidate uuid.UUID) (pool.Application, error)
	ListApplications(ctx context.Context, poolID int64) ([]pool.Application, error)
	// WithdrawApplication flips a PENDING application to WITHDRAWN and
	// refunds the candidate stake, returning the refunded amount.
	WithdrawApplication(ctx context.Context, poolID int64, candidate uuid.UUID) (int64, error)

	// ApplySettlement commits one terminal transition: the pool row is
	// moved off its expected status (exactly-once guard), applications
	// are updated, and every transfer is credited — all or nothing.
	ApplySettlement(ctx context.Context, s escrow.Settlement) error
}

type PostgresPoolRepository struct {
	db database.DB
}

func NewPostgresPoolRepository(db database.DB) *PostgresPoolRepository {
	return &PostgresPoolRepository{db: db}
}

func (r *PostgresPoolRepository) Create(ctx context.Context, p pool.Pool) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := debitBalance(ctx, tx, p.Company, p.StakeAmount); err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow(ctx, `
INSERT INTO pools (company, title, description, job_type, salary_min, salary_max,
	stake_amount, fee_rate_bp, deadline, created_at, status, location, is_remote)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`,
		p.Company, p.Title, p.Description, p.JobType, p.SalaryMin, p.SalaryMax,
		p.StakeAmount, p.FeeRateBP, p.Deadline, p.CreatedAt, pool.StatusActive,
		p.Location, p.IsRemote,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for i, req := range p.Requirements {
		_, err := tx.Exec(ctx, `
INSERT INTO pool_requirements (pool_id, position, category, minimum_level)
VALUES ($1, $2, $3, $4)`, id, i, req.Category, req.MinimumLevel)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresPoolRepository) FindByID(ctx context.Context, id int64) (pool.Pool, error) {
	p, err := scanPool(r.db.QueryRow(ctx, poolSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return pool.Pool{}, err
	}

	reqs, err := r.listRequirements(ctx, id)
	if err != nil {
		return pool.Pool{}, err
	}
	p.Requirements = reqs
	return p, nil
}

const poolSelect = `
SELECT p.id, p.company, p.title, p.description, p.job_type, p.salary_min, p.salary_max,
	p.stake_amount, p.fee_rate_bp, p.deadline, p.created_at, p.status, p.selected_candidate,
	p.location, p.is_remote,
	(SELECT COUNT(*) FROM applications a WHERE a.pool_id = p.id) AS total_applications
FROM pools p`

func (r *PostgresPoolRepository) List(ctx context.Context, f PoolFilter) ([]pool.Pool, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := poolSelect + `
WHERE ($1 = '' OR p.status = $1)
  AND ($2::uuid IS NULL OR p.company = $2)
ORDER BY p.created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, string(f.Status), f.Company, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pool.Pool, 0)
	for rows.Next() {
		p, err := scanPoolFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		reqs, err := r.listRequirements(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Requirements = reqs
	}
	return out, nil
}

func (r *PostgresPoolRepository) SetStatus(ctx context.Context, id int64, from, to pool.Status) error {
	n, err := r.db.Exec(ctx, `
UPDATE pools SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *PostgresPoolRepository) ListDue(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
SELECT id FROM pools WHERE status = $1 AND deadline < $2 ORDER BY id ASC`,
		pool.StatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresPoolRepository) CreateApplication(ctx context.Context, a pool.Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if a.StakeAmount > 0 {
		if err := debitBalance(ctx, tx, a.Candidate, a.StakeAmount); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
INSERT INTO applications (pool_id, candidate, credential_ids, stake_amount, applied_at,
	status, match_score, cover_letter, portfolio)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.PoolID, a.Candidate, a.CredentialIDs, a.StakeAmount, a.AppliedAt,
		pool.ApplicationPending, a.MatchScore, a.CoverLetter, a.Portfolio)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresPoolRepository) FindApplication(ctx context.Context, poolID int64, candidate uuid.UUID) (pool.Application, error) {
	var a pool.Application
	err := r.db.QueryRow(ctx, `
SELECT pool_id, candidate, credential_ids, stake_amount, applied_at, status,
	match_score, cover_letter, portfolio
FROM applications WHERE pool_id = $1 AND candidate = $2`, poolID, candidate).Scan(
		&a.PoolID, &a.Candidate, &a.CredentialIDs, &a.StakeAmount, &a.AppliedAt,
		&a.Status, &a.MatchScore, &a.CoverLetter, &a.Portfolio)
	if errors.Is(err, pgx.ErrNoRows) {
		return pool.Application{}, ErrNotFound
	}
	if err != nil {
		return pool.Application{}, err
	}
	return a, nil
}

func (r *PostgresPoolRepository) ListApplications(ctx context.Context, poolID int64) ([]pool.Application, error) {
	rows, err := r.db.Query(ctx, `
SELECT pool_id, candidate, credential_ids, stake_amount, applied_at, status,
	match_score, cover_letter, portfolio
FROM applications WHERE pool_id = $1 ORDER BY applied_at ASC`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pool.Application, 0)
	for rows.Next() {
		var a pool.Application
		if err := rows.Scan(
			&a.PoolID, &a.Candidate, &a.CredentialIDs, &a.StakeAmount, &a.AppliedAt,
			&a.Status, &a.MatchScore, &a.CoverLetter, &a.Portfolio,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresPoolRepository) WithdrawApplication(ctx context.Context, poolID int64, candidate uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var stake int64
	err = tx.QueryRow(ctx, `
UPDATE applications SET status = $3
WHERE pool_id = $1 AND candidate = $2 AND status = $4
RETURNING stake_amount`,
		poolID, candidate, pool.ApplicationWithdrawn, pool.ApplicationPending,
	).Scan(&stake)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if stake > 0 {
		if err := creditBalance(ctx, tx, candidate, stake); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return stake, nil
}

func (r *PostgresPoolRepository) ApplySettlement(ctx context.Context, s escrow.Settlement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Exactly-once guard: the pool row must still be in the status the
	// settlement was built against.
	n, err := tx.Exec(ctx, `
UPDATE pools SET status = $3, selected_candidate = $4
WHERE id = $1 AND status = $2`,
		s.PoolID, s.FromStatus, s.ToStatus, s.SelectedCandidate)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleStatus
	}

	for _, au := range s.Applications {
		n, err := tx.Exec(ctx, `
UPDATE applications SET status = $3
WHERE pool_id = $1 AND candidate = $2 AND status = $4`,
			s.PoolID, au.Candidate, au.Status, pool.ApplicationPending)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStaleStatus
		}
	}

	for _, t := range s.Transfers {
		if err := creditBalance(ctx, tx, t.To, t.Amount); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresPoolRepository) listRequirements(ctx context.Context, poolID int64) ([]pool.SkillRequirement, error) {
	rows, err := r.db.Query(ctx, `
SELECT category, minimum_level FROM pool_requirements
WHERE pool_id = $1 ORDER BY position ASC`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pool.SkillRequirement, 0)
	for rows.Next() {
		var req pool.SkillRequirement
		if err := rows.Scan(&req.Category, &req.MinimumLevel); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanPool(row database.Row) (pool.Pool, error) {
	var p pool.Pool
	err := row.Scan(
		&p.ID, &p.Company, &p.Title, &p.Description, &p.JobType, &p.SalaryMin, &p.SalaryMax,
		&p.StakeAmount, &p.FeeRateBP, &p.Deadline, &p.CreatedAt, &p.Status, &p.SelectedCandidate,
		&p.Location, &p.IsRemote, &p.TotalApplications)
	if errors.Is(err, pgx.ErrNoRows) {
		return pool.Pool{}, ErrNotFound
	}
	if err != nil {
		return pool.Pool{}, err
	}
	return p, nil
}

func scanPoolFromRows(rows database.Rows) (pool.Pool, error) {
	var p pool.Pool
	err := rows.Scan(
		&p.ID, &p.Company, &p.Title, &p.Description, &p.JobType, &p.SalaryMin, &p.SalaryMax,
		&p.StakeAmount, &p.FeeRateBP, &p.Deadline, &p.CreatedAt, &p.Status, &p.SelectedCandidate,
		&p.Location, &p.IsRemote, &p.TotalApplications)
	if err != nil {
		return pool.Pool{}, err
	}
	return p, nil
}
