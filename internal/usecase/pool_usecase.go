package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-ledger/internal/domain/credential"
	"talent-ledger/internal/domain/escrow"
	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/domain/matching"
	"talent-ledger/internal/domain/pool"
	"talent-ledger/internal/metrics"
	"talent-ledger/internal/oracle"
	"talent-ledger/internal/pkg/locks"
	"talent-ledger/internal/repository"
)

type CreatePoolInput struct {
	Title        string
	Description  string
	JobType      string
	Requirements []pool.SkillRequirement
	SalaryMin    int64
	SalaryMax    int64
	StakeAmount  int64
	Deadline     time.Time
	Location     string
	IsRemote     bool
}

type ApplyInput struct {
	PoolID        int64
	CredentialIDs []int64
	StakeAmount   int64
	CoverLetter   string
	Portfolio     string
}

type PoolListParams struct {
	Status  string
	Company *uuid.UUID
	Limit   int
	Offset  int
}

type PoolUsecase interface {
	Create(ctx context.Context, caller uuid.UUID, in CreatePoolInput) (pool.Pool, error)
	Get(ctx context.Context, id int64) (pool.Pool, error)
	List(ctx context.Context, params PoolListParams) ([]pool.Pool, error)
	ListApplications(ctx context.Context, caller uuid.UUID, poolID int64) ([]pool.Application, error)
	Pause(ctx context.Context, caller uuid.UUID, poolID int64) error
	Resume(ctx context.Context, caller uuid.UUID, poolID int64) error
	Apply(ctx context.Context, caller uuid.UUID, in ApplyInput) (pool.Application, error)
	Withdraw(ctx context.Context, caller uuid.UUID, poolID int64) error
	Select(ctx context.Context, caller uuid.UUID, poolID int64, candidate uuid.UUID) error
	Close(ctx context.Context, caller uuid.UUID, poolID int64, reason string) error
	ExpireDue(ctx context.Context) (int, error)
}

type Pools struct {
	pools  repository.PoolRepository
	creds  repository.CredentialRepository
	config repository.PlatformConfigRepository
	events repository.EventRepository
	rep    oracle.Client
	cache  LedgerCache
	logger *zap.Logger

	// locks serializes every mutating operation per pool id; a settlement
	// never interleaves with an application on the same pool.
	locks *locks.Keyed

	feeCollector uuid.UUID
	stakePolicy  escrow.StakePolicy

	now func() time.Time
}

func NewPoolUsecase(
	pools repository.PoolRepository,
	creds repository.CredentialRepository,
	config repository.PlatformConfigRepository,
	events repository.EventRepository,
	rep oracle.Client,
	cache LedgerCache,
	feeCollector uuid.UUID,
	stakePolicy escrow.StakePolicy,
	logger *zap.Logger,
) *Pools {
	return &Pools{
		pools:        pools,
		creds:        creds,
		config:       config,
		events:       events,
		rep:          rep,
		cache:        cache,
		logger:       logger,
		locks:        locks.NewKeyed(),
		feeCollector: feeCollector,
		stakePolicy:  stakePolicy,
		now:          time.Now,
	}
}

func (u *Pools) Create(ctx context.Context, caller uuid.UUID, in CreatePoolInput) (pool.Pool, error) {
	if caller == uuid.Nil {
		return pool.Pool{}, ErrUnauthorized
	}
	if in.StakeAmount <= 0 {
		return pool.Pool{}, ErrZeroStake
	}
	if strings.TrimSpace(in.Title) == "" {
		return pool.Pool{}, ErrInvalidInput
	}
	jt, ok := pool.ParseJobType(in.JobType)
	if !ok {
		return pool.Pool{}, ErrInvalidInput
	}
	if len(in.Requirements) == 0 {
		return pool.Pool{}, ErrSpecMismatch
	}
	for _, r := range in.Requirements {
		if strings.TrimSpace(r.Category) == "" {
			return pool.Pool{}, ErrSpecMismatch
		}
		if !credential.ValidLevel(r.MinimumLevel) {
			return pool.Pool{}, ErrSpecMismatch
		}
	}
	now := u.now().UTC()
	if !in.Deadline.After(now) {
		return pool.Pool{}, ErrInvalidInput
	}
	if in.SalaryMin < 0 || in.SalaryMax < in.SalaryMin {
		return pool.Pool{}, ErrInvalidInput
	}

	// Snapshot the platform fee rate: later governance changes must not
	// reprice pools already holding stake.
	feeRateBP, err := u.config.FeeRateBP(ctx)
	if err != nil {
		u.logger.Error("fee rate read failed", zap.Error(err))
		return pool.Pool{}, ErrInternal
	}

	p := pool.Pool{
		Company:      caller,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		JobType:      jt,
		Requirements: in.Requirements,
		SalaryMin:    in.SalaryMin,
		SalaryMax:    in.SalaryMax,
		StakeAmount:  in.StakeAmount,
		FeeRateBP:    feeRateBP,
		Deadline:     in.Deadline.UTC(),
		CreatedAt:    now,
		Status:       pool.StatusActive,
		Location:     in.Location,
		IsRemote:     in.IsRemote,
	}

	id, err := u.pools.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return pool.Pool{}, ErrInsufficientFunds
		}
		u.logger.Error("pool create failed", zap.Error(err))
		return pool.Pool{}, ErrInternal
	}
	p.ID = id

	u.append(ctx, event.New(event.TypePoolCreated, caller, map[string]any{
		"title":       p.Title,
		"stake":       p.StakeAmount,
		"fee_rate_bp": p.FeeRateBP,
	}).WithPool(id))
	u.invalidateListings(ctx)

	return p, nil
}

func (u *Pools) Get(ctx context.Context, id int64) (pool.Pool, error) {
	p, err := u.pools.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return pool.Pool{}, ErrPoolNotFound
		}
		return pool.Pool{}, ErrInternal
	}
	return p, nil
}

func (u *Pools) List(ctx context.Context, params PoolListParams) ([]pool.Pool, error) {
	f := repository.PoolFilter{
		Company: params.Company,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}
	if params.Status != "" {
		st, err := pool.ParseStatus(params.Status)
		if err != nil {
			return nil, ErrInvalidInput
		}
		f.Status = st
	}

	key := PoolListCacheKey(f)
	if u.cache != nil {
		var cached []pool.Pool
		if ok, err := u.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	out, err := u.pools.List(ctx, f)
	if err != nil {
		return nil, ErrInternal
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, out, 0)
	}
	return out, nil
}

func (u *Pools) ListApplications(ctx context.Context, caller uuid.UUID, poolID int64) ([]pool.Application, error) {
	p, err := u.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}
	// Only the pool's company sees the full application list.
	if p.Company != caller {
		return nil, ErrNotAuthorized
	}
	out, err := u.pools.ListApplications(ctx, poolID)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Pools) Pause(ctx context.Context, caller uuid.UUID, poolID int64) error {
	return u.flipStatus(ctx, caller, poolID, pool.StatusActive, pool.StatusPaused, event.TypePoolPaused)
}

func (u *Pools) Resume(ctx context.Context, caller uuid.UUID, poolID int64) error {
	return u.flipStatus(ctx, caller, poolID, pool.StatusPaused, pool.StatusActive, event.TypePoolResumed)
}

func (u *Pools) flipStatus(ctx context.Context, caller uuid.UUID, poolID int64, from, to pool.Status, evt event.Type) error {
	u.locks.Lock(poolID)
	defer u.locks.Unlock(poolID)

	p, err := u.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if p.Company != caller {
		return ErrNotAuthorized
	}
	if p.Status != from {
		return ErrPoolNotActive
	}

	if err := u.pools.SetStatus(ctx, poolID, from, to); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return ErrPoolNotActive
		}
		return ErrInternal
	}

	u.append(ctx, event.New(evt, caller, nil).WithPool(poolID))
	u.invalidateListings(ctx)
	return nil
}

func (u *Pools) Apply(ctx context.Context, caller uuid.UUID, in ApplyInput) (pool.Application, error) {
	if caller == uuid.Nil {
		return pool.Application{}, ErrUnauthorized
	}
	if in.StakeAmount < 0 {
		return pool.Application{}, ErrInvalidInput
	}
	if len(in.CredentialIDs) == 0 {
		return pool.Application{}, ErrInvalidInput
	}

	u.locks.Lock(in.PoolID)
	defer u.locks.Unlock(in.PoolID)

	p, err := u.Get(ctx, in.PoolID)
	if err != nil {
		return pool.Application{}, err
	}
	if p.Status != pool.StatusActive {
		return pool.Application{}, ErrPoolNotActive
	}
	now := u.now().UTC()
	if !now.Before(p.Deadline) {
		return pool.Application{}, ErrDeadlinePassed
	}
	if p.Company == caller {
		return pool.Application{}, ErrNotAuthorized
	}

	if _, err := u.pools.FindApplication(ctx, in.PoolID, caller); err == nil {
		return pool.Application{}, ErrDuplicateApplication
	} else if !errors.Is(err, repository.ErrNotFound) {
		return pool.Application{}, ErrInternal
	}

	offered, err := u.loadOffered(ctx, caller, in.CredentialIDs, now)
	if err != nil {
		return pool.Application{}, err
	}

	reqs := make([]matching.Requirement, 0, len(p.Requirements))
	for _, r := range p.Requirements {
		reqs = append(reqs, matching.Requirement{Category: r.Category, MinimumLevel: r.MinimumLevel})
	}

	res := matching.Evaluate(offered, reqs)
	if !res.Eligible {
		return pool.Application{}, ErrSkillRequirementsNotMet
	}

	score := u.enrichScore(ctx, caller, res.ScoreBP, p.Requirements)

	a := pool.Application{
		PoolID:        in.PoolID,
		Candidate:     caller,
		CredentialIDs: in.CredentialIDs,
		StakeAmount:   in.StakeAmount,
		AppliedAt:     now,
		Status:        pool.ApplicationPending,
		MatchScore:    score,
		CoverLetter:   in.CoverLetter,
		Portfolio:     in.Portfolio,
	}

	if err := u.pools.CreateApplication(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return pool.Application{}, ErrDuplicateApplication
		case errors.Is(err, repository.ErrInsufficientFunds):
			return pool.Application{}, ErrInsufficientFunds
		}
		u.logger.Error("application create failed", zap.Error(err))
		return pool.Application{}, ErrInternal
	}

	u.append(ctx, event.New(event.TypeApplicationSubmitted, caller, map[string]any{
		"stake":       a.StakeAmount,
		"match_score": a.MatchScore,
	}).WithPool(in.PoolID))
	u.invalidateListings(ctx)

	return a, nil
}

// loadOffered resolves the offered credential ids, enforcing that every
// one exists and belongs to the caller. Revoked or expired credentials
// stay in the list but are unusable for matching.
func (u *Pools) loadOffered(ctx context.Context, caller uuid.UUID, ids []int64, now time.Time) ([]matching.OfferedCredential, error) {
	creds, err := u.creds.ListByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}
	byID := make(map[int64]credential.Credential, len(creds))
	for _, c := range creds {
		byID[c.ID] = c
	}

	offered := make([]matching.OfferedCredential, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, ErrCredentialNotFound
		}
		if c.Holder != caller {
			return nil, ErrCredentialNotUsable
		}
		offered = append(offered, matching.OfferedCredential{
			ID:       c.ID,
			Category: c.Category,
			Level:    c.Level,
			Usable:   c.Usable(now),
		})
	}
	return offered, nil
}

// enrichScore blends the reputation oracle's category scores into the
// base match score. Oracle failures degrade to the base score; the
// oracle can reorder rankings but never gates eligibility.
func (u *Pools) enrichScore(ctx context.Context, candidate uuid.UUID, baseBP int, reqs []pool.SkillRequirement) int {
	if u.rep == nil {
		return baseBP
	}

	var sum, n int
	for _, r := range reqs {
		score, err := u.rep.CategoryScore(ctx, candidate, r.Category)
		if err != nil {
			if !errors.Is(err, oracle.ErrUnavailable) {
				u.logger.Warn("reputation oracle lookup failed",
					zap.String("category", r.Category), zap.Error(err))
			}
			continue
		}
		sum += score
		n++
	}
	if n == 0 {
		return baseBP
	}
	return matching.BlendReputation(baseBP, sum/n)
}

func (u *Pools) Withdraw(ctx context.Context, caller uuid.UUID, poolID int64) error {
	if caller == uuid.Nil {
		return ErrUnauthorized
	}

	u.locks.Lock(poolID)
	defer u.locks.Unlock(poolID)

	if _, err := u.Get(ctx, poolID); err != nil {
		return err
	}

	stake, err := u.pools.WithdrawApplication(ctx, poolID, caller)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrApplicationNotFound
		}
		u.logger.Error("application withdraw failed", zap.Error(err))
		return ErrInternal
	}
	metrics.RefundAmount.Add(float64(stake))

	u.append(ctx, event.New(event.TypeApplicationWithdrawn, caller, map[string]any{
		"refunded": stake,
	}).WithPool(poolID))

	return nil
}

func (u *Pools) Select(ctx context.Context, caller uuid.UUID, poolID int64, candidate uuid.UUID) error {
	u.locks.Lock(poolID)
	defer u.locks.Unlock(poolID)

	p, err := u.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if p.Company != caller {
		return ErrNotAuthorized
	}
	if p.Status != pool.StatusActive {
		return ErrPoolNotActive
	}

	apps, err := u.pools.ListApplications(ctx, poolID)
	if err != nil {
		return ErrInternal
	}

	s, err := escrow.BuildSelection(p, apps, candidate, u.feeCollector, u.stakePolicy)
	if err != nil {
		if errors.Is(err, escrow.ErrNoPendingApplication) {
			return ErrApplicationNotFound
		}
		// Conservation breach is a bug, never caller error. Abort loudly.
		u.logger.Error("settlement build failed", zap.Int64("pool_id", poolID), zap.Error(err))
		return ErrInternal
	}

	if err := u.settle(ctx, s); err != nil {
		return err
	}

	u.append(ctx, event.New(event.TypeCandidateSelected, caller, map[string]any{
		"candidate": candidate.String(),
		"paid_out":  s.TotalOut(),
	}).WithPool(poolID))
	u.invalidateListings(ctx)

	return nil
}

func (u *Pools) Close(ctx context.Context, caller uuid.UUID, poolID int64, reason string) error {
	u.locks.Lock(poolID)
	defer u.locks.Unlock(poolID)

	p, err := u.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if p.Company != caller {
		return ErrNotAuthorized
	}
	if p.Status != pool.StatusActive && p.Status != pool.StatusPaused {
		return ErrPoolNotActive
	}

	apps, err := u.pools.ListApplications(ctx, poolID)
	if err != nil {
		return ErrInternal
	}

	s, err := escrow.BuildRelease(p, apps, pool.StatusCancelled)
	if err != nil {
		u.logger.Error("settlement build failed", zap.Int64("pool_id", poolID), zap.Error(err))
		return ErrInternal
	}

	if err := u.settle(ctx, s); err != nil {
		return err
	}

	u.append(ctx, event.New(event.TypePoolClosed, caller, map[string]any{
		"reason":   reason,
		"refunded": s.TotalOut(),
	}).WithPool(poolID))
	u.invalidateListings(ctx)

	return nil
}

// ExpireDue sweeps ACTIVE pools past their deadline into EXPIRED,
// refunding everyone. Races with concurrent selection resolve in favor
// of whichever settles the pool row first.
func (u *Pools) ExpireDue(ctx context.Context) (int, error) {
	due, err := u.pools.ListDue(ctx, u.now().UTC())
	if err != nil {
		return 0, ErrInternal
	}

	expired := 0
	for _, poolID := range due {
		if err := u.expireOne(ctx, poolID); err != nil {
			if errors.Is(err, ErrPoolNotActive) {
				continue // settled concurrently
			}
			u.logger.Error("pool expiry failed", zap.Int64("pool_id", poolID), zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		u.invalidateListings(ctx)
	}
	return expired, nil
}

func (u *Pools) expireOne(ctx context.Context, poolID int64) error {
	u.locks.Lock(poolID)
	defer u.locks.Unlock(poolID)

	p, err := u.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if p.Status != pool.StatusActive {
		return ErrPoolNotActive
	}

	apps, err := u.pools.ListApplications(ctx, poolID)
	if err != nil {
		return ErrInternal
	}

	s, err := escrow.BuildRelease(p, apps, pool.StatusExpired)
	if err != nil {
		return ErrInternal
	}

	if err := u.settle(ctx, s); err != nil {
		return err
	}

	u.append(ctx, event.New(event.TypePoolExpired, p.Company, map[string]any{
		"refunded": s.TotalOut(),
	}).WithPool(poolID))

	return nil
}

// settle applies a settlement and records the fund movements in the
// operation metrics. ErrStaleStatus means another operation already
// moved the pool off its expected status — the exactly-once guard.
func (u *Pools) settle(ctx context.Context, s escrow.Settlement) error {
	if err := u.pools.ApplySettlement(ctx, s); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return ErrPoolNotActive
		}
		u.logger.Error("settlement apply failed", zap.Int64("pool_id", s.PoolID), zap.Error(err))
		return ErrInternal
	}

	for _, t := range s.Transfers {
		switch t.Kind {
		case escrow.KindPayout:
			metrics.PayoutAmount.Add(float64(t.Amount))
		case escrow.KindFee:
			metrics.FeeAmount.Add(float64(t.Amount))
		case escrow.KindRefund:
			metrics.RefundAmount.Add(float64(t.Amount))
		}
	}
	return nil
}

func (u *Pools) append(ctx context.Context, e event.Event) {
	if err := u.events.Append(ctx, e); err != nil {
		u.logger.Error("audit event append failed",
			zap.String("event_type", string(e.Type)), zap.Error(err))
	}
}

func (u *Pools) invalidateListings(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, "pools:list:*"); err != nil {
		u.logger.Warn("pool listing cache invalidation failed", zap.Error(err))
	}
}
