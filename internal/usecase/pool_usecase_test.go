package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-ledger/internal/domain/credential"
	"talent-ledger/internal/domain/escrow"
	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/domain/pool"
	"talent-ledger/internal/repository"
)

// mockLedgerStore implements PoolRepository over in-memory maps,
// mirroring the store's escrow semantics: stakes are debited from
// balances on entry and credited back only through settlements.
type mockLedgerStore struct {
	balances map[uuid.UUID]int64
	pools    map[int64]*pool.Pool
	apps     map[int64]map[uuid.UUID]*pool.Application
	nextID   int64
}

func newMockLedgerStore() *mockLedgerStore {
	return &mockLedgerStore{
		balances: make(map[uuid.UUID]int64),
		pools:    make(map[int64]*pool.Pool),
		apps:     make(map[int64]map[uuid.UUID]*pool.Application),
		nextID:   1,
	}
}

func (m *mockLedgerStore) debit(id uuid.UUID, amount int64) error {
	if m.balances[id] < amount {
		return repository.ErrInsufficientFunds
	}
	m.balances[id] -= amount
	return nil
}

func (m *mockLedgerStore) Create(_ context.Context, p pool.Pool) (int64, error) {
	if err := m.debit(p.Company, p.StakeAmount); err != nil {
		return 0, err
	}
	id := m.nextID
	m.nextID++
	p.ID = id
	m.pools[id] = &p
	m.apps[id] = make(map[uuid.UUID]*pool.Application)
	return id, nil
}

func (m *mockLedgerStore) FindByID(_ context.Context, id int64) (pool.Pool, error) {
	p, ok := m.pools[id]
	if !ok {
		return pool.Pool{}, repository.ErrNotFound
	}
	return *p, nil
}

func (m *mockLedgerStore) List(_ context.Context, f repository.PoolFilter) ([]pool.Pool, error) {
	var out []pool.Pool
	for _, p := range m.pools {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockLedgerStore) SetStatus(_ context.Context, id int64, from, to pool.Status) error {
	p, ok := m.pools[id]
	if !ok || p.Status != from {
		return repository.ErrStaleStatus
	}
	p.Status = to
	return nil
}

func (m *mockLedgerStore) ListDue(_ context.Context, now time.Time) ([]int64, error) {
	var out []int64
	for id, p := range m.pools {
		if p.Status == pool.StatusActive && !p.Deadline.After(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockLedgerStore) CreateApplication(_ context.Context, a pool.Application) error {
	if _, exists := m.apps[a.PoolID][a.Candidate]; exists {
		return repository.ErrDuplicate
	}
	if err := m.debit(a.Candidate, a.StakeAmount); err != nil {
		return err
	}
	m.apps[a.PoolID][a.Candidate] = &a
	return nil
}

func (m *mockLedgerStore) FindApplication(_ context.Context, poolID int64, candidate uuid.UUID) (pool.Application, error) {
	a, ok := m.apps[poolID][candidate]
	if !ok {
		return pool.Application{}, repository.ErrNotFound
	}
	return *a, nil
}

func (m *mockLedgerStore) ListApplications(_ context.Context, poolID int64) ([]pool.Application, error) {
	var out []pool.Application
	for _, a := range m.apps[poolID] {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockLedgerStore) WithdrawApplication(_ context.Context, poolID int64, candidate uuid.UUID) (int64, error) {
	a, ok := m.apps[poolID][candidate]
	if !ok || a.Status != pool.ApplicationPending {
		return 0, repository.ErrNotFound
	}
	a.Status = pool.ApplicationWithdrawn
	m.balances[candidate] += a.StakeAmount
	return a.StakeAmount, nil
}

func (m *mockLedgerStore) ApplySettlement(_ context.Context, s escrow.Settlement) error {
	p, ok := m.pools[s.PoolID]
	if !ok || p.Status != s.FromStatus {
		return repository.ErrStaleStatus
	}
	p.Status = s.ToStatus
	p.SelectedCandidate = s.SelectedCandidate
	for _, au := range s.Applications {
		if a, ok := m.apps[s.PoolID][au.Candidate]; ok {
			a.Status = au.Status
		}
	}
	for _, t := range s.Transfers {
		m.balances[t.To] += t.Amount
	}
	return nil
}

func (m *mockLedgerStore) totalBalance() int64 {
	var sum int64
	for _, b := range m.balances {
		sum += b
	}
	return sum
}

type mockCredStore struct {
	creds map[int64]credential.Credential
}

func (m *mockCredStore) Create(_ context.Context, c credential.Credential) (int64, error) {
	id := int64(len(m.creds) + 1)
	c.ID = id
	m.creds[id] = c
	return id, nil
}

func (m *mockCredStore) FindByID(_ context.Context, id int64) (credential.Credential, error) {
	c, ok := m.creds[id]
	if !ok {
		return credential.Credential{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCredStore) ListByHolder(_ context.Context, holder uuid.UUID) ([]credential.Credential, error) {
	var out []credential.Credential
	for _, c := range m.creds {
		if c.Holder == holder {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredStore) ListByIDs(_ context.Context, ids []int64) ([]credential.Credential, error) {
	var out []credential.Credential
	for _, id := range ids {
		if c, ok := m.creds[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredStore) SetLevel(_ context.Context, id int64, level int) error {
	c, ok := m.creds[id]
	if !ok || !c.IsActive {
		return repository.ErrNotFound
	}
	c.Level = level
	m.creds[id] = c
	return nil
}

func (m *mockCredStore) Deactivate(_ context.Context, id int64) (bool, error) {
	c, ok := m.creds[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if !c.IsActive {
		return false, nil
	}
	c.IsActive = false
	m.creds[id] = c
	return true, nil
}

func (m *mockCredStore) AddEndorsement(_ context.Context, id int64, e credential.Endorsement) error {
	c, ok := m.creds[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Endorsements = append(c.Endorsements, e)
	m.creds[id] = c
	return nil
}

type mockConfigStore struct {
	feeRateBP int
}

func (m *mockConfigStore) FeeRateBP(context.Context) (int, error) { return m.feeRateBP, nil }

func (m *mockConfigStore) SetFeeRateBP(_ context.Context, bp int) error {
	m.feeRateBP = bp
	return nil
}

type mockEventStore struct {
	events []event.Event
}

func (m *mockEventStore) Append(_ context.Context, e event.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockEventStore) ListRecent(_ context.Context, limit int) ([]event.Event, error) {
	return m.events, nil
}

func (m *mockEventStore) countOf(t event.Type) int {
	n := 0
	for _, e := range m.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type fixedOracle struct {
	score int
	err   error
}

func (o fixedOracle) CategoryScore(context.Context, uuid.UUID, string) (int, error) {
	return o.score, o.err
}

type poolFixture struct {
	uc     *Pools
	store  *mockLedgerStore
	creds  *mockCredStore
	events *mockEventStore
	config *mockConfigStore

	company   uuid.UUID
	collector uuid.UUID
	now       time.Time
}

func newPoolFixture(t *testing.T, policy escrow.StakePolicy) *poolFixture {
	t.Helper()

	f := &poolFixture{
		store:     newMockLedgerStore(),
		creds:     &mockCredStore{creds: make(map[int64]credential.Credential)},
		events:    &mockEventStore{},
		config:    &mockConfigStore{feeRateBP: 250},
		company:   uuid.New(),
		collector: uuid.New(),
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store.balances[f.company] = 100_000

	f.uc = NewPoolUsecase(
		f.store, f.creds, f.config, f.events,
		fixedOracle{err: errors.New("down")}, nil,
		f.collector, policy, zap.NewNop(),
	)
	f.uc.now = func() time.Time { return f.now }
	return f
}

func (f *poolFixture) createPool(t *testing.T, stake int64) pool.Pool {
	t.Helper()
	p, err := f.uc.Create(context.Background(), f.company, CreatePoolInput{
		Title:       "Backend Engineer",
		JobType:     "FULL_TIME",
		StakeAmount: stake,
		Deadline:    f.now.Add(72 * time.Hour),
		Requirements: []pool.SkillRequirement{
			{Category: "golang", MinimumLevel: 5},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

// newCandidate funds an account and mints a usable matching credential.
func (f *poolFixture) newCandidate(t *testing.T, level int) (uuid.UUID, int64) {
	t.Helper()
	id := uuid.New()
	f.store.balances[id] = 10_000
	credID, err := f.creds.Create(context.Background(), credential.Credential{
		Holder:   id,
		Category: "golang",
		Level:    level,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed credential: %v", err)
	}
	return id, credID
}

func TestCreatePoolValidation(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	ctx := context.Background()

	base := CreatePoolInput{
		Title:        "Backend Engineer",
		JobType:      "FULL_TIME",
		StakeAmount:  1000,
		Deadline:     f.now.Add(time.Hour),
		Requirements: []pool.SkillRequirement{{Category: "golang", MinimumLevel: 5}},
	}

	cases := []struct {
		name   string
		mutate func(*CreatePoolInput)
		want   error
	}{
		{"zero stake", func(in *CreatePoolInput) { in.StakeAmount = 0 }, ErrZeroStake},
		{"negative stake", func(in *CreatePoolInput) { in.StakeAmount = -5 }, ErrZeroStake},
		{"empty title", func(in *CreatePoolInput) { in.Title = "  " }, ErrInvalidInput},
		{"bad job type", func(in *CreatePoolInput) { in.JobType = "GIG" }, ErrInvalidInput},
		{"no requirements", func(in *CreatePoolInput) { in.Requirements = nil }, ErrSpecMismatch},
		{"blank category", func(in *CreatePoolInput) {
			in.Requirements = []pool.SkillRequirement{{Category: " ", MinimumLevel: 3}}
		}, ErrSpecMismatch},
		{"level out of range", func(in *CreatePoolInput) {
			in.Requirements = []pool.SkillRequirement{{Category: "golang", MinimumLevel: 11}}
		}, ErrSpecMismatch},
		{"past deadline", func(in *CreatePoolInput) { in.Deadline = f.now.Add(-time.Minute) }, ErrInvalidInput},
		{"inverted salary band", func(in *CreatePoolInput) { in.SalaryMin = 100; in.SalaryMax = 50 }, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := f.uc.Create(ctx, f.company, in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreatePoolEscrowsStakeAndSnapshotsFee(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)

	if f.store.balances[f.company] != 95_000 {
		t.Fatalf("company balance = %d, want 95000", f.store.balances[f.company])
	}
	if p.FeeRateBP != 250 {
		t.Fatalf("fee snapshot = %d, want 250", p.FeeRateBP)
	}

	// Changing the platform rate later must not touch the stored pool.
	f.config.feeRateBP = 900
	got, err := f.uc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FeeRateBP != 250 {
		t.Fatalf("fee after config change = %d, want 250", got.FeeRateBP)
	}
}

func TestCreatePoolInsufficientFunds(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	_, err := f.uc.Create(context.Background(), f.company, CreatePoolInput{
		Title:        "Backend Engineer",
		JobType:      "FULL_TIME",
		StakeAmount:  1_000_000,
		Deadline:     f.now.Add(time.Hour),
		Requirements: []pool.SkillRequirement{{Category: "golang", MinimumLevel: 5}},
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
}

func TestApplyHappyPath(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 5)

	a, err := f.uc.Apply(context.Background(), cand, ApplyInput{
		PoolID:        p.ID,
		CredentialIDs: []int64{credID},
		StakeAmount:   200,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.Status != pool.ApplicationPending {
		t.Fatalf("status = %s, want PENDING", a.Status)
	}
	// Exact level match scores the midpoint of the scale.
	if a.MatchScore != 5000 {
		t.Fatalf("match score = %d, want 5000", a.MatchScore)
	}
	if f.store.balances[cand] != 9800 {
		t.Fatalf("candidate balance = %d, want 9800", f.store.balances[cand])
	}
}

func TestApplyRejectsBelowRequirement(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 4)

	_, err := f.uc.Apply(context.Background(), cand, ApplyInput{
		PoolID:        p.ID,
		CredentialIDs: []int64{credID},
	})
	if !errors.Is(err, ErrSkillRequirementsNotMet) {
		t.Fatalf("got %v, want ErrSkillRequirementsNotMet", err)
	}
	// No funds may move on a rejected application.
	if f.store.balances[cand] != 10_000 {
		t.Fatalf("candidate balance = %d, want 10000", f.store.balances[cand])
	}
}

func TestApplyRejectsForeignCredential(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	_, otherCred := f.newCandidate(t, 8)
	cand := uuid.New()
	f.store.balances[cand] = 10_000

	_, err := f.uc.Apply(context.Background(), cand, ApplyInput{
		PoolID:        p.ID,
		CredentialIDs: []int64{otherCred},
	})
	if !errors.Is(err, ErrCredentialNotUsable) {
		t.Fatalf("got %v, want ErrCredentialNotUsable", err)
	}
}

func TestApplyRevokedCredentialDoesNotCount(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 9)
	if _, err := f.creds.Deactivate(context.Background(), credID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := f.uc.Apply(context.Background(), cand, ApplyInput{
		PoolID:        p.ID,
		CredentialIDs: []int64{credID},
	})
	if !errors.Is(err, ErrSkillRequirementsNotMet) {
		t.Fatalf("got %v, want ErrSkillRequirementsNotMet", err)
	}
}

func TestApplyDuplicateAndDeadline(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 6)
	in := ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}, StakeAmount: 100}

	if _, err := f.uc.Apply(context.Background(), cand, in); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := f.uc.Apply(context.Background(), cand, in); !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("got %v, want ErrDuplicateApplication", err)
	}

	other, otherCred := f.newCandidate(t, 6)
	f.now = f.now.Add(100 * time.Hour)
	_, err := f.uc.Apply(context.Background(), other, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{otherCred}})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("got %v, want ErrDeadlinePassed", err)
	}
}

func TestApplyCompanyCannotApplyToOwnPool(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	credID, err := f.creds.Create(context.Background(), credential.Credential{
		Holder: f.company, Category: "golang", Level: 9, IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	_, err = f.uc.Apply(context.Background(), f.company, ApplyInput{
		PoolID:        p.ID,
		CredentialIDs: []int64{credID},
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}
}

func TestWithdrawRefundsStake(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 7)

	if _, err := f.uc.Apply(context.Background(), cand, ApplyInput{
		PoolID: p.ID, CredentialIDs: []int64{credID}, StakeAmount: 300,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.uc.Withdraw(context.Background(), cand, p.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if f.store.balances[cand] != 10_000 {
		t.Fatalf("balance after withdraw = %d, want 10000", f.store.balances[cand])
	}
	if err := f.uc.Withdraw(context.Background(), cand, p.ID); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("second withdraw: got %v, want ErrApplicationNotFound", err)
	}
}

func TestPauseResume(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	ctx := context.Background()

	if err := f.uc.Pause(ctx, f.company, p.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	cand, credID := f.newCandidate(t, 8)
	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}}); !errors.Is(err, ErrPoolNotActive) {
		t.Fatalf("apply on paused pool: got %v, want ErrPoolNotActive", err)
	}

	if err := f.uc.Resume(ctx, f.company, p.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}}); err != nil {
		t.Fatalf("apply after resume: %v", err)
	}

	if err := f.uc.Pause(ctx, uuid.New(), p.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("pause by stranger: got %v, want ErrNotAuthorized", err)
	}
}

func TestSelectPaysOutOnce(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 10_000) // fee 250bp -> payout 9750, fee 250
	winner, wCred := f.newCandidate(t, 8)
	loser, lCred := f.newCandidate(t, 6)
	ctx := context.Background()

	for _, c := range []struct {
		id   uuid.UUID
		cred int64
	}{{winner, wCred}, {loser, lCred}} {
		if _, err := f.uc.Apply(ctx, c.id, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{c.cred}, StakeAmount: 500}); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	if err := f.uc.Select(ctx, f.company, p.ID, winner); err != nil {
		t.Fatalf("select: %v", err)
	}

	// payout 9750 + own stake back 500
	if got := f.store.balances[winner]; got != 10_000-500+9750+500 {
		t.Fatalf("winner balance = %d, want %d", got, 10_000-500+9750+500)
	}
	if got := f.store.balances[loser]; got != 10_000 {
		t.Fatalf("loser balance = %d, want 10000", got)
	}
	if got := f.store.balances[f.collector]; got != 250 {
		t.Fatalf("collector balance = %d, want 250", got)
	}

	got, err := f.uc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != pool.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
	if got.SelectedCandidate == nil || *got.SelectedCandidate != winner {
		t.Fatalf("selected candidate = %v, want %s", got.SelectedCandidate, winner)
	}

	// A second settlement attempt hits the exactly-once guard.
	if err := f.uc.Select(ctx, f.company, p.ID, winner); !errors.Is(err, ErrPoolNotActive) {
		t.Fatalf("double select: got %v, want ErrPoolNotActive", err)
	}
	if got := f.store.balances[f.collector]; got != 250 {
		t.Fatalf("collector balance after double select = %d, want 250", got)
	}
}

func TestSelectForfeitPolicy(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeForfeit)
	p := f.createPool(t, 10_000)
	winner, wCred := f.newCandidate(t, 8)
	ctx := context.Background()

	if _, err := f.uc.Apply(ctx, winner, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{wCred}, StakeAmount: 500}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.uc.Select(ctx, f.company, p.ID, winner); err != nil {
		t.Fatalf("select: %v", err)
	}

	// Stake forfeited, payout only.
	if got := f.store.balances[winner]; got != 10_000-500+9750 {
		t.Fatalf("winner balance = %d, want %d", got, 10_000-500+9750)
	}
	if got := f.store.balances[f.collector]; got != 250+500 {
		t.Fatalf("collector balance = %d, want 750", got)
	}
}

func TestSelectRequiresPendingApplication(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 7)
	ctx := context.Background()

	if err := f.uc.Select(ctx, f.company, p.ID, cand); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("select without application: got %v, want ErrApplicationNotFound", err)
	}

	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}, StakeAmount: 100}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.uc.Withdraw(ctx, cand, p.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := f.uc.Select(ctx, f.company, p.ID, cand); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("select of withdrawn candidate: got %v, want ErrApplicationNotFound", err)
	}
}

func TestCloseRefundsEveryone(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 7)
	ctx := context.Background()

	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}, StakeAmount: 400}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.uc.Close(ctx, f.company, p.ID, "position filled elsewhere"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := f.store.balances[f.company]; got != 100_000 {
		t.Fatalf("company balance = %d, want 100000", got)
	}
	if got := f.store.balances[cand]; got != 10_000 {
		t.Fatalf("candidate balance = %d, want 10000", got)
	}
	if got := f.store.balances[f.collector]; got != 0 {
		t.Fatalf("collector balance = %d, want 0", got)
	}

	got, err := f.uc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != pool.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", got.Status)
	}
}

func TestClosePausedPool(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	ctx := context.Background()

	if err := f.uc.Pause(ctx, f.company, p.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := f.uc.Close(ctx, f.company, p.ID, ""); err != nil {
		t.Fatalf("close paused: %v", err)
	}
	if got := f.store.balances[f.company]; got != 100_000 {
		t.Fatalf("company balance = %d, want 100000", got)
	}
}

func TestExpireDueSweepsAndRefunds(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p1 := f.createPool(t, 3000)
	p2 := f.createPool(t, 4000)
	cand, credID := f.newCandidate(t, 7)
	ctx := context.Background()

	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p1.ID, CredentialIDs: []int64{credID}, StakeAmount: 150}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	f.now = f.now.Add(100 * time.Hour)
	n, err := f.uc.ExpireDue(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 2 {
		t.Fatalf("expired %d pools, want 2", n)
	}

	if got := f.store.balances[f.company]; got != 100_000 {
		t.Fatalf("company balance = %d, want 100000", got)
	}
	if got := f.store.balances[cand]; got != 10_000 {
		t.Fatalf("candidate balance = %d, want 10000", got)
	}
	for _, id := range []int64{p1.ID, p2.ID} {
		got, err := f.uc.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != pool.StatusExpired {
			t.Fatalf("pool %d status = %s, want EXPIRED", id, got.Status)
		}
	}
}

func TestOracleBlendAdjustsScore(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	f.uc.rep = fixedOracle{score: 100}
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 5)

	a, err := f.uc.Apply(context.Background(), cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// 90% of 5000 plus 10% of a perfect reputation score.
	if a.MatchScore != 5500 {
		t.Fatalf("blended score = %d, want 5500", a.MatchScore)
	}
}

// TestFundsConservation drives pools through every terminal path with
// many applicants and checks that the sum of all balances is unchanged
// once escrow is released: money moves between accounts, never in or
// out of the system.
func TestFundsConservation(t *testing.T) {
	for _, policy := range []escrow.StakePolicy{escrow.StakeRefund, escrow.StakeForfeit} {
		for _, terminal := range []string{"select", "close", "expire"} {
			t.Run(fmt.Sprintf("%s/%s", policy, terminal), func(t *testing.T) {
				f := newPoolFixture(t, policy)
				ctx := context.Background()

				p := f.createPool(t, 7777) // odd stake exercises fee flooring
				var candidates []uuid.UUID
				for i := 0; i < 8; i++ {
					cand, credID := f.newCandidate(t, 5+i%5)
					if _, err := f.uc.Apply(ctx, cand, ApplyInput{
						PoolID:        p.ID,
						CredentialIDs: []int64{credID},
						StakeAmount:   int64(100 + i*37),
					}); err != nil {
						t.Fatalf("apply %d: %v", i, err)
					}
					candidates = append(candidates, cand)
				}
				// One candidate backs out before settlement.
				if err := f.uc.Withdraw(ctx, candidates[3], p.ID); err != nil {
					t.Fatalf("withdraw: %v", err)
				}

				initial := int64(100_000 + 8*10_000)

				switch terminal {
				case "select":
					if err := f.uc.Select(ctx, f.company, p.ID, candidates[5]); err != nil {
						t.Fatalf("select: %v", err)
					}
				case "close":
					if err := f.uc.Close(ctx, f.company, p.ID, "test"); err != nil {
						t.Fatalf("close: %v", err)
					}
				case "expire":
					f.now = f.now.Add(200 * time.Hour)
					if _, err := f.uc.ExpireDue(ctx); err != nil {
						t.Fatalf("expire: %v", err)
					}
				}

				if got := f.store.totalBalance(); got != initial {
					t.Fatalf("total balance after %s = %d, want %d", terminal, got, initial)
				}

				// Terminal pools accept no further mutation of funds.
				extra, extraCred := f.newCandidate(t, 9)
				if _, err := f.uc.Apply(ctx, extra, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{extraCred}}); err == nil {
					t.Fatal("apply on settled pool succeeded")
				}
			})
		}
	}
}

func TestEventTrail(t *testing.T) {
	f := newPoolFixture(t, escrow.StakeRefund)
	p := f.createPool(t, 5000)
	cand, credID := f.newCandidate(t, 7)
	ctx := context.Background()

	if _, err := f.uc.Apply(ctx, cand, ApplyInput{PoolID: p.ID, CredentialIDs: []int64{credID}, StakeAmount: 100}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.uc.Select(ctx, f.company, p.ID, cand); err != nil {
		t.Fatalf("select: %v", err)
	}

	for _, want := range []event.Type{event.TypePoolCreated, event.TypeApplicationSubmitted, event.TypeCandidateSelected} {
		if f.events.countOf(want) != 1 {
			t.Fatalf("event %s recorded %d times, want 1", want, f.events.countOf(want))
		}
	}
}
