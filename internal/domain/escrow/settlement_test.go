package escrow

import (
	"testing"

	"github.com/google/uuid"

	"talent-ledger/internal/domain/pool"
)

func TestFeeSplit(t *testing.T) {
	cases := []struct {
		stake       int64
		rateBP      int
		payout, fee int64
	}{
		{1000, 250, 975, 25},
		{1000, 0, 1000, 0},
		{1000, 1000, 900, 100},
		{1000, 5000, 900, 100}, // clamped to the 10% bound
		{999, 250, 975, 24},    // floor division
		{1, 250, 1, 0},
	}
	for _, c := range cases {
		payout, fee := FeeSplit(c.stake, c.rateBP)
		if payout != c.payout || fee != c.fee {
			t.Errorf("FeeSplit(%d, %d) = (%d, %d), want (%d, %d)",
				c.stake, c.rateBP, payout, fee, c.payout, c.fee)
		}
		if payout+fee != c.stake {
			t.Errorf("FeeSplit(%d, %d) lost funds: %d + %d != %d",
				c.stake, c.rateBP, payout, fee, c.stake)
		}
	}
}

func testPool(company uuid.UUID, stake int64, rateBP int) pool.Pool {
	return pool.Pool{
		ID:          1,
		Company:     company,
		StakeAmount: stake,
		FeeRateBP:   rateBP,
		Status:      pool.StatusActive,
	}
}

func pendingApp(candidate uuid.UUID, stake int64) pool.Application {
	return pool.Application{
		PoolID:      1,
		Candidate:   candidate,
		StakeAmount: stake,
		Status:      pool.ApplicationPending,
	}
}

func TestBuildSelection_RefundPolicy(t *testing.T) {
	company := uuid.New()
	winner := uuid.New()
	loser := uuid.New()
	collector := uuid.New()

	p := testPool(company, 1000, 250)
	apps := []pool.Application{pendingApp(winner, 100), pendingApp(loser, 50)}

	s, err := BuildSelection(p, apps, winner, collector, StakeRefund)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if s.ToStatus != pool.StatusCompleted || s.FromStatus != pool.StatusActive {
		t.Fatalf("unexpected transition %s -> %s", s.FromStatus, s.ToStatus)
	}
	if s.SelectedCandidate == nil || *s.SelectedCandidate != winner {
		t.Fatal("selected candidate not recorded")
	}

	if got := s.TotalOut(); got != 1150 {
		t.Fatalf("total out = %d, want 1150", got)
	}

	var winnerGot, collectorGot, loserGot int64
	for _, tr := range s.Transfers {
		switch tr.To {
		case winner:
			winnerGot += tr.Amount
		case collector:
			collectorGot += tr.Amount
		case loser:
			loserGot += tr.Amount
		}
	}
	// payout 975 + own stake back 100
	if winnerGot != 1075 {
		t.Errorf("winner received %d, want 1075", winnerGot)
	}
	if collectorGot != 25 {
		t.Errorf("collector received %d, want 25", collectorGot)
	}
	if loserGot != 50 {
		t.Errorf("loser refund %d, want 50", loserGot)
	}

	statuses := map[uuid.UUID]pool.ApplicationStatus{}
	for _, au := range s.Applications {
		statuses[au.Candidate] = au.Status
	}
	if statuses[winner] != pool.ApplicationAccepted {
		t.Error("winner application should be ACCEPTED")
	}
	if statuses[loser] != pool.ApplicationRejected {
		t.Error("loser application should be REJECTED")
	}
}

func TestBuildSelection_ForfeitPolicy(t *testing.T) {
	company := uuid.New()
	winner := uuid.New()
	collector := uuid.New()

	p := testPool(company, 1000, 250)
	apps := []pool.Application{pendingApp(winner, 100)}

	s, err := BuildSelection(p, apps, winner, collector, StakeForfeit)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var winnerGot, collectorGot int64
	for _, tr := range s.Transfers {
		switch tr.To {
		case winner:
			winnerGot += tr.Amount
		case collector:
			collectorGot += tr.Amount
		}
	}
	if winnerGot != 975 {
		t.Errorf("winner received %d, want 975 (payout only)", winnerGot)
	}
	if collectorGot != 125 {
		t.Errorf("collector received %d, want 125 (fee + forfeited stake)", collectorGot)
	}
	if s.TotalOut() != 1100 {
		t.Errorf("total out = %d, want 1100", s.TotalOut())
	}
}

func TestBuildSelection_CandidateWithoutPendingApplication(t *testing.T) {
	p := testPool(uuid.New(), 1000, 250)
	withdrawn := pendingApp(uuid.New(), 100)
	withdrawn.Status = pool.ApplicationWithdrawn

	_, err := BuildSelection(p, []pool.Application{withdrawn}, withdrawn.Candidate, uuid.New(), StakeRefund)
	if err != ErrNoPendingApplication {
		t.Fatalf("expected ErrNoPendingApplication, got %v", err)
	}
}

func TestBuildSelection_WithdrawnStakesStayOut(t *testing.T) {
	// A withdrawn applicant was refunded at withdrawal time; settling the
	// pool must not pay them again.
	winner := uuid.New()
	gone := uuid.New()

	p := testPool(uuid.New(), 1000, 0)
	withdrawn := pendingApp(gone, 500)
	withdrawn.Status = pool.ApplicationWithdrawn
	apps := []pool.Application{pendingApp(winner, 100), withdrawn}

	s, err := BuildSelection(p, apps, winner, uuid.New(), StakeRefund)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, tr := range s.Transfers {
		if tr.To == gone {
			t.Fatalf("withdrawn applicant received %d", tr.Amount)
		}
	}
	if s.TotalOut() != 1100 {
		t.Fatalf("total out = %d, want 1100", s.TotalOut())
	}
}

func TestBuildRelease_RefundsEveryone(t *testing.T) {
	company := uuid.New()
	a := uuid.New()
	b := uuid.New()

	p := testPool(company, 1000, 250)
	apps := []pool.Application{pendingApp(a, 100), pendingApp(b, 200)}

	s, err := BuildRelease(p, apps, pool.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.ToStatus != pool.StatusCancelled {
		t.Fatalf("unexpected target status %s", s.ToStatus)
	}
	if s.SelectedCandidate != nil {
		t.Fatal("release must not select anyone")
	}
	if s.TotalOut() != 1300 {
		t.Fatalf("total out = %d, want 1300", s.TotalOut())
	}

	got := map[uuid.UUID]int64{}
	for _, tr := range s.Transfers {
		if tr.Kind != KindRefund {
			t.Errorf("release produced non-refund transfer %s", tr.Kind)
		}
		got[tr.To] += tr.Amount
	}
	if got[company] != 1000 || got[a] != 100 || got[b] != 200 {
		t.Fatalf("unexpected refunds: %v", got)
	}
}

func TestBuildRelease_RejectsNonTerminalTarget(t *testing.T) {
	p := testPool(uuid.New(), 1000, 0)
	if _, err := BuildRelease(p, nil, pool.StatusCompleted); err == nil {
		t.Fatal("COMPLETED is reachable only through selection")
	}
	if _, err := BuildRelease(p, nil, pool.StatusActive); err == nil {
		t.Fatal("release cannot target a non-terminal status")
	}
}

func TestParseStakePolicy(t *testing.T) {
	if _, err := ParseStakePolicy("REFUND"); err != nil {
		t.Error("REFUND should parse")
	}
	if _, err := ParseStakePolicy("FORFEIT"); err != nil {
		t.Error("FORFEIT should parse")
	}
	if _, err := ParseStakePolicy("BURN"); err == nil {
		t.Error("BURN should not parse")
	}
}
