// Package escrow builds settlements: the exact list of transfers and
// status updates that release a pool's escrowed funds. Builders are pure;
// applying a settlement atomically is the store's job.
package escrow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"talent-ledger/internal/domain/pool"
)

// Fee rates are expressed in basis points and bounded to 10%.
const (
	FeeScaleBP   = 10000
	MaxFeeRateBP = 1000
)

var (
	ErrNoPendingApplication = errors.New("no pending application for candidate")
	ErrImbalance            = errors.New("settlement does not conserve escrowed funds")
)

// StakePolicy decides what happens to the selected candidate's own stake.
type StakePolicy string

const (
	// StakeRefund returns the selected candidate's stake alongside the payout.
	StakeRefund StakePolicy = "REFUND"
	// StakeForfeit sends the selected candidate's stake to the fee collector.
	StakeForfeit StakePolicy = "FORFEIT"
)

func ParseStakePolicy(s string) (StakePolicy, error) {
	p := StakePolicy(s)
	switch p {
	case StakeRefund, StakeForfeit:
		return p, nil
	}
	return "", fmt.Errorf("unknown stake policy %q", s)
}

type TransferKind string

const (
	KindPayout TransferKind = "PAYOUT"
	KindFee    TransferKind = "FEE"
	KindRefund TransferKind = "REFUND"
)

type Transfer struct {
	To     uuid.UUID
	Amount int64
	Kind   TransferKind
}

type ApplicationUpdate struct {
	Candidate uuid.UUID
	Status    pool.ApplicationStatus
}

// Settlement is the full effect of one terminal transition. FromStatus
// is the guard the store checks when applying: the pool row must still
// be in that status, which makes payout exactly-once.
type Settlement struct {
	PoolID            int64
	FromStatus        pool.Status
	ToStatus          pool.Status
	SelectedCandidate *uuid.UUID
	Transfers         []Transfer
	Applications      []ApplicationUpdate
}

// TotalOut sums every transfer in the settlement.
func (s Settlement) TotalOut() int64 {
	var total int64
	for _, t := range s.Transfers {
		total += t.Amount
	}
	return total
}

// FeeSplit computes the platform cut of a pool stake.
// fee = floor(stake * rateBP / 10000), payout = stake - fee.
func FeeSplit(stake int64, feeRateBP int) (payout, fee int64) {
	if feeRateBP < 0 {
		feeRateBP = 0
	}
	if feeRateBP > MaxFeeRateBP {
		feeRateBP = MaxFeeRateBP
	}
	fee = stake * int64(feeRateBP) / FeeScaleBP
	return stake - fee, fee
}

// BuildSelection produces the settlement for selecting one candidate:
// the pool stake is paid out minus the platform fee, every other pending
// applicant is refunded, and the selected candidate's own stake follows
// the configured policy.
func BuildSelection(p pool.Pool, apps []pool.Application, selected, feeCollector uuid.UUID, policy StakePolicy) (Settlement, error) {
	s := Settlement{
		PoolID:            p.ID,
		FromStatus:        pool.StatusActive,
		ToStatus:          pool.StatusCompleted,
		SelectedCandidate: &selected,
	}

	var selectedApp *pool.Application
	for i := range apps {
		if apps[i].Status != pool.ApplicationPending {
			continue
		}
		if apps[i].Candidate == selected {
			selectedApp = &apps[i]
		}
	}
	if selectedApp == nil {
		return Settlement{}, ErrNoPendingApplication
	}

	payout, fee := FeeSplit(p.StakeAmount, p.FeeRateBP)
	s.Transfers = append(s.Transfers, Transfer{To: selected, Amount: payout, Kind: KindPayout})
	if fee > 0 {
		s.Transfers = append(s.Transfers, Transfer{To: feeCollector, Amount: fee, Kind: KindFee})
	}

	switch policy {
	case StakeForfeit:
		if selectedApp.StakeAmount > 0 {
			s.Transfers = append(s.Transfers, Transfer{To: feeCollector, Amount: selectedApp.StakeAmount, Kind: KindFee})
		}
	default:
		if selectedApp.StakeAmount > 0 {
			s.Transfers = append(s.Transfers, Transfer{To: selected, Amount: selectedApp.StakeAmount, Kind: KindRefund})
		}
	}

	for i := range apps {
		if apps[i].Status != pool.ApplicationPending {
			continue
		}
		if apps[i].Candidate == selected {
			s.Applications = append(s.Applications, ApplicationUpdate{Candidate: selected, Status: pool.ApplicationAccepted})
			continue
		}
		s.Applications = append(s.Applications, ApplicationUpdate{Candidate: apps[i].Candidate, Status: pool.ApplicationRejected})
		if apps[i].StakeAmount > 0 {
			s.Transfers = append(s.Transfers, Transfer{To: apps[i].Candidate, Amount: apps[i].StakeAmount, Kind: KindRefund})
		}
	}

	if err := verify(s, p, apps); err != nil {
		return Settlement{}, err
	}
	return s, nil
}

// BuildRelease produces the settlement for closing or expiring a pool:
// the company stake and every pending applicant's stake are refunded in
// full. toStatus must be CANCELLED or EXPIRED.
func BuildRelease(p pool.Pool, apps []pool.Application, toStatus pool.Status) (Settlement, error) {
	if toStatus != pool.StatusCancelled && toStatus != pool.StatusExpired {
		return Settlement{}, fmt.Errorf("release cannot target status %s", toStatus)
	}

	s := Settlement{
		PoolID:     p.ID,
		FromStatus: p.Status,
		ToStatus:   toStatus,
	}

	if p.StakeAmount > 0 {
		s.Transfers = append(s.Transfers, Transfer{To: p.Company, Amount: p.StakeAmount, Kind: KindRefund})
	}
	for i := range apps {
		if apps[i].Status != pool.ApplicationPending {
			continue
		}
		s.Applications = append(s.Applications, ApplicationUpdate{Candidate: apps[i].Candidate, Status: pool.ApplicationRejected})
		if apps[i].StakeAmount > 0 {
			s.Transfers = append(s.Transfers, Transfer{To: apps[i].Candidate, Amount: apps[i].StakeAmount, Kind: KindRefund})
		}
	}

	if err := verify(s, p, apps); err != nil {
		return Settlement{}, err
	}
	return s, nil
}

// verify enforces conservation: the settlement must move exactly the
// pool stake plus every pending applicant's stake, nothing more and
// nothing less. A violation here is a fatal bug, never caller error.
func verify(s Settlement, p pool.Pool, apps []pool.Application) error {
	escrowed := p.StakeAmount
	for i := range apps {
		if apps[i].Status == pool.ApplicationPending {
			escrowed += apps[i].StakeAmount
		}
	}
	if out := s.TotalOut(); out != escrowed {
		return fmt.Errorf("%w: escrowed=%d transfers=%d", ErrImbalance, escrowed, out)
	}
	return nil
}
