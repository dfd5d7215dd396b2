package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/cambiodesk/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the live balance does not
	// equal the funded totals plus the sum of applied deltas.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balance does not match applied deltas")
)

// StatsUseCase handles ledger-wide checks and statistics.
type StatsUseCase struct {
	balanceRepo BalanceRepository
	txnRepo     TransactionRepository
}

// NewStatsUseCase creates a new StatsUseCase.
func NewStatsUseCase(balanceRepo BalanceRepository, txnRepo TransactionRepository) *StatsUseCase {
	return &StatsUseCase{
		balanceRepo: balanceRepo,
		txnRepo:     txnRepo,
	}
}

// CheckConsistency recomputes the balance from the ledger and compares
// it against the live register row. The balance is maintained
// incrementally, so any drift here means a mutation path failed to
// apply the exact inverse of what it previously applied.
func (uc *StatsUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	balance, err := uc.balanceRepo.Get(ctx)
	if err != nil {
		return false, err
	}

	pesosSum, dollarsSum, err := uc.txnRepo.SumDeltas(ctx)
	if err != nil {
		return false, err
	}

	expectedPesos := balance.PesosFunded.Add(pesosSum)
	expectedDollars := balance.DollarsFunded.Add(dollarsSum)

	if !balance.Pesos.Equal(expectedPesos) || !balance.Dollars.Equal(expectedDollars) {
		return false, ErrInconsistentLedger
	}

	return true, nil
}

// EarningsStats is the aggregate view of desk earnings.
type EarningsStats struct {
	Totals *domain.Earnings
	Daily  []*domain.DailyEarnings
}

// Earnings aggregates realized commission, discount and sale margin,
// with an optional per-day series over [from, to].
func (uc *StatsUseCase) Earnings(ctx context.Context, from, to time.Time) (*EarningsStats, error) {
	totals, err := uc.txnRepo.EarnedTotals(ctx)
	if err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = time.Now().UTC()
	}

	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	daily, err := uc.txnRepo.EarnedByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &EarningsStats{Totals: totals, Daily: daily}, nil
}
