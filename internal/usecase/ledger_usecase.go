package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
)

// LedgerUseCase handles registration, edit and deletion of exchange
// operations. Every mutating path runs inside one database transaction
// that locks the register balance row, so the funds check and both
// writes are atomic.
type LedgerUseCase struct {
	txManager   TransactionManager
	balanceRepo BalanceRepository
	txnRepo     TransactionRepository
	rates       *RateUseCase
	idGen       IDGenerator
	retrier     Retrier
	metrics     MetricsRecorder
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	txnRepo TransactionRepository,
	rates *RateUseCase,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
		txnRepo:     txnRepo,
		rates:       rates,
		idGen:       idGen,
	}
}

// RegisterTransactionInput represents input for registering an
// operation. When UseMarketRate is set the rate is taken from the
// reference rate source instead of Rate.
type RegisterTransactionInput struct {
	Kind           domain.Kind
	Amount         decimal.Decimal
	Rate           decimal.Decimal
	UseMarketRate  bool
	CommissionRate decimal.Decimal
	DiscountRate   decimal.Decimal
	FeeBearer      domain.FeeBearer
	Concept        string
}

// WithRetrier configures a retrier for lock conflicts. Returns the
// use case for chaining.
func (uc *LedgerUseCase) WithRetrier(retrier Retrier) *LedgerUseCase {
	uc.retrier = retrier
	return uc
}

// WithMetrics configures a business metrics recorder. Returns the use
// case for chaining.
func (uc *LedgerUseCase) WithMetrics(metrics MetricsRecorder) *LedgerUseCase {
	uc.metrics = metrics
	return uc
}

// retry runs op through the configured retrier, or directly when none
// is set.
func (uc *LedgerUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

// RegisterTransaction computes the operation's impact, checks funds and
// appends it to the ledger, updating the balance in the same database
// transaction.
func (uc *LedgerUseCase) RegisterTransaction(ctx context.Context, input RegisterTransactionInput) (*domain.Transaction, error) {
	var txn *domain.Transaction

	err := uc.retry(ctx, func() error {
		var err error
		txn, err = uc.registerOnce(ctx, input)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransactionRejected(input.Kind)
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionRegistered(txn.Kind)
	}

	return txn, nil
}

func (uc *LedgerUseCase) registerOnce(ctx context.Context, input RegisterTransactionInput) (*domain.Transaction, error) {
	rate, err := uc.resolveRate(ctx, input)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	costBasis := decimal.Zero
	if input.Kind.IsSale() {
		costBasis, err = uc.txnRepo.LatestBuyRate(ctx, tx, input.Kind.CostBasisKind(), "")
		if err != nil {
			return nil, err
		}
	}

	impact, err := domain.ComputeImpact(domain.ImpactInput{
		Kind:           input.Kind,
		Amount:         input.Amount,
		Rate:           rate,
		CostBasisRate:  costBasis,
		CommissionRate: input.CommissionRate,
		DiscountRate:   input.DiscountRate,
		FeeBearer:      input.FeeBearer,
	})
	if err != nil {
		return nil, err
	}

	if err := balance.CanApply(impact); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:               uc.idGen.Generate(),
		Kind:             input.Kind,
		Amount:           input.Amount,
		Rate:             rate,
		CostBasisRate:    costBasis,
		CommissionRate:   input.CommissionRate,
		DiscountRate:     input.DiscountRate,
		FeeBearer:        input.FeeBearer,
		CommissionEarned: impact.Commission,
		DiscountEarned:   impact.Discount,
		PesosDelta:       impact.Pesos,
		DollarsDelta:     impact.Dollars,
		Concept:          input.Concept,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	balance.Apply(impact)
	balance.UpdatedAt = now

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return txn, nil
}

// EditTransaction reverses the stored impact of an existing operation,
// recomputes the impact for the new parameters and applies it, all in
// one database transaction. Either funds check failing leaves both the
// transaction and the balance untouched.
func (uc *LedgerUseCase) EditTransaction(ctx context.Context, id string, input RegisterTransactionInput) (*domain.Transaction, error) {
	var txn *domain.Transaction

	err := uc.retry(ctx, func() error {
		var err error
		txn, err = uc.editOnce(ctx, id, input)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransactionRejected(input.Kind)
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionEdited(txn.Kind)
	}

	return txn, nil
}

func (uc *LedgerUseCase) editOnce(ctx context.Context, id string, input RegisterTransactionInput) (*domain.Transaction, error) {
	rate, err := uc.resolveRate(ctx, input)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	reversal := txn.AppliedImpact().Reversal()
	if err := balance.CanApply(reversal); err != nil {
		return nil, err
	}
	balance.Apply(reversal)

	costBasis := decimal.Zero
	if input.Kind.IsSale() {
		// The edited row must not serve as its own cost basis.
		costBasis, err = uc.txnRepo.LatestBuyRate(ctx, tx, input.Kind.CostBasisKind(), id)
		if err != nil {
			return nil, err
		}
	}

	impact, err := domain.ComputeImpact(domain.ImpactInput{
		Kind:           input.Kind,
		Amount:         input.Amount,
		Rate:           rate,
		CostBasisRate:  costBasis,
		CommissionRate: input.CommissionRate,
		DiscountRate:   input.DiscountRate,
		FeeBearer:      input.FeeBearer,
	})
	if err != nil {
		return nil, err
	}

	if err := balance.CanApply(impact); err != nil {
		return nil, err
	}
	balance.Apply(impact)

	now := time.Now().UTC()
	txn.Kind = input.Kind
	txn.Amount = input.Amount
	txn.Rate = rate
	txn.CostBasisRate = costBasis
	txn.CommissionRate = input.CommissionRate
	txn.DiscountRate = input.DiscountRate
	txn.FeeBearer = input.FeeBearer
	txn.CommissionEarned = impact.Commission
	txn.DiscountEarned = impact.Discount
	txn.PesosDelta = impact.Pesos
	txn.DollarsDelta = impact.Dollars
	txn.Concept = input.Concept
	txn.UpdatedAt = now

	if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	balance.UpdatedAt = now
	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return txn, nil
}

// DeleteTransaction reverses the stored impact and removes the
// transaction from the ledger atomically.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, id string) error {
	var kind domain.Kind

	err := uc.retry(ctx, func() error {
		k, err := uc.deleteOnce(ctx, id)
		kind = k
		return err
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionDeleted(kind)
	}

	return nil
}

func (uc *LedgerUseCase) deleteOnce(ctx context.Context, id string) (domain.Kind, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return "", err
	}

	txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return "", err
	}

	reversal := txn.AppliedImpact().Reversal()
	if err := balance.CanApply(reversal); err != nil {
		return "", err
	}

	if err := uc.txnRepo.Delete(ctx, tx, id); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	balance.Apply(reversal)
	balance.UpdatedAt = time.Now().UTC()

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return txn.Kind, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// QueryTransactions lists ledger transactions, newest first.
func (uc *LedgerUseCase) QueryTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultQueryLimit
	}

	if filter.Limit > MaxQueryLimit {
		filter.Limit = MaxQueryLimit
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return uc.txnRepo.Query(ctx, filter)
}

// resolveRate picks the manually entered rate or fetches the market
// quote when the input elects it. The fetch happens before the database
// transaction starts so no blocking I/O runs while the balance row is
// locked.
func (uc *LedgerUseCase) resolveRate(ctx context.Context, input RegisterTransactionInput) (decimal.Decimal, error) {
	if !input.UseMarketRate {
		return input.Rate, nil
	}

	if !input.Kind.IsConversion() {
		return input.Rate, nil
	}

	if uc.rates == nil {
		return decimal.Zero, domain.ErrRateUnavailable
	}

	quote, err := uc.rates.MarketRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return quote.RateFor(input.Kind), nil
}
