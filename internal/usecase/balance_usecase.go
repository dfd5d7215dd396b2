package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
)

// BalanceUseCase handles register balance reads and funding.
type BalanceUseCase struct {
	txManager   TransactionManager
	balanceRepo BalanceRepository
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(txManager TransactionManager, balanceRepo BalanceRepository) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
	}
}

// GetBalance returns the current register balance.
func (uc *BalanceUseCase) GetBalance(ctx context.Context) (*domain.Balance, error) {
	return uc.balanceRepo.Get(ctx)
}

// FundInput represents a cash injection into the register.
type FundInput struct {
	Pesos   decimal.Decimal
	Dollars decimal.Decimal
}

// Fund adds cash to the register. Both amounts must be non-negative;
// funding is additive and never fails the sufficiency check.
func (uc *BalanceUseCase) Fund(ctx context.Context, input FundInput) (*domain.Balance, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := balance.Fund(input.Pesos, input.Dollars); err != nil {
		return nil, err
	}
	balance.UpdatedAt = time.Now().UTC()

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return balance, nil
}
