package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the desk's two-currency cash-on-hand register. A single
// mutable row; funded totals are tracked separately so the ledger can
// be checked against the invariant
//
//	pesos = pesos_funded + sum(pesos_delta)
//	dollars = dollars_funded + sum(dollars_delta)
type Balance struct {
	ID            string
	Pesos         decimal.Decimal
	Dollars       decimal.Decimal
	PesosFunded   decimal.Decimal
	DollarsFunded decimal.Decimal
	UpdatedAt     time.Time
}

// CanApply checks whether applying the impact would keep both balances
// non-negative.
func (b *Balance) CanApply(imp Impact) error {
	if b.Pesos.Add(imp.Pesos).IsNegative() {
		return ErrInsufficientFunds
	}

	if b.Dollars.Add(imp.Dollars).IsNegative() {
		return ErrInsufficientFunds
	}

	return nil
}

// Apply mutates the balance by the impact's deltas. Callers must have
// passed CanApply first; Apply itself does not re-check.
func (b *Balance) Apply(imp Impact) {
	b.Pesos = b.Pesos.Add(imp.Pesos)
	b.Dollars = b.Dollars.Add(imp.Dollars)
}

// Fund adds cash to the register. Both amounts must be non-negative;
// funding never requires a sufficiency check.
func (b *Balance) Fund(pesos, dollars decimal.Decimal) error {
	if pesos.IsNegative() || dollars.IsNegative() {
		return ErrInvalidAmount
	}

	b.Pesos = b.Pesos.Add(pesos)
	b.Dollars = b.Dollars.Add(dollars)
	b.PesosFunded = b.PesosFunded.Add(pesos)
	b.DollarsFunded = b.DollarsFunded.Add(dollars)

	return nil
}
