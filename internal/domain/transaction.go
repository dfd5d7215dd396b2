package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the type of exchange-desk operation.
type Kind string

const (
	KindBuyDollars    Kind = "buy_dollars"
	KindSellDollars   Kind = "sell_dollars"
	KindBuyPesos      Kind = "buy_pesos"
	KindSellPesos     Kind = "sell_pesos"
	KindWireOut       Kind = "wire_out"
	KindWireIn        Kind = "wire_in"
	KindCashToCash    Kind = "cash_to_cash"
	KindCheckDiscount Kind = "check_discount"
)

var validKinds = map[Kind]bool{
	KindBuyDollars:    true,
	KindSellDollars:   true,
	KindBuyPesos:      true,
	KindSellPesos:     true,
	KindWireOut:       true,
	KindWireIn:        true,
	KindCashToCash:    true,
	KindCheckDiscount: true,
}

// IsValid checks if the kind is a known transaction kind.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// IsConversion reports whether the kind exchanges one currency for the
// other and therefore requires a positive exchange rate.
func (k Kind) IsConversion() bool {
	switch k {
	case KindBuyDollars, KindSellDollars, KindBuyPesos, KindSellPesos:
		return true
	}

	return false
}

// IsSale reports whether the kind sells previously acquired currency
// and therefore needs a cost basis.
func (k Kind) IsSale() bool {
	return k == KindSellDollars || k == KindSellPesos
}

// CostBasisKind returns the purchase kind whose most recent rate serves
// as the cost basis for a sale.
func (k Kind) CostBasisKind() Kind {
	switch k {
	case KindSellDollars:
		return KindBuyDollars
	case KindSellPesos:
		return KindBuyPesos
	}

	return ""
}

// BearsCommission reports whether the kind charges a commission.
func (k Kind) BearsCommission() bool {
	switch k {
	case KindWireOut, KindWireIn, KindCashToCash:
		return true
	}

	return false
}

// FeeBearer identifies who covers the commission on a cash-to-cash
// transfer.
type FeeBearer string

const (
	// FeeBearerSender pays the fee on top; the desk disburses the full
	// amount plus the commission it collected on the sending side.
	FeeBearerSender FeeBearer = "sender"

	// FeeBearerBeneficiary has the fee deducted; the desk disburses the
	// amount net of commission.
	FeeBearerBeneficiary FeeBearer = "beneficiary"
)

// IsValid checks if the fee bearer is a known value.
func (f FeeBearer) IsValid() bool {
	return f == FeeBearerSender || f == FeeBearerBeneficiary
}

// Transaction is a ledger entry for one exchange-desk operation. The
// applied deltas and realized earnings are stored alongside the input
// parameters so a later edit or delete can reverse exactly what was
// applied.
type Transaction struct {
	ID               string
	Kind             Kind
	Amount           decimal.Decimal
	Rate             decimal.Decimal
	CostBasisRate    decimal.Decimal
	CommissionRate   decimal.Decimal
	DiscountRate     decimal.Decimal
	FeeBearer        FeeBearer
	CommissionEarned decimal.Decimal
	DiscountEarned   decimal.Decimal
	PesosDelta       decimal.Decimal
	DollarsDelta     decimal.Decimal
	Concept          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppliedImpact reconstructs the impact this transaction had on the
// register balance from its stored deltas.
func (t *Transaction) AppliedImpact() Impact {
	return Impact{
		Pesos:      t.PesosDelta,
		Dollars:    t.DollarsDelta,
		Commission: t.CommissionEarned,
		Discount:   t.DiscountEarned,
	}
}

// TransactionFilter narrows a ledger query. Nil or zero fields are
// ignored; provided fields are combined as a conjunction.
type TransactionFilter struct {
	Kind            *Kind
	ConceptContains string
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}
