package domain

import "github.com/shopspring/decimal"

// Impact is the signed change one transaction causes on the register
// balance, plus the commission and discount realized by the desk.
type Impact struct {
	Pesos      decimal.Decimal
	Dollars    decimal.Decimal
	Commission decimal.Decimal
	Discount   decimal.Decimal
}

// Reversal returns the exact algebraic inverse of the impact. Applying
// an impact followed by its reversal restores the balance bit for bit,
// because the reversal negates the already quantized deltas instead of
// recomputing them.
func (i Impact) Reversal() Impact {
	return Impact{
		Pesos:      i.Pesos.Neg(),
		Dollars:    i.Dollars.Neg(),
		Commission: i.Commission.Neg(),
		Discount:   i.Discount.Neg(),
	}
}

// ImpactInput carries the parameters of one operation into the impact
// calculator. CostBasisRate is only consulted for sale kinds and holds
// the rate of the most recent matching purchase.
type ImpactInput struct {
	Kind           Kind
	Amount         decimal.Decimal
	Rate           decimal.Decimal
	CostBasisRate  decimal.Decimal
	CommissionRate decimal.Decimal
	DiscountRate   decimal.Decimal
	FeeBearer      FeeBearer
}

// Validate checks the input constraints of the impact calculator.
func (in ImpactInput) Validate() error {
	if !in.Kind.IsValid() {
		return ErrInvalidKind
	}

	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if in.Kind.IsConversion() && in.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	if in.Kind.IsSale() && in.CostBasisRate.LessThanOrEqual(decimal.Zero) {
		return ErrNoCostBasis
	}

	if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidCommissionRate
	}

	if in.DiscountRate.IsNegative() || in.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidDiscountRate
	}

	if in.Kind == KindCashToCash && !in.FeeBearer.IsValid() {
		return ErrInvalidFeeBearer
	}

	return nil
}

// ComputeImpact maps one operation to the signed deltas it applies to
// the two-currency register balance. Every monetary result is quantized
// to two decimal places, round half up, before signs are applied.
func ComputeImpact(in ImpactInput) (Impact, error) {
	if err := in.Validate(); err != nil {
		return Impact{}, err
	}

	amount := quantize(in.Amount)

	switch in.Kind {
	case KindBuyDollars:
		// Desk pays pesos, receives dollars.
		return Impact{
			Pesos:   quantize(in.Amount.Mul(in.Rate)).Neg(),
			Dollars: amount,
		}, nil

	case KindSellDollars:
		// Desk hands out dollars; only the margin over the cost basis
		// is booked as a pesos gain (or loss, when sold below cost).
		margin := in.Rate.Sub(in.CostBasisRate)

		return Impact{
			Pesos:   quantizeSigned(in.Amount.Mul(margin)),
			Dollars: amount.Neg(),
		}, nil

	case KindBuyPesos:
		return Impact{
			Pesos:   amount,
			Dollars: quantize(in.Amount.Div(in.Rate)).Neg(),
		}, nil

	case KindSellPesos:
		return Impact{
			Pesos:   amount.Neg(),
			Dollars: quantize(in.Amount.Div(in.Rate)),
		}, nil

	case KindWireOut:
		// Client wires dollars out and covers the commission on top, so
		// the register takes in the principal plus the fee.
		fee := quantize(in.Amount.Mul(in.CommissionRate))

		return Impact{
			Dollars:    amount.Add(fee),
			Commission: fee,
		}, nil

	case KindWireIn:
		// Client receives the wired amount net of commission.
		fee := quantize(in.Amount.Mul(in.CommissionRate))

		return Impact{
			Dollars:    amount.Sub(fee).Neg(),
			Commission: fee,
		}, nil

	case KindCashToCash:
		fee := quantize(in.Amount.Mul(in.CommissionRate))

		disbursed := amount.Sub(fee)
		if in.FeeBearer == FeeBearerSender {
			disbursed = amount.Add(fee)
		}

		return Impact{
			Dollars:    disbursed.Neg(),
			Commission: fee,
		}, nil

	case KindCheckDiscount:
		// Desk cashes the check for its face value minus the discount.
		dsc := quantize(in.Amount.Mul(in.DiscountRate))

		return Impact{
			Pesos:    amount.Sub(dsc).Neg(),
			Discount: dsc,
		}, nil
	}

	return Impact{}, ErrInvalidKind
}

// quantize rounds a non-negative monetary value to cents. Round is
// half away from zero, which is half up for non-negative inputs.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// quantizeSigned rounds a value that may be negative, keeping the half
// up convention on the magnitude.
func quantizeSigned(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return quantize(d.Neg()).Neg()
	}

	return quantize(d)
}
