package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// RegisterTransactionRequest represents a request to register a desk
// operation.
type RegisterTransactionRequest struct {
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Rate           decimal.Decimal `json:"rate"`
	UseMarketRate  bool            `json:"use_market_rate,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate,omitempty"`
	DiscountRate   decimal.Decimal `json:"discount_rate,omitempty"`
	FeeBearer      string          `json:"fee_bearer,omitempty"`
	Concept        string          `json:"concept,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterTransactionRequest) ToUseCaseInput() usecase.RegisterTransactionInput {
	return usecase.RegisterTransactionInput{
		Kind:           domain.Kind(r.Kind),
		Amount:         r.Amount,
		Rate:           r.Rate,
		UseMarketRate:  r.UseMarketRate,
		CommissionRate: r.CommissionRate,
		DiscountRate:   r.DiscountRate,
		FeeBearer:      domain.FeeBearer(r.FeeBearer),
		Concept:        r.Concept,
	}
}

// FundBalanceRequest represents a cash injection into the register.
type FundBalanceRequest struct {
	Pesos   decimal.Decimal `json:"pesos"`
	Dollars decimal.Decimal `json:"dollars"`
}

// ToUseCaseInput converts to use case input.
func (r *FundBalanceRequest) ToUseCaseInput() usecase.FundInput {
	return usecase.FundInput{
		Pesos:   r.Pesos,
		Dollars: r.Dollars,
	}
}

// TransactionFilterRequest carries history query parameters.
type TransactionFilterRequest struct {
	Kind    string
	Concept string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// ToDomainFilter converts to a domain filter.
func (r *TransactionFilterRequest) ToDomainFilter() domain.TransactionFilter {
	filter := domain.TransactionFilter{
		ConceptContains: r.Concept,
		From:            r.From,
		To:              r.To,
		Limit:           r.Limit,
		Offset:          r.Offset,
	}
	if r.Kind != "" {
		kind := domain.Kind(r.Kind)
		filter.Kind = &kind
	}

	return filter
}
