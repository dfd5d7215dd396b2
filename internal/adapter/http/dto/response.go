package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	Rate             decimal.Decimal `json:"rate"`
	CostBasisRate    decimal.Decimal `json:"cost_basis_rate"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	FeeBearer        string          `json:"fee_bearer,omitempty"`
	CommissionEarned decimal.Decimal `json:"commission_earned"`
	DiscountEarned   decimal.Decimal `json:"discount_earned"`
	PesosDelta       decimal.Decimal `json:"pesos_delta"`
	DollarsDelta     decimal.Decimal `json:"dollars_delta"`
	Concept          string          `json:"concept,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		Kind:             string(t.Kind),
		Amount:           t.Amount,
		Rate:             t.Rate,
		CostBasisRate:    t.CostBasisRate,
		CommissionRate:   t.CommissionRate,
		DiscountRate:     t.DiscountRate,
		FeeBearer:        string(t.FeeBearer),
		CommissionEarned: t.CommissionEarned,
		DiscountEarned:   t.DiscountEarned,
		PesosDelta:       t.PesosDelta,
		DollarsDelta:     t.DollarsDelta,
		Concept:          t.Concept,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents the register balance in API responses.
type BalanceResponse struct {
	Pesos         decimal.Decimal `json:"pesos"`
	Dollars       decimal.Decimal `json:"dollars"`
	PesosFunded   decimal.Decimal `json:"pesos_funded"`
	DollarsFunded decimal.Decimal `json:"dollars_funded"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts the domain balance to a response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		Pesos:         b.Pesos,
		Dollars:       b.Dollars,
		PesosFunded:   b.PesosFunded,
		DollarsFunded: b.DollarsFunded,
		UpdatedAt:     b.UpdatedAt,
	}
}

// QuoteResponse represents a market reference rate in API responses.
type QuoteResponse struct {
	Buy       decimal.Decimal `json:"buy"`
	Sell      decimal.Decimal `json:"sell"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// QuoteFromDomain converts a domain quote to a response.
func QuoteFromDomain(q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		Buy:       q.Buy,
		Sell:      q.Sell,
		FetchedAt: q.FetchedAt,
	}
}

// ConsistencyResponse reports the ledger consistency check result.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// EarningsResponse represents realized gains totals.
type EarningsResponse struct {
	Commission decimal.Decimal `json:"commission"`
	Discount   decimal.Decimal `json:"discount"`
	Margin     decimal.Decimal `json:"margin"`
}

// DailyEarningsResponse is one day of realized gains.
type DailyEarningsResponse struct {
	Day        string          `json:"day"`
	Commission decimal.Decimal `json:"commission"`
	Discount   decimal.Decimal `json:"discount"`
	Margin     decimal.Decimal `json:"margin"`
}

// EarningsStatsResponse represents the statistics view.
type EarningsStatsResponse struct {
	Totals *EarningsResponse        `json:"totals"`
	Daily  []*DailyEarningsResponse `json:"daily"`
}

// EarningsStatsFromUseCase converts use case stats to a response.
func EarningsStatsFromUseCase(s *usecase.EarningsStats) *EarningsStatsResponse {
	daily := make([]*DailyEarningsResponse, len(s.Daily))
	for i, d := range s.Daily {
		daily[i] = &DailyEarningsResponse{
			Day:        d.Day.Format("2006-01-02"),
			Commission: d.Commission,
			Discount:   d.Discount,
			Margin:     d.Margin,
		}
	}

	return &EarningsStatsResponse{
		Totals: &EarningsResponse{
			Commission: s.Totals.Commission,
			Discount:   s.Totals.Discount,
			Margin:     s.Totals.Margin,
		},
		Daily: daily,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
