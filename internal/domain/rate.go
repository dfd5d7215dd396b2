package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a buy/sell reference rate pair from the market rate source.
type Quote struct {
	Buy       decimal.Decimal
	Sell      decimal.Decimal
	FetchedAt time.Time
}

// RateFor picks the side of the quote a registration should use when
// it elects the market rate instead of a manually entered one.
func (q *Quote) RateFor(kind Kind) decimal.Decimal {
	switch kind {
	case KindBuyDollars, KindBuyPesos:
		return q.Buy
	case KindSellDollars, KindSellPesos:
		return q.Sell
	}

	return decimal.Zero
}

// Earnings aggregates the desk's realized gains over the ledger.
type Earnings struct {
	Commission decimal.Decimal
	Discount   decimal.Decimal
	Margin     decimal.Decimal
}

// DailyEarnings is one day of realized gains, for the statistics view.
type DailyEarnings struct {
	Day        time.Time
	Commission decimal.Decimal
	Discount   decimal.Decimal
	Margin     decimal.Decimal
}
