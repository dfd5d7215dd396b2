package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
)

// BalanceRepository defines data access for the register balance.
type BalanceRepository interface {
	Get(ctx context.Context) (*domain.Balance, error)
	GetForUpdate(ctx context.Context, tx Transaction) (*domain.Balance, error)
	Update(ctx context.Context, tx Transaction, balance *domain.Balance) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	Query(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)

	// LatestBuyRate returns the rate of the most recent transaction of
	// the given purchase kind, skipping excludeID when non-empty. It
	// returns domain.ErrNoCostBasis when no such purchase exists.
	LatestBuyRate(ctx context.Context, tx Transaction, kind domain.Kind, excludeID string) (decimal.Decimal, error)

	// SumDeltas totals the applied deltas over the whole ledger.
	SumDeltas(ctx context.Context) (pesos, dollars decimal.Decimal, err error)

	EarnedTotals(ctx context.Context) (*domain.Earnings, error)
	EarnedByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyEarnings, error)
}

// RateSource fetches the external dollar reference rate.
type RateSource interface {
	Fetch(ctx context.Context) (*domain.Quote, error)
}

// RateCache caches fetched quotes between requests.
type RateCache interface {
	Get(ctx context.Context) (*domain.Quote, error)
	Set(ctx context.Context, quote *domain.Quote, ttl time.Duration) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder records business-level counters for registered,
// edited and deleted transactions.
type MetricsRecorder interface {
	TransactionRegistered(kind domain.Kind)
	TransactionEdited(kind domain.Kind)
	TransactionDeleted(kind domain.Kind)
	TransactionRejected(kind domain.Kind)
}

// Retrier retries an operation on transient persistence errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
