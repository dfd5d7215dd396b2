package usecase

import "time"

const (
	// DefaultQueryLimit caps ledger queries that do not ask for a limit.
	DefaultQueryLimit = 50

	// MaxQueryLimit is the hard ceiling on a single ledger query.
	MaxQueryLimit = 500

	// RateCacheTTL is how long a fetched reference quote stays valid.
	RateCacheTTL = 60 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
