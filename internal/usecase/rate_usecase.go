package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cambiodesk/internal/domain"
)

// RateUseCase serves the dollar reference quote, caching successful
// fetches so the external source is not hit on every registration.
type RateUseCase struct {
	source RateSource
	cache  RateCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRateUseCase creates a new RateUseCase. cache may be nil, in which
// case every call goes to the source.
func NewRateUseCase(source RateSource, cache RateCache, logger zerolog.Logger) *RateUseCase {
	return &RateUseCase{
		source: source,
		cache:  cache,
		ttl:    RateCacheTTL,
		logger: logger,
	}
}

// WithTTL overrides the cache TTL. Returns the use case for chaining.
func (uc *RateUseCase) WithTTL(ttl time.Duration) *RateUseCase {
	if ttl > 0 {
		uc.ttl = ttl
	}
	return uc
}

// MarketRate returns the current buy/sell reference quote, or
// domain.ErrRateUnavailable when the source cannot provide one.
func (uc *RateUseCase) MarketRate(ctx context.Context) (*domain.Quote, error) {
	if uc.cache != nil {
		if quote, err := uc.cache.Get(ctx); err == nil && quote != nil {
			return quote, nil
		}
	}

	quote, err := uc.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, quote, uc.ttl); err != nil {
			// A cold cache only costs an extra fetch next time.
			uc.logger.Warn().Err(err).Msg("failed to cache reference quote")
		}
	}

	return quote, nil
}
