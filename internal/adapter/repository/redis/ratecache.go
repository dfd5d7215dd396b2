package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
)

// RateCache implements usecase.RateCache using Redis.
type RateCache struct {
	client *redis.Client
	key    string
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{
		client: client,
		key:    "rates:dollar",
	}
}

type cachedQuote struct {
	Buy       string    `json:"buy"`
	Sell      string    `json:"sell"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Get returns the cached quote, or (nil, nil) on a miss.
func (c *RateCache) Get(ctx context.Context) (*domain.Quote, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	var cached cachedQuote
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	buy, err := decimal.NewFromString(cached.Buy)
	if err != nil {
		return nil, err
	}

	sell, err := decimal.NewFromString(cached.Sell)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		Buy:       buy,
		Sell:      sell,
		FetchedAt: cached.FetchedAt,
	}, nil
}

// Set stores the quote with a TTL.
func (c *RateCache) Set(ctx context.Context, quote *domain.Quote, ttl time.Duration) error {
	data, err := json.Marshal(cachedQuote{
		Buy:       quote.Buy.String(),
		Sell:      quote.Sell.String(),
		FetchedAt: quote.FetchedAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key, data, ttl).Err()
}
