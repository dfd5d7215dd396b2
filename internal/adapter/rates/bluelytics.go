// Package rates provides the external dollar reference-rate source.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
)

// DefaultBaseURL is the bluelytics API endpoint serving the informal
// ("blue") dollar quote.
const DefaultBaseURL = "https://api.bluelytics.com.ar/v2/latest"

const (
	requestTimeout = 5 * time.Second
	maxElapsed     = 8 * time.Second
)

// BluelyticsClient implements usecase.RateSource against the bluelytics
// API. Any network, HTTP or parse failure degrades to
// domain.ErrRateUnavailable so callers can reject the operation instead
// of crashing.
type BluelyticsClient struct {
	baseURL string
	client  *http.Client
}

// NewBluelyticsClient creates a new BluelyticsClient. baseURL is
// overridable for tests; pass "" for the production endpoint.
func NewBluelyticsClient(baseURL string) *BluelyticsClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &BluelyticsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type latestResponse struct {
	Blue struct {
		ValueBuy  float64 `json:"value_buy"`
		ValueSell float64 `json:"value_sell"`
	} `json:"blue"`
}

// Fetch retrieves the current blue-dollar quote, retrying briefly on
// transient failures within the bounded timeout.
func (c *BluelyticsClient) Fetch(ctx context.Context) (*domain.Quote, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed

	var quote *domain.Quote

	err := backoff.Retry(func() error {
		var err error
		quote, err = c.fetchOnce(ctx)
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}

	return quote, nil
}

func (c *BluelyticsClient) fetchOnce(ctx context.Context) (*domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(err)
	}

	if body.Blue.ValueBuy <= 0 || body.Blue.ValueSell <= 0 {
		return nil, backoff.Permanent(fmt.Errorf("quote missing blue values"))
	}

	return &domain.Quote{
		Buy:       decimal.NewFromFloat(body.Blue.ValueBuy),
		Sell:      decimal.NewFromFloat(body.Blue.ValueSell),
		FetchedAt: time.Now().UTC(),
	}, nil
}
