package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iho/cambiodesk/internal/adapter/rates"
	"github.com/iho/cambiodesk/internal/domain"
)

func TestBluelyticsClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"blue": {"value_buy": 905.5, "value_sell": 955.5}, "oficial": {"value_buy": 800, "value_sell": 850}}`))
	}))
	defer server.Close()

	client := rates.NewBluelyticsClient(server.URL)

	quote, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "905.5", quote.Buy.String())
	require.Equal(t, "955.5", quote.Sell.String())
	require.False(t, quote.FetchedAt.IsZero())
}

func TestBluelyticsClient_MissingBlueValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"oficial": {"value_buy": 800, "value_sell": 850}}`))
	}))
	defer server.Close()

	client := rates.NewBluelyticsClient(server.URL)

	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestBluelyticsClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := rates.NewBluelyticsClient(server.URL)

	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestBluelyticsClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := rates.NewBluelyticsClient(server.URL)

	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}
