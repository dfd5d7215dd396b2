package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/domain"
)

// Concurrent registrations all lock the same balance row, so every
// accepted operation must be reflected in the final balance and the
// funds check must never be bypassed.
func TestConcurrentRegistrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv, _ := newTestServer(t)

	fund(t, srv, "90000", "0")

	// 20 workers each try to buy 10 dollars at 900 (9000 pesos). Only
	// 10 can fit in the till.
	const workers = 20

	var wg sync.WaitGroup
	accepted := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(dto.RegisterTransactionRequest{
				Kind:   string(domain.KindBuyDollars),
				Amount: decimal.NewFromInt(10),
				Rate:   decimal.NewFromInt(900),
			})

			resp, err := http.Post(srv.URL+"/api/v1/transactions", "application/json", bytes.NewReader(body))
			if err != nil {
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusCreated {
				accepted <- struct{}{}
			}
		}()
	}

	wg.Wait()
	close(accepted)

	acceptedCount := len(accepted)
	require.Equal(t, 10, acceptedCount)

	balance := getBalance(t, srv)
	require.True(t, balance.Pesos.IsZero(), "pesos = %s", balance.Pesos)
	require.True(t, balance.Dollars.Equal(decimal.NewFromInt(100)), "dollars = %s", balance.Dollars)

	consResp, err := http.Get(srv.URL + "/api/v1/ledger/consistency")
	require.NoError(t, err)
	defer consResp.Body.Close()
	require.Equal(t, http.StatusOK, consResp.StatusCode)
}
