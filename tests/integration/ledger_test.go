package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	adaptershttp "github.com/iho/cambiodesk/internal/adapter/http"
	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/adapter/http/handler"
	"github.com/iho/cambiodesk/internal/adapter/repository/postgres"
	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
	"github.com/iho/cambiodesk/internal/usecase/mocks"
	"github.com/iho/cambiodesk/tests/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *testutil.TestDB) {
	t.Helper()

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.Reset(ctx)

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	idGen := postgres.NewULIDGenerator()

	ledgerUC := usecase.NewLedgerUseCase(txManager, balanceRepo, txnRepo, nil, idGen).
		WithRetrier(postgres.NewRetrier(zerolog.Nop()))
	balanceUC := usecase.NewBalanceUseCase(txManager, balanceRepo)
	statsUC := usecase.NewStatsUseCase(balanceRepo, txnRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(ledgerUC),
		BalanceHandler:     handler.NewBalanceHandler(balanceUC),
		RateHandler:        handler.NewRateHandler(usecase.NewRateUseCase(&mocks.MockRateSource{}, nil, zerolog.Nop())),
		LedgerHandler:      handler.NewLedgerHandler(statsUC),
		HealthHandler:      handler.NewHealthHandler(pool, nil),
		Logger:             zerolog.Nop(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, testDB
}

func postTransaction(t *testing.T, srv *httptest.Server, req dto.RegisterTransactionRequest) (*dto.TransactionResponse, *http.Response) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/transactions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, resp
	}

	var txn dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&txn))
	return &txn, resp
}

func getBalance(t *testing.T, srv *httptest.Server) *dto.BalanceResponse {
	t.Helper()

	resp, err := http.Get(srv.URL + "/api/v1/balance")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance dto.BalanceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balance))
	return &balance
}

func fund(t *testing.T, srv *httptest.Server, pesos, dollars string) {
	t.Helper()

	body, err := json.Marshal(dto.FundBalanceRequest{
		Pesos:   decimal.RequireFromString(pesos),
		Dollars: decimal.RequireFromString(dollars),
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/balance/fund", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLedgerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv, _ := newTestServer(t)

	fund(t, srv, "100000", "0")

	// Buy 100 dollars at 900.
	buy, resp := postTransaction(t, srv, dto.RegisterTransactionRequest{
		Kind:   string(domain.KindBuyDollars),
		Amount: decimal.NewFromInt(100),
		Rate:   decimal.NewFromInt(900),
	})
	require.NotNil(t, buy, "unexpected status %d", resp.StatusCode)
	require.True(t, buy.PesosDelta.Equal(decimal.NewFromInt(-90000)))

	// Sell 50 back at 950, margin against the 900 cost basis.
	sell, resp := postTransaction(t, srv, dto.RegisterTransactionRequest{
		Kind:   string(domain.KindSellDollars),
		Amount: decimal.NewFromInt(50),
		Rate:   decimal.NewFromInt(950),
	})
	require.NotNil(t, sell, "unexpected status %d", resp.StatusCode)
	require.True(t, sell.PesosDelta.Equal(decimal.NewFromInt(2500)))
	require.True(t, sell.CostBasisRate.Equal(decimal.NewFromInt(900)))

	balance := getBalance(t, srv)
	require.True(t, balance.Pesos.Equal(decimal.NewFromInt(12500)), "pesos = %s", balance.Pesos)
	require.True(t, balance.Dollars.Equal(decimal.NewFromInt(50)), "dollars = %s", balance.Dollars)

	// The ledger must reconcile with the funded totals.
	consResp, err := http.Get(srv.URL + "/api/v1/ledger/consistency")
	require.NoError(t, err)
	defer consResp.Body.Close()
	require.Equal(t, http.StatusOK, consResp.StatusCode)

	var cons dto.ConsistencyResponse
	require.NoError(t, json.NewDecoder(consResp.Body).Decode(&cons))
	require.True(t, cons.Consistent)
}

func TestLedgerRejectsOverdraft(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv, _ := newTestServer(t)

	fund(t, srv, "1000", "0")

	txn, resp := postTransaction(t, srv, dto.RegisterTransactionRequest{
		Kind:   string(domain.KindBuyDollars),
		Amount: decimal.NewFromInt(100),
		Rate:   decimal.NewFromInt(900),
	})
	require.Nil(t, txn)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	balance := getBalance(t, srv)
	require.True(t, balance.Pesos.Equal(decimal.NewFromInt(1000)))
	require.True(t, balance.Dollars.IsZero())
}

func TestLedgerDeleteRestoresBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv, _ := newTestServer(t)

	fund(t, srv, "100000", "0")

	buy, resp := postTransaction(t, srv, dto.RegisterTransactionRequest{
		Kind:   string(domain.KindBuyDollars),
		Amount: decimal.NewFromInt(100),
		Rate:   decimal.NewFromInt(900),
	})
	require.NotNil(t, buy, "unexpected status %d", resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/transactions/"+buy.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)

	balance := getBalance(t, srv)
	require.True(t, balance.Pesos.Equal(decimal.NewFromInt(100000)))
	require.True(t, balance.Dollars.IsZero())
}

func TestLedgerEditReappliesImpact(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv, _ := newTestServer(t)

	fund(t, srv, "100000", "0")

	buy, resp := postTransaction(t, srv, dto.RegisterTransactionRequest{
		Kind:   string(domain.KindBuyDollars),
		Amount: decimal.NewFromInt(100),
		Rate:   decimal.NewFromInt(900),
	})
	require.NotNil(t, buy, "unexpected status %d", resp.StatusCode)

	body, err := json.Marshal(dto.RegisterTransactionRequest{
		Kind:   string(domain.KindBuyDollars),
		Amount: decimal.NewFromInt(50),
		Rate:   decimal.NewFromInt(880),
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/transactions/"+buy.ID, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	editResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer editResp.Body.Close()
	require.Equal(t, http.StatusOK, editResp.StatusCode)

	balance := getBalance(t, srv)
	require.True(t, balance.Pesos.Equal(decimal.NewFromInt(56000)), "pesos = %s", balance.Pesos)
	require.True(t, balance.Dollars.Equal(decimal.NewFromInt(50)), "dollars = %s", balance.Dollars)
}
