package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
	"github.com/iho/cambiodesk/internal/usecase/mocks"
)

type fixture struct {
	balanceRepo *mocks.MockBalanceRepository
	txnRepo     *mocks.MockTransactionRepository
	ledger      *usecase.LedgerUseCase
	balances    *usecase.BalanceUseCase
	stats       *usecase.StatsUseCase
}

func newFixture(t *testing.T, pesos, dollars string) *fixture {
	t.Helper()

	balanceRepo := mocks.NewMockBalanceRepository(&domain.Balance{
		ID:            "desk",
		Pesos:         mustDec(t, pesos),
		Dollars:       mustDec(t, dollars),
		PesosFunded:   mustDec(t, pesos),
		DollarsFunded: mustDec(t, dollars),
	})
	txnRepo := mocks.NewMockTransactionRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	return &fixture{
		balanceRepo: balanceRepo,
		txnRepo:     txnRepo,
		ledger:      usecase.NewLedgerUseCase(txManager, balanceRepo, txnRepo, nil, idGen),
		balances:    usecase.NewBalanceUseCase(txManager, balanceRepo),
		stats:       usecase.NewStatsUseCase(balanceRepo, txnRepo),
	}
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func (f *fixture) balance(t *testing.T) *domain.Balance {
	t.Helper()
	b, err := f.balanceRepo.Get(context.Background())
	require.NoError(t, err)
	return b
}

func TestRegisterTransaction_BuyDollars(t *testing.T) {
	f := newFixture(t, "100000", "0")

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:    domain.KindBuyDollars,
		Amount:  mustDec(t, "100"),
		Rate:    mustDec(t, "900"),
		Concept: "compra mayorista",
	})
	require.NoError(t, err)

	require.True(t, txn.PesosDelta.Equal(mustDec(t, "-90000")))
	require.True(t, txn.DollarsDelta.Equal(mustDec(t, "100")))

	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "10000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "100")))
}

func TestRegisterTransaction_SellWithoutCostBasis(t *testing.T) {
	f := newFixture(t, "100000", "500")

	_, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindSellDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "950"),
	})
	require.ErrorIs(t, err, domain.ErrNoCostBasis)

	// Nothing committed.
	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "100000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "500")))
}

func TestRegisterTransaction_SellDollarsInsufficientFunds(t *testing.T) {
	f := newFixture(t, "100000", "0")

	_, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	// Only 100 dollars in the register; selling 150 must be rejected
	// even though the margin is a pesos gain.
	_, err = f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindSellDollars,
		Amount: mustDec(t, "150"),
		Rate:   mustDec(t, "950"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "10000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "100")))
}

func TestRegisterTransaction_SellDollarsBooksMargin(t *testing.T) {
	f := newFixture(t, "100000", "0")

	_, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindSellDollars,
		Amount: mustDec(t, "50"),
		Rate:   mustDec(t, "950"),
	})
	require.NoError(t, err)

	// Margin 50 pesos per dollar against the buy at 900.
	require.True(t, txn.PesosDelta.Equal(mustDec(t, "2500")))
	require.True(t, txn.DollarsDelta.Equal(mustDec(t, "-50")))
	require.True(t, txn.CostBasisRate.Equal(mustDec(t, "900")))
}

func TestRegisterTransaction_CheckDiscount(t *testing.T) {
	f := newFixture(t, "1000000", "0")

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:         domain.KindCheckDiscount,
		Amount:       mustDec(t, "1000000"),
		DiscountRate: mustDec(t, "0.01"),
	})
	require.NoError(t, err)

	require.True(t, txn.PesosDelta.Equal(mustDec(t, "-990000")))
	require.True(t, txn.DiscountEarned.Equal(mustDec(t, "10000")))
}

func TestRegisterTransaction_InsufficientFundsLeavesLedgerEmpty(t *testing.T) {
	f := newFixture(t, "1000", "0")

	_, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	txns, err := f.ledger.QueryTransactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	require.Empty(t, txns)
}

func TestDeleteTransaction_RestoresBalance(t *testing.T) {
	f := newFixture(t, "100000", "0")

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteTransaction(context.Background(), txn.ID))

	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "100000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "0")))

	_, err = f.ledger.GetTransaction(context.Background(), txn.ID)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestDeleteTransaction_RejectedWhenReversalWouldGoNegative(t *testing.T) {
	f := newFixture(t, "100000", "0")

	// Buy then spend the dollars; deleting the buy would now drive the
	// dollars balance negative.
	buy, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	_, err = f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:           domain.KindWireIn,
		Amount:         mustDec(t, "90"),
		CommissionRate: mustDec(t, "0"),
	})
	require.NoError(t, err)

	err = f.ledger.DeleteTransaction(context.Background(), buy.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The buy is still ledgered.
	_, err = f.ledger.GetTransaction(context.Background(), buy.ID)
	require.NoError(t, err)
}

func TestDeleteAndReregisterIsIdempotent(t *testing.T) {
	f := newFixture(t, "100000", "0")
	input := usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	}

	txn, err := f.ledger.RegisterTransaction(context.Background(), input)
	require.NoError(t, err)

	before := f.balance(t)

	require.NoError(t, f.ledger.DeleteTransaction(context.Background(), txn.ID))
	_, err = f.ledger.RegisterTransaction(context.Background(), input)
	require.NoError(t, err)

	after := f.balance(t)
	require.True(t, after.Pesos.Equal(before.Pesos))
	require.True(t, after.Dollars.Equal(before.Dollars))
}

func TestEditTransaction_ToOwnValuesLeavesBalanceUnchanged(t *testing.T) {
	f := newFixture(t, "100000", "0")
	input := usecase.RegisterTransactionInput{
		Kind:    domain.KindBuyDollars,
		Amount:  mustDec(t, "100"),
		Rate:    mustDec(t, "900"),
		Concept: "compra",
	}

	txn, err := f.ledger.RegisterTransaction(context.Background(), input)
	require.NoError(t, err)

	before := f.balance(t)

	_, err = f.ledger.EditTransaction(context.Background(), txn.ID, input)
	require.NoError(t, err)

	after := f.balance(t)
	require.True(t, after.Pesos.Equal(before.Pesos))
	require.True(t, after.Dollars.Equal(before.Dollars))
}

func TestEditTransaction_ReversesOldThenAppliesNew(t *testing.T) {
	f := newFixture(t, "100000", "0")

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	edited, err := f.ledger.EditTransaction(context.Background(), txn.ID, usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "50"),
		Rate:   mustDec(t, "880"),
	})
	require.NoError(t, err)
	require.Equal(t, txn.ID, edited.ID)

	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "56000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "50")))
}

func TestEditTransaction_RejectedEditLeavesEverythingUnchanged(t *testing.T) {
	f := newFixture(t, "100000", "0")

	txn, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "100"),
		Rate:   mustDec(t, "900"),
	})
	require.NoError(t, err)

	// Editing to a purchase the register cannot afford.
	_, err = f.ledger.EditTransaction(context.Background(), txn.ID, usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "500"),
		Rate:   mustDec(t, "900"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	b := f.balance(t)
	require.True(t, b.Pesos.Equal(mustDec(t, "10000")))
	require.True(t, b.Dollars.Equal(mustDec(t, "100")))

	kept, err := f.ledger.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.True(t, kept.Amount.Equal(mustDec(t, "100")))
	require.True(t, kept.Rate.Equal(mustDec(t, "900")))
}

func TestEditTransaction_NotFound(t *testing.T) {
	f := newFixture(t, "100000", "0")

	_, err := f.ledger.EditTransaction(context.Background(), "missing", usecase.RegisterTransactionInput{
		Kind:   domain.KindBuyDollars,
		Amount: mustDec(t, "10"),
		Rate:   mustDec(t, "900"),
	})
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestQueryTransactions_Filters(t *testing.T) {
	f := newFixture(t, "10000000", "10000")

	_, err := f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:    domain.KindBuyDollars,
		Amount:  mustDec(t, "100"),
		Rate:    mustDec(t, "900"),
		Concept: "compra cliente A",
	})
	require.NoError(t, err)

	_, err = f.ledger.RegisterTransaction(context.Background(), usecase.RegisterTransactionInput{
		Kind:           domain.KindWireOut,
		Amount:         mustDec(t, "1000"),
		CommissionRate: mustDec(t, "0.02"),
		Concept:        "cable cliente B",
	})
	require.NoError(t, err)

	kind := domain.KindWireOut
	txns, err := f.ledger.QueryTransactions(context.Background(), domain.TransactionFilter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, domain.KindWireOut, txns[0].Kind)

	txns, err = f.ledger.QueryTransactions(context.Background(), domain.TransactionFilter{ConceptContains: "cliente"})
	require.NoError(t, err)
	require.Len(t, txns, 2)

	future := time.Now().UTC().Add(time.Hour)
	txns, err = f.ledger.QueryTransactions(context.Background(), domain.TransactionFilter{From: &future})
	require.NoError(t, err)
	require.Empty(t, txns)
}

func TestConsistencyHoldsAcrossOperations(t *testing.T) {
	f := newFixture(t, "0", "0")

	_, err := f.balances.Fund(context.Background(), usecase.FundInput{
		Pesos:   mustDec(t, "500000"),
		Dollars: mustDec(t, "1000"),
	})
	require.NoError(t, err)

	inputs := []usecase.RegisterTransactionInput{
		{Kind: domain.KindBuyDollars, Amount: mustDec(t, "100"), Rate: mustDec(t, "901.37")},
		{Kind: domain.KindSellDollars, Amount: mustDec(t, "60"), Rate: mustDec(t, "955.55")},
		{Kind: domain.KindWireOut, Amount: mustDec(t, "500"), CommissionRate: mustDec(t, "0.025")},
		{Kind: domain.KindWireIn, Amount: mustDec(t, "300"), CommissionRate: mustDec(t, "0.015")},
		{Kind: domain.KindCheckDiscount, Amount: mustDec(t, "10000"), DiscountRate: mustDec(t, "0.012")},
	}

	var ids []string
	for _, in := range inputs {
		txn, err := f.ledger.RegisterTransaction(context.Background(), in)
		require.NoError(t, err)
		ids = append(ids, txn.ID)
	}

	ok, err := f.stats.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.ledger.DeleteTransaction(context.Background(), ids[4]))

	ok, err = f.stats.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}
