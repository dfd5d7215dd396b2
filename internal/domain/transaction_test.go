package domain

import "testing"

func TestKind_IsValid(t *testing.T) {
	for _, k := range []Kind{
		KindBuyDollars, KindSellDollars, KindBuyPesos, KindSellPesos,
		KindWireOut, KindWireIn, KindCashToCash, KindCheckDiscount,
	} {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
	}

	if Kind("swap").IsValid() {
		t.Error("swap should not be valid")
	}
}

func TestKind_CostBasisKind(t *testing.T) {
	if got := KindSellDollars.CostBasisKind(); got != KindBuyDollars {
		t.Errorf("cost basis kind for sell_dollars = %s, want buy_dollars", got)
	}

	if got := KindSellPesos.CostBasisKind(); got != KindBuyPesos {
		t.Errorf("cost basis kind for sell_pesos = %s, want buy_pesos", got)
	}

	if got := KindWireOut.CostBasisKind(); got != "" {
		t.Errorf("cost basis kind for wire_out = %s, want empty", got)
	}
}

func TestTransaction_AppliedImpact(t *testing.T) {
	tx := &Transaction{
		PesosDelta:       dec("-90000"),
		DollarsDelta:     dec("100"),
		CommissionEarned: dec("0"),
		DiscountEarned:   dec("0"),
	}

	imp := tx.AppliedImpact()
	rev := imp.Reversal()

	if !rev.Pesos.Equal(dec("90000")) || !rev.Dollars.Equal(dec("-100")) {
		t.Errorf("reversal = (%s, %s), want (90000, -100)", rev.Pesos, rev.Dollars)
	}
}
