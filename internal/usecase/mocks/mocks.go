package mocks

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// MockBalanceRepository is a mock implementation of BalanceRepository
// backed by a single in-memory balance.
type MockBalanceRepository struct {
	mu      sync.RWMutex
	balance *domain.Balance

	GetFunc          func(ctx context.Context) (*domain.Balance, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction) (*domain.Balance, error)
	UpdateFunc       func(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error
}

func NewMockBalanceRepository(balance *domain.Balance) *MockBalanceRepository {
	if balance == nil {
		balance = &domain.Balance{
			ID:      "desk",
			Pesos:   decimal.Zero,
			Dollars: decimal.Zero,
		}
	}
	return &MockBalanceRepository{balance: balance}
}

func (m *MockBalanceRepository) Get(ctx context.Context) (*domain.Balance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := *m.balance
	return &copied, nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Balance, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := *m.balance
	return &copied, nil
}

func (m *MockBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *balance
	m.balance = &copied
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository backed by an in-memory map.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	QueryFunc            func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	LatestBuyRateFunc    func(ctx context.Context, tx usecase.Transaction, kind domain.Kind, excludeID string) (decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *txn
	m.txns[txn.ID] = &copied
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	copied := *txn
	m.txns[txn.ID] = &copied
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.txns, id)
	return nil
}

func (m *MockTransactionRepository) Query(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Transaction
	for _, txn := range m.txns {
		if filter.Kind != nil && txn.Kind != *filter.Kind {
			continue
		}
		if filter.ConceptContains != "" && !strings.Contains(txn.Concept, filter.ConceptContains) {
			continue
		}
		if filter.From != nil && txn.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && txn.CreatedAt.After(*filter.To) {
			continue
		}
		copied := *txn
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (m *MockTransactionRepository) LatestBuyRate(ctx context.Context, tx usecase.Transaction, kind domain.Kind, excludeID string) (decimal.Decimal, error) {
	if m.LatestBuyRateFunc != nil {
		return m.LatestBuyRateFunc(ctx, tx, kind, excludeID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *domain.Transaction
	for _, txn := range m.txns {
		if txn.Kind != kind || txn.ID == excludeID {
			continue
		}
		if latest == nil || txn.CreatedAt.After(latest.CreatedAt) {
			latest = txn
		}
	}

	if latest == nil {
		return decimal.Zero, domain.ErrNoCostBasis
	}

	return latest.Rate, nil
}

func (m *MockTransactionRepository) SumDeltas(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pesos, dollars := decimal.Zero, decimal.Zero
	for _, txn := range m.txns {
		pesos = pesos.Add(txn.PesosDelta)
		dollars = dollars.Add(txn.DollarsDelta)
	}

	return pesos, dollars, nil
}

func (m *MockTransactionRepository) EarnedTotals(ctx context.Context) (*domain.Earnings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	earnings := &domain.Earnings{
		Commission: decimal.Zero,
		Discount:   decimal.Zero,
		Margin:     decimal.Zero,
	}
	for _, txn := range m.txns {
		earnings.Commission = earnings.Commission.Add(txn.CommissionEarned)
		earnings.Discount = earnings.Discount.Add(txn.DiscountEarned)
		if txn.Kind == domain.KindSellDollars {
			earnings.Margin = earnings.Margin.Add(txn.PesosDelta)
		}
	}

	return earnings, nil
}

func (m *MockTransactionRepository) EarnedByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyEarnings, error) {
	return nil, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockIDGenerator generates sequential IDs for tests.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (g *MockIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return "txn-" + strconv.Itoa(g.counter)
}

// MockRateSource is a mock implementation of RateSource.
type MockRateSource struct {
	FetchFunc func(ctx context.Context) (*domain.Quote, error)
}

func (m *MockRateSource) Fetch(ctx context.Context) (*domain.Quote, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return nil, domain.ErrRateUnavailable
}

// MockRateCache is an in-memory RateCache.
type MockRateCache struct {
	mu    sync.Mutex
	quote *domain.Quote

	GetFunc func(ctx context.Context) (*domain.Quote, error)
	SetFunc func(ctx context.Context, quote *domain.Quote, ttl time.Duration) error
}

func (m *MockRateCache) Get(ctx context.Context) (*domain.Quote, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quote, nil
}

func (m *MockRateCache) Set(ctx context.Context, quote *domain.Quote, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, quote, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = quote
	return nil
}
