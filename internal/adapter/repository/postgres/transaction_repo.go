package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, kind, amount, rate, cost_basis_rate,
	commission_rate, discount_rate, fee_bearer,
	commission_earned, discount_earned, pesos_delta, dollars_delta,
	concept, created_at, updated_at`

// Create inserts a transaction within the database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		txn.ID,
		string(txn.Kind),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.Rate),
		decimalToNumeric(txn.CostBasisRate),
		decimalToNumeric(txn.CommissionRate),
		decimalToNumeric(txn.DiscountRate),
		string(txn.FeeBearer),
		decimalToNumeric(txn.CommissionEarned),
		decimalToNumeric(txn.DiscountEarned),
		decimalToNumeric(txn.PesosDelta),
		decimalToNumeric(txn.DollarsDelta),
		txn.Concept,
		timeToPgTimestamptz(txn.CreatedAt),
		timeToPgTimestamptz(txn.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	return scanTransaction(row)
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)

	return scanTransaction(row)
}

// Update rewrites a transaction's fields within the database transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE transactions
		 SET kind = $2, amount = $3, rate = $4, cost_basis_rate = $5,
		     commission_rate = $6, discount_rate = $7, fee_bearer = $8,
		     commission_earned = $9, discount_earned = $10,
		     pesos_delta = $11, dollars_delta = $12,
		     concept = $13, updated_at = $14
		 WHERE id = $1`,
		txn.ID,
		string(txn.Kind),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.Rate),
		decimalToNumeric(txn.CostBasisRate),
		decimalToNumeric(txn.CommissionRate),
		decimalToNumeric(txn.DiscountRate),
		string(txn.FeeBearer),
		decimalToNumeric(txn.CommissionEarned),
		decimalToNumeric(txn.DiscountEarned),
		decimalToNumeric(txn.PesosDelta),
		decimalToNumeric(txn.DollarsDelta),
		txn.Concept,
		timeToPgTimestamptz(txn.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction within the database transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Query lists transactions matching the filter, newest first.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != nil {
		conditions = append(conditions, "kind = "+arg(string(*filter.Kind)))
	}

	if filter.ConceptContains != "" {
		conditions = append(conditions, "concept ILIKE "+arg("%"+filter.ConceptContains+"%"))
	}

	if filter.From != nil {
		conditions = append(conditions, "created_at >= "+arg(timeToPgTimestamptz(*filter.From)))
	}

	if filter.To != nil {
		conditions = append(conditions, "created_at <= "+arg(timeToPgTimestamptz(*filter.To)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// LatestBuyRate returns the rate of the most recent purchase of the
// given kind, used as the cost basis for sales.
func (r *TransactionRepository) LatestBuyRate(ctx context.Context, tx usecase.Transaction, kind domain.Kind, excludeID string) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var rate pgtype.Numeric
	err := pgxTx.QueryRow(ctx,
		`SELECT rate FROM transactions
		 WHERE kind = $1 AND id <> $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		string(kind), excludeID,
	).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNoCostBasis
		}

		return decimal.Zero, err
	}

	return numericToDecimal(rate), nil
}

// SumDeltas totals the applied deltas over the whole ledger.
func (r *TransactionRepository) SumDeltas(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var pesos, dollars pgtype.Numeric

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(pesos_delta), 0), COALESCE(SUM(dollars_delta), 0)
		 FROM transactions`,
	).Scan(&pesos, &dollars)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(pesos), numericToDecimal(dollars), nil
}

// EarnedTotals aggregates realized commission, discount and sale margin.
func (r *TransactionRepository) EarnedTotals(ctx context.Context) (*domain.Earnings, error) {
	var commission, discount, margin pgtype.Numeric

	err := r.pool.QueryRow(ctx,
		`SELECT
		   COALESCE(SUM(commission_earned), 0),
		   COALESCE(SUM(discount_earned), 0),
		   COALESCE(SUM(pesos_delta) FILTER (WHERE kind = $1), 0)
		 FROM transactions`,
		string(domain.KindSellDollars),
	).Scan(&commission, &discount, &margin)
	if err != nil {
		return nil, err
	}

	return &domain.Earnings{
		Commission: numericToDecimal(commission),
		Discount:   numericToDecimal(discount),
		Margin:     numericToDecimal(margin),
	}, nil
}

// EarnedByDay returns the per-day earnings series over [from, to].
func (r *TransactionRepository) EarnedByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyEarnings, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT
		   date_trunc('day', created_at) AS day,
		   COALESCE(SUM(commission_earned), 0),
		   COALESCE(SUM(discount_earned), 0),
		   COALESCE(SUM(pesos_delta) FILTER (WHERE kind = $1), 0)
		 FROM transactions
		 WHERE created_at >= $2 AND created_at <= $3
		 GROUP BY day
		 ORDER BY day`,
		string(domain.KindSellDollars),
		timeToPgTimestamptz(from),
		timeToPgTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var daily []*domain.DailyEarnings
	for rows.Next() {
		var (
			day        pgtype.Timestamptz
			commission pgtype.Numeric
			discount   pgtype.Numeric
			margin     pgtype.Numeric
		)

		if err := rows.Scan(&day, &commission, &discount, &margin); err != nil {
			return nil, err
		}

		daily = append(daily, &domain.DailyEarnings{
			Day:        day.Time,
			Commission: numericToDecimal(commission),
			Discount:   numericToDecimal(discount),
			Margin:     numericToDecimal(margin),
		})
	}

	return daily, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn              domain.Transaction
		kind             string
		feeBearer        string
		amount           pgtype.Numeric
		rate             pgtype.Numeric
		costBasisRate    pgtype.Numeric
		commissionRate   pgtype.Numeric
		discountRate     pgtype.Numeric
		commissionEarned pgtype.Numeric
		discountEarned   pgtype.Numeric
		pesosDelta       pgtype.Numeric
		dollarsDelta     pgtype.Numeric
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID, &kind, &amount, &rate, &costBasisRate,
		&commissionRate, &discountRate, &feeBearer,
		&commissionEarned, &discountEarned, &pesosDelta, &dollarsDelta,
		&txn.Concept, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Kind = domain.Kind(kind)
	txn.FeeBearer = domain.FeeBearer(feeBearer)
	txn.Amount = numericToDecimal(amount)
	txn.Rate = numericToDecimal(rate)
	txn.CostBasisRate = numericToDecimal(costBasisRate)
	txn.CommissionRate = numericToDecimal(commissionRate)
	txn.DiscountRate = numericToDecimal(discountRate)
	txn.CommissionEarned = numericToDecimal(commissionEarned)
	txn.DiscountEarned = numericToDecimal(discountEarned)
	txn.PesosDelta = numericToDecimal(pesosDelta)
	txn.DollarsDelta = numericToDecimal(dollarsDelta)
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time

	return &txn, nil
}
