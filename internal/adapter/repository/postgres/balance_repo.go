package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// BalanceID is the primary key of the single register balance row,
// seeded by the migrations.
const BalanceID = "desk"

// BalanceRepository implements usecase.BalanceRepository against the
// single-row balance table.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

const balanceColumns = `id, pesos, dollars, pesos_funded, dollars_funded, updated_at`

// Get retrieves the current register balance.
func (r *BalanceRepository) Get(ctx context.Context) (*domain.Balance, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM balance WHERE id = $1`, BalanceID)

	return scanBalance(row)
}

// GetForUpdate retrieves the balance with a FOR UPDATE lock. Every
// mutating operation locks this row first, which serializes the funds
// check against concurrent registrations.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Balance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM balance WHERE id = $1 FOR UPDATE`, BalanceID)

	return scanBalance(row)
}

// Update writes the balance back within the transaction.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE balance
		 SET pesos = $2, dollars = $3, pesos_funded = $4, dollars_funded = $5, updated_at = $6
		 WHERE id = $1`,
		balance.ID,
		decimalToNumeric(balance.Pesos),
		decimalToNumeric(balance.Dollars),
		decimalToNumeric(balance.PesosFunded),
		decimalToNumeric(balance.DollarsFunded),
		timeToPgTimestamptz(balance.UpdatedAt),
	)

	return err
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var (
		b             domain.Balance
		pesos         pgtype.Numeric
		dollars       pgtype.Numeric
		pesosFunded   pgtype.Numeric
		dollarsFunded pgtype.Numeric
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &pesos, &dollars, &pesosFunded, &dollarsFunded, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	b.Pesos = numericToDecimal(pesos)
	b.Dollars = numericToDecimal(dollars)
	b.PesosFunded = numericToDecimal(pesosFunded)
	b.DollarsFunded = numericToDecimal(dollarsFunded)
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
