package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/models"
	"github.com/SscSPs/cashbook_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxCashbookRepository struct {
	db querier
}

func newPgxCashbookRepository(pool *pgxpool.Pool) *PgxCashbookRepository {
	return &PgxCashbookRepository{db: pool}
}

var (
	_ portsrepo.CashbookRepositoryFacade = (*PgxCashbookRepository)(nil)
	_ portsrepo.CashbookTxWriter         = (*PgxCashbookRepository)(nil)
)

const cashbookColumns = `cashbook_id, workspace_id, name, currency, allow_backdate, is_active,
		balance, total_income, total_expense, created_at, created_by, last_updated_at, last_updated_by`

func scanCashbook(row pgx.Row) (*domain.Cashbook, error) {
	var m models.Cashbook
	err := row.Scan(
		&m.CashbookID,
		&m.WorkspaceID,
		&m.Name,
		&m.Currency,
		&m.AllowBackdate,
		&m.IsActive,
		&m.Balance,
		&m.TotalIncome,
		&m.TotalExpense,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	cb := mapping.ToDomainCashbook(m)
	return &cb, nil
}

// FindCashbookByID retrieves a cashbook by its ID.
func (r *PgxCashbookRepository) FindCashbookByID(ctx context.Context, cashbookID string) (*domain.Cashbook, error) {
	query := `SELECT ` + cashbookColumns + ` FROM cashbooks WHERE cashbook_id = $1;`
	cb, err := scanCashbook(r.db.QueryRow(ctx, query, cashbookID))
	if err != nil {
		return nil, notFoundOr(err, "Cashbook", "find cashbook "+cashbookID)
	}
	return cb, nil
}

// LockCashbook takes the row lock every ledger mutation starts with.
func (r *PgxCashbookRepository) LockCashbook(ctx context.Context, cashbookID string) (*domain.Cashbook, error) {
	query := `SELECT ` + cashbookColumns + ` FROM cashbooks WHERE cashbook_id = $1 FOR UPDATE;`
	cb, err := scanCashbook(r.db.QueryRow(ctx, query, cashbookID))
	if err != nil {
		return nil, notFoundOr(err, "Cashbook", "lock cashbook "+cashbookID)
	}
	return cb, nil
}

// ApplyBalanceDelta increments the aggregates in a single UPDATE and returns the new values.
func (r *PgxCashbookRepository) ApplyBalanceDelta(ctx context.Context, cashbookID string, delta domain.BalanceDelta, userID string, now time.Time) (domain.Aggregates, error) {
	query := `
		UPDATE cashbooks
		SET balance = balance + $2,
			total_income = total_income + $3,
			total_expense = total_expense + $4,
			last_updated_at = $5,
			last_updated_by = $6
		WHERE cashbook_id = $1
		RETURNING balance, total_income, total_expense;
	`
	var balance, income, expense decimal.Decimal
	err := r.db.QueryRow(ctx, query, cashbookID, delta.Balance(), delta.Income, delta.Expense, now, userID).
		Scan(&balance, &income, &expense)
	if err != nil {
		return domain.Aggregates{}, notFoundOr(err, "Cashbook", "apply balance delta to cashbook "+cashbookID)
	}
	return domain.Aggregates{Balance: balance, TotalIncome: income, TotalExpense: expense}, nil
}

func (r *PgxCashbookRepository) SetAggregates(ctx context.Context, cashbookID string, agg domain.Aggregates, userID string, now time.Time) error {
	query := `
		UPDATE cashbooks
		SET balance = $2, total_income = $3, total_expense = $4, last_updated_at = $5, last_updated_by = $6
		WHERE cashbook_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, cashbookID, agg.Balance, agg.TotalIncome, agg.TotalExpense, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set aggregates of cashbook %s: %w", cashbookID, err)
	}
	return expectOneRow(tag, "Cashbook")
}

// SumEntriesByType recomputes totals from live entries only.
func (r *PgxCashbookRepository) SumEntriesByType(ctx context.Context, cashbookID string) (domain.Aggregates, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'EXPENSE'), 0)
		FROM entries
		WHERE cashbook_id = $1 AND deleted_at IS NULL;
	`
	var income, expense decimal.Decimal
	if err := r.db.QueryRow(ctx, query, cashbookID).Scan(&income, &expense); err != nil {
		return domain.Aggregates{}, fmt.Errorf("failed to sum entries of cashbook %s: %w", cashbookID, err)
	}
	return domain.NewAggregates(income, expense), nil
}
