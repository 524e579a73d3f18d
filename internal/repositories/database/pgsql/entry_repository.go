package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/models"
	"github.com/SscSPs/cashbook_backend/internal/utils/mapping"
	"github.com/SscSPs/cashbook_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntryRepository struct {
	db querier
}

func newPgxEntryRepository(pool *pgxpool.Pool) *PgxEntryRepository {
	return &PgxEntryRepository{db: pool}
}

var (
	_ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)
	_ portsrepo.EntryTxWriter         = (*PgxEntryRepository)(nil)
)

// entryColumns matches the db tags of models.Entry so rows can be collected by name.
const entryColumns = `entry_id, cashbook_id, entry_type, amount, description, category_id, contact_id,
		payment_mode_id, entry_date, is_reconciled, version, deleted_at, deleted_by, deleted_reason,
		created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxEntryRepository) findEntry(ctx context.Context, query, entryID, op string) (*domain.Entry, error) {
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", op, entryID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Entry])
	if err != nil {
		return nil, notFoundOr(err, "Entry", op+" "+entryID)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindEntryByID retrieves an entry by its ID, deleted or not.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	return r.findEntry(ctx, `SELECT `+entryColumns+` FROM entries WHERE entry_id = $1;`, entryID, "find entry")
}

func (r *PgxEntryRepository) LockEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	return r.findEntry(ctx, `SELECT `+entryColumns+` FROM entries WHERE entry_id = $1 FOR UPDATE;`, entryID, "lock entry")
}

// entryWhere builds the shared WHERE clause for listings and summaries. Only live entries match.
func entryWhere(cashbookID string, f domain.EntryFilter) (string, []any) {
	conds := []string{"cashbook_id = $1", "deleted_at IS NULL"}
	args := []any{cashbookID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Type != nil {
		add("entry_type = $%d", string(*f.Type))
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.ContactID != nil {
		add("contact_id = $%d", *f.ContactID)
	}
	if f.PaymentModeID != nil {
		add("payment_mode_id = $%d", *f.PaymentModeID)
	}
	if f.From != nil {
		add("entry_date >= $%d", *f.From)
	}
	if f.To != nil {
		// To is inclusive of the whole day.
		add("entry_date < $%d", f.To.AddDate(0, 0, 1))
	}
	if f.IsReconciled != nil {
		add("is_reconciled = $%d", *f.IsReconciled)
	}
	return strings.Join(conds, " AND "), args
}

// ListEntries pages through live entries with a keyset cursor on (entry_date, created_at, entry_id).
func (r *PgxEntryRepository) ListEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	where, args := entryWhere(cashbookID, filter)

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		n := len(args)
		where += fmt.Sprintf(" AND (entry_date, created_at, entry_id) < ($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, cursor.EntryDate, cursor.CreatedAt, cursor.EntryID)
	}

	args = append(args, limit+1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM entries
		WHERE %s
		ORDER BY entry_date DESC, created_at DESC, entry_id DESC
		LIMIT $%d;
	`, entryColumns, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries of cashbook %s: %w", cashbookID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Entry])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan entries of cashbook %s: %w", cashbookID, err)
	}

	entries := mapping.ToDomainEntrySlice(ms)
	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token := pagination.EncodeCursor(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
		next = &token
	}
	return entries, next, nil
}

func (r *PgxEntryRepository) SummarizeEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter) (domain.PeriodSummary, error) {
	where, args := entryWhere(cashbookID, filter)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'EXPENSE'), 0),
			COUNT(*),
			(SELECT currency FROM cashbooks WHERE cashbook_id = $1)
		FROM entries
		WHERE %s;
	`, where)

	summary := domain.PeriodSummary{CashbookID: cashbookID, From: filter.From, To: filter.To}
	var currency *string
	err := r.db.QueryRow(ctx, query, args...).Scan(&summary.TotalIncome, &summary.TotalExpense, &summary.EntryCount, &currency)
	if err != nil {
		return domain.PeriodSummary{}, fmt.Errorf("failed to summarize entries of cashbook %s: %w", cashbookID, err)
	}
	if currency != nil {
		summary.Currency = *currency
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

func (r *PgxEntryRepository) InsertEntry(ctx context.Context, entry domain.Entry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		INSERT INTO entries (entry_id, cashbook_id, entry_type, amount, description, category_id, contact_id,
			payment_mode_id, entry_date, is_reconciled, version, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		m.EntryID,
		m.CashbookID,
		m.EntryType,
		m.Amount,
		m.Description,
		m.CategoryID,
		m.ContactID,
		m.PaymentModeID,
		m.EntryDate,
		m.IsReconciled,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry with ID %s already exists", apperrors.ErrDuplicate, m.EntryID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", m.EntryID, err)
	}
	return nil
}

// UpdateEntry persists the mutable fields. Deleted entries are never updated.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.Entry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE entries
		SET entry_type = $2, amount = $3, description = $4, category_id = $5, contact_id = $6,
			payment_mode_id = $7, entry_date = $8, version = $9, last_updated_at = $10, last_updated_by = $11
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, query,
		m.EntryID,
		m.EntryType,
		m.Amount,
		m.Description,
		m.CategoryID,
		m.ContactID,
		m.PaymentModeID,
		m.EntryDate,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", m.EntryID, err)
	}
	return expectOneRow(tag, "Entry")
}

func (r *PgxEntryRepository) SoftDeleteEntry(ctx context.Context, entryID string, deletion domain.EntryDeletion) error {
	query := `
		UPDATE entries
		SET deleted_at = $2, deleted_by = $3, deleted_reason = $4, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, entryID, deletion.DeletedAt, deletion.DeletedBy, deletion.Reason)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	return expectOneRow(tag, "Entry")
}

func (r *PgxEntryRepository) SetEntryReconciled(ctx context.Context, entryID string, reconciled bool, userID string, now time.Time) error {
	query := `
		UPDATE entries
		SET is_reconciled = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, entryID, reconciled, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set reconciliation of entry %s: %w", entryID, err)
	}
	return expectOneRow(tag, "Entry")
}
