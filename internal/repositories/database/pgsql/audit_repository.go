package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/models"
	"github.com/SscSPs/cashbook_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditRepository reads and appends the three audit tables. Rows are never updated or deleted.
type PgxAuditRepository struct {
	db querier
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{db: pool}
}

var (
	_ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)
	_ portsrepo.AuditTxWriter         = (*PgxAuditRepository)(nil)
)

func (r *PgxAuditRepository) InsertEntryAudit(ctx context.Context, audit domain.EntryAudit) error {
	m := mapping.ToModelEntryAudit(audit)
	query := `
		INSERT INTO entry_audits (audit_id, entry_id, user_id, action, old_values, new_values, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query, m.AuditID, m.EntryID, m.UserID, m.Action, m.OldValues, m.NewValues, m.Changes, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry audit for entry %s: %w", m.EntryID, err)
	}
	return nil
}

func (r *PgxAuditRepository) InsertFinancialAuditLog(ctx context.Context, log domain.FinancialAuditLog) error {
	m := mapping.ToModelFinancialAuditLog(log)
	query := `
		INSERT INTO financial_audit_logs (log_id, user_id, workspace_id, cashbook_id, entry_id, action, amount,
			balance_before, balance_after, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		m.LogID,
		m.UserID,
		m.WorkspaceID,
		m.CashbookID,
		m.EntryID,
		m.Action,
		m.Amount,
		m.BalanceBefore,
		m.BalanceAfter,
		m.Reason,
		m.Details,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert financial audit log for cashbook %s: %w", m.CashbookID, err)
	}
	return nil
}

func (r *PgxAuditRepository) InsertAuditLog(ctx context.Context, log domain.AuditLog) error {
	m := mapping.ToModelAuditLog(log)
	query := `
		INSERT INTO audit_logs (log_id, user_id, workspace_id, cashbook_id, action, resource, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query, m.LogID, m.UserID, m.WorkspaceID, m.CashbookID, m.Action, m.Resource, m.ResourceID, m.Details, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit log %s: %w", m.Action, err)
	}
	return nil
}

// SaveAuditLog appends a general audit row outside of any ledger transaction.
func (r *PgxAuditRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	return r.InsertAuditLog(ctx, log)
}

// ListEntryAudits returns the audit trail of one entry, oldest first.
func (r *PgxAuditRepository) ListEntryAudits(ctx context.Context, entryID string) ([]domain.EntryAudit, error) {
	query := `
		SELECT audit_id, entry_id, user_id, action, old_values, new_values, changes, created_at
		FROM entry_audits
		WHERE entry_id = $1
		ORDER BY created_at ASC, audit_id ASC;
	`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits of entry %s: %w", entryID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.EntryAudit])
	if err != nil {
		return nil, fmt.Errorf("failed to scan audits of entry %s: %w", entryID, err)
	}

	audits := make([]domain.EntryAudit, len(ms))
	for i, m := range ms {
		audits[i] = mapping.ToDomainEntryAudit(m)
	}
	return audits, nil
}

// ListFinancialAuditLogs returns the newest rows first. A non-positive limit returns everything.
func (r *PgxAuditRepository) ListFinancialAuditLogs(ctx context.Context, cashbookID string, limit int) ([]domain.FinancialAuditLog, error) {
	query := `
		SELECT log_id, user_id, workspace_id, cashbook_id, entry_id, action, amount,
			balance_before, balance_after, reason, details, created_at
		FROM financial_audit_logs
		WHERE cashbook_id = $1
		ORDER BY created_at DESC, log_id DESC
	`
	args := []any{cashbookID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list financial audit logs of cashbook %s: %w", cashbookID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FinancialAuditLog])
	if err != nil {
		return nil, fmt.Errorf("failed to scan financial audit logs of cashbook %s: %w", cashbookID, err)
	}

	logs := make([]domain.FinancialAuditLog, len(ms))
	for i, m := range ms {
		logs[i] = mapping.ToDomainFinancialAuditLog(m)
	}
	return logs, nil
}
