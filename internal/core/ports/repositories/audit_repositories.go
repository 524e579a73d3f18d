package repositories

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// AuditReader defines read operations over the audit tables
type AuditReader interface {
	// ListEntryAudits returns an entry's audit rows, oldest first.
	ListEntryAudits(ctx context.Context, entryID string) ([]domain.EntryAudit, error)

	// ListFinancialAuditLogs returns the most recent financial audit rows of a cashbook, newest first.
	ListFinancialAuditLogs(ctx context.Context, cashbookID string, limit int) ([]domain.FinancialAuditLog, error)
}

// AuditWriter records general audit rows outside of any ledger transaction.
type AuditWriter interface {
	SaveAuditLog(ctx context.Context, log domain.AuditLog) error
}

// AuditTxWriter appends audit rows inside a ledger transaction. A failed insert aborts the transaction.
type AuditTxWriter interface {
	InsertEntryAudit(ctx context.Context, audit domain.EntryAudit) error
	InsertFinancialAuditLog(ctx context.Context, log domain.FinancialAuditLog) error
	InsertAuditLog(ctx context.Context, log domain.AuditLog) error
}

// AuditRepositoryFacade combines all audit repository interfaces
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
