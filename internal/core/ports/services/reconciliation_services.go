package services

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/dto"
)

// ReconciliationSvc recomputes aggregates from entries and flips reconciliation flags.
type ReconciliationSvc interface {
	RecalculateBalance(ctx context.Context, cashbookID, userID string) (*dto.RecalculationResult, error)
	ToggleReconciliation(ctx context.Context, cashbookID, entryID, userID string) (*domain.Entry, error)
	GetFinancialSummary(ctx context.Context, cashbookID, userID string) (*domain.Cashbook, error)
	// GetFinancialAuditLogs requires VIEW_AUDIT_LOG. Newest first.
	GetFinancialAuditLogs(ctx context.Context, cashbookID, userID string, params dto.FinancialAuditLogParams) (*dto.FinancialAuditLogResponse, error)
}
