package services

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/dto"
)

// ReportSvc builds read-only summaries over live entries.
type ReportSvc interface {
	GetPeriodSummary(ctx context.Context, cashbookID, userID string, params dto.PeriodSummaryParams) (*domain.PeriodSummary, error)
}
