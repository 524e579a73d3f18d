package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/platform/breaker"
)

type reportService struct {
	BaseService
	entryRepo portsrepo.EntryReader
	auditRepo portsrepo.AuditWriter
	dbBreaker *breaker.Breaker
}

func NewReportService(repos portsrepo.RepositoryProvider, authorizer portssvc.CashbookAuthorizerSvc, dbBreaker *breaker.Breaker, opts ...ServiceOption) portssvc.ReportSvc {
	return &reportService{
		BaseService: newBaseService(authorizer, opts...),
		entryRepo:   repos.EntryRepo,
		auditRepo:   repos.AuditRepo,
		dbBreaker:   dbBreaker,
	}
}

var _ portssvc.ReportSvc = (*reportService)(nil)

// GetPeriodSummary totals live entries in [from, to]. Both bounds are optional and inclusive.
func (s *reportService) GetPeriodSummary(ctx context.Context, cashbookID, userID string, params dto.PeriodSummaryParams) (*domain.PeriodSummary, error) {
	cb, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewReports)
	if err != nil {
		return nil, err
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, apperrors.NewValidationError("'to' must not be before 'from'")
	}

	filter := domain.EntryFilter{Type: params.Type, From: params.From, To: params.To}
	summary, err := breaker.Call(ctx, s.dbBreaker, func(ctx context.Context) (domain.PeriodSummary, error) {
		return s.entryRepo.SummarizeEntries(ctx, cashbookID, filter)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build period summary", slog.String("cashbook_id", cashbookID))
		return nil, err
	}

	details := map[string]any{"report": "period_summary", "entryCount": summary.EntryCount}
	if params.From != nil {
		details["from"] = params.From.Format("2006-01-02")
	}
	if params.To != nil {
		details["to"] = params.To.Format("2006-01-02")
	}
	if err := s.auditRepo.SaveAuditLog(ctx, newAuditLog(cb, userID, domain.AuditReportGenerated, "Report", cashbookID, details, s.Now())); err != nil {
		s.LogError(ctx, err, "Failed to record report generation", slog.String("cashbook_id", cashbookID))
	}

	return &summary, nil
}
