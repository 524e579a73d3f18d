package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/platform/breaker"
	"github.com/SscSPs/cashbook_backend/internal/utils/pagination"
)

const entryResource = "Entry"

const (
	defaultFinancialLogPageSize = 50
	maxFinancialLogPageSize     = 500
)

type reconciliationService struct {
	BaseService
	txManager portsrepo.TransactionManager
	auditRepo portsrepo.AuditRepositoryFacade
	dbBreaker *breaker.Breaker
	engine    ledgerEngine
}

// NewReconciliationService creates the recalculation and reconciliation service.
// dbBreaker guards the full aggregate query.
func NewReconciliationService(repos portsrepo.RepositoryProvider, authorizer portssvc.CashbookAuthorizerSvc, dbBreaker *breaker.Breaker, opts ...ServiceOption) portssvc.ReconciliationSvc {
	svc := &reconciliationService{
		BaseService: newBaseService(authorizer, opts...),
		txManager:   repos.TxManager,
		auditRepo:   repos.AuditRepo,
		dbBreaker:   dbBreaker,
	}
	svc.engine = ledgerEngine{now: svc.Now}
	return svc
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// RecalculateBalance recomputes the aggregates from live entries and overwrites the stored ones.
// Running it twice with no mutation in between yields the same aggregates.
func (s *reconciliationService) RecalculateBalance(ctx context.Context, cashbookID, userID string) (*dto.RecalculationResult, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermRecalculateBalance); err != nil {
		return nil, err
	}

	var result *dto.RecalculationResult
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		cb, err := s.engine.lockActiveCashbook(ctx, tx, cashbookID)
		if err != nil {
			return err
		}

		current, err := breaker.Call(ctx, s.dbBreaker, func(ctx context.Context) (domain.Aggregates, error) {
			return tx.SumEntriesByType(ctx, cashbookID)
		})
		if err != nil {
			return err
		}

		now := s.Now()
		if err := tx.SetAggregates(ctx, cashbookID, current, userID, now); err != nil {
			return err
		}
		if err := recordRecalculation(ctx, tx, cb, userID, cb.Aggregates, current, now); err != nil {
			return err
		}

		result = &dto.RecalculationResult{
			CashbookID: cashbookID,
			Previous:   cb.Aggregates,
			Current:    current,
			Drift:      current.Balance.Sub(cb.Balance),
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to recalculate balance", slog.String("cashbook_id", cashbookID))
		return nil, err
	}

	if !result.Drift.IsZero() {
		s.GetLogger(ctx).Warn("Balance drift corrected by recalculation",
			slog.String("cashbook_id", cashbookID),
			slog.String("drift", result.Drift.String()))
	}
	s.LogInfo(ctx, "Balance recalculated",
		slog.String("cashbook_id", cashbookID),
		slog.String("balance", result.Current.Balance.String()))
	return result, nil
}

// ToggleReconciliation flips an entry's reconciled flag. Balances are untouched.
func (s *reconciliationService) ToggleReconciliation(ctx context.Context, cashbookID, entryID, userID string) (*domain.Entry, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermReconcileEntry); err != nil {
		return nil, err
	}

	var toggled *domain.Entry
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		cb, err := s.engine.lockActiveCashbook(ctx, tx, cashbookID)
		if err != nil {
			return err
		}
		entry, err := s.engine.lockLiveEntry(ctx, tx, cashbookID, entryID)
		if err != nil {
			return err
		}

		now := s.Now()
		entry.IsReconciled = !entry.IsReconciled
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = userID
		if err := tx.SetEntryReconciled(ctx, entryID, entry.IsReconciled, userID, now); err != nil {
			return err
		}

		action := domain.AuditEntryUnreconciled
		if entry.IsReconciled {
			action = domain.AuditEntryReconciled
		}
		if err := tx.InsertAuditLog(ctx, newAuditLog(cb, userID, action, entryResource, entryID, nil, now)); err != nil {
			return err
		}
		toggled = entry
		return nil
	})
	if err != nil {
		s.logMutationError(ctx, err, "Failed to toggle reconciliation", cashbookID, entryID)
		return nil, err
	}

	s.LogInfo(ctx, "Entry reconciliation toggled",
		slog.String("entry_id", entryID),
		slog.Bool("is_reconciled", toggled.IsReconciled))
	return toggled, nil
}

func (s *reconciliationService) GetFinancialSummary(ctx context.Context, cashbookID, userID string) (*domain.Cashbook, error) {
	cb, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewEntries)
	if err != nil {
		return nil, err
	}
	return cb, nil
}

func (s *reconciliationService) GetFinancialAuditLogs(ctx context.Context, cashbookID, userID string, params dto.FinancialAuditLogParams) (*dto.FinancialAuditLogResponse, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewAuditLog); err != nil {
		return nil, err
	}

	limit := pagination.ClampLimit(params.Limit, defaultFinancialLogPageSize, maxFinancialLogPageSize)
	logs, err := s.auditRepo.ListFinancialAuditLogs(ctx, cashbookID, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list financial audit logs", slog.String("cashbook_id", cashbookID))
		return nil, err
	}
	if logs == nil {
		logs = []domain.FinancialAuditLog{}
	}
	return &dto.FinancialAuditLogResponse{CashbookID: cashbookID, Logs: logs}, nil
}
