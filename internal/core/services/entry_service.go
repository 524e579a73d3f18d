package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/utils/accounting"
	"github.com/SscSPs/cashbook_backend/internal/utils/pagination"
	"github.com/google/uuid"
)

const (
	defaultEntryPageSize = 20
	maxEntryPageSize     = 100
)

// entryService implements the EntrySvcFacade interface
type entryService struct {
	BaseService
	entryRepo portsrepo.EntryRepositoryFacade
	auditRepo portsrepo.AuditRepositoryFacade
	txManager portsrepo.TransactionManager
	engine    ledgerEngine
}

// NewEntryService creates a new entry service.
func NewEntryService(repos portsrepo.RepositoryProvider, authorizer portssvc.CashbookAuthorizerSvc, opts ...ServiceOption) portssvc.EntrySvcFacade {
	svc := &entryService{
		BaseService: newBaseService(authorizer, opts...),
		entryRepo:   repos.EntryRepo,
		auditRepo:   repos.AuditRepo,
		txManager:   repos.TxManager,
	}
	svc.engine = ledgerEngine{now: svc.Now}
	return svc
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

func (s *entryService) CreateEntry(ctx context.Context, cashbookID string, req dto.CreateEntryRequest, userID string) (*domain.Entry, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermCreateEntry); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, apperrors.NewValidationError("type must be INCOME or EXPENSE")
	}
	if err := accounting.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	entry := domain.Entry{
		EntryID:       uuid.NewString(),
		CashbookID:    cashbookID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   strings.TrimSpace(req.Description),
		CategoryID:    req.CategoryID,
		ContactID:     req.ContactID,
		PaymentModeID: req.PaymentModeID,
		EntryDate:     req.EntryDate.UTC(),
	}

	var created *domain.Entry
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		created, err = s.engine.create(ctx, tx, entry, userID)
		return err
	})
	if err != nil {
		s.logMutationError(ctx, err, "Failed to create entry", cashbookID, entry.EntryID)
		return nil, err
	}

	s.LogInfo(ctx, "Entry created",
		slog.String("cashbook_id", cashbookID),
		slog.String("entry_id", created.EntryID),
		slog.String("type", string(created.Type)),
		slog.String("amount", created.Amount.String()))
	return created, nil
}

func (s *entryService) UpdateEntry(ctx context.Context, cashbookID, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.Entry, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermUpdateEntry); err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if err := accounting.ValidateAmount(*req.Amount); err != nil {
			return nil, err
		}
	}

	var updated *domain.Entry
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		updated, err = s.engine.update(ctx, tx, cashbookID, entryID, req, userID)
		return err
	})
	if err != nil {
		s.logMutationError(ctx, err, "Failed to update entry", cashbookID, entryID)
		return nil, err
	}

	s.LogInfo(ctx, "Entry updated",
		slog.String("cashbook_id", cashbookID),
		slog.String("entry_id", entryID),
		slog.Int("version", updated.Version))
	return updated, nil
}

// GetEntry returns a live entry of the cashbook.
func (s *entryService) GetEntry(ctx context.Context, cashbookID, entryID, userID string) (*domain.Entry, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewEntries); err != nil {
		return nil, err
	}
	entry, err := s.findEntry(ctx, cashbookID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted() {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	return entry, nil
}

func (s *entryService) ListEntries(ctx context.Context, cashbookID, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewEntries); err != nil {
		return nil, err
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, apperrors.NewValidationError("'to' must not be before 'from'")
	}

	limit := pagination.ClampLimit(params.Limit, defaultEntryPageSize, maxEntryPageSize)
	entries, nextToken, err := s.entryRepo.ListEntries(ctx, cashbookID, params.Filter(), limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("cashbook_id", cashbookID))
		return nil, err
	}

	s.LogDebug(ctx, "Entries listed", slog.String("cashbook_id", cashbookID), slog.Int("count", len(entries)))
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// GetEntryAuditTrail returns the audit rows of an entry, including deleted ones.
func (s *entryService) GetEntryAuditTrail(ctx context.Context, cashbookID, entryID, userID string) ([]domain.EntryAudit, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermViewAuditLog); err != nil {
		return nil, err
	}
	if _, err := s.findEntry(ctx, cashbookID, entryID); err != nil {
		return nil, err
	}

	audits, err := s.auditRepo.ListEntryAudits(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entry audits", slog.String("entry_id", entryID))
		return nil, err
	}
	return audits, nil
}

func (s *entryService) findEntry(ctx context.Context, cashbookID, entryID string) (*domain.Entry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.CashbookID != cashbookID {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	return entry, nil
}
