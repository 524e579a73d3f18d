package services

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/dto"
)

// EntryReaderSvc defines read operations on entries.
type EntryReaderSvc interface {
	GetEntry(ctx context.Context, cashbookID, entryID, userID string) (*domain.Entry, error)
	ListEntries(ctx context.Context, cashbookID, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
	// GetEntryAuditTrail requires VIEW_AUDIT_LOG.
	GetEntryAuditTrail(ctx context.Context, cashbookID, entryID, userID string) ([]domain.EntryAudit, error)
}

// EntryWriterSvc defines balance-affecting entry mutations.
type EntryWriterSvc interface {
	CreateEntry(ctx context.Context, cashbookID string, req dto.CreateEntryRequest, userID string) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, cashbookID, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.Entry, error)
}

// EntrySvcFacade combines all entry service interfaces
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
