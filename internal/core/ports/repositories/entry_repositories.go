package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// EntryReader defines read operations for entry data
type EntryReader interface {
	// FindEntryByID returns an entry whether or not it is deleted.
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)

	// ListEntries returns live entries of a cashbook ordered by entry date then creation time, newest first.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// SummarizeEntries totals live entries matching filter.
	SummarizeEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter) (domain.PeriodSummary, error)
}

// EntryTxWriter defines entry writes performed inside a ledger transaction.
type EntryTxWriter interface {
	// LockEntry reads the entry and holds a write lock on it until the transaction ends.
	LockEntry(ctx context.Context, entryID string) (*domain.Entry, error)

	InsertEntry(ctx context.Context, entry domain.Entry) error

	// UpdateEntry persists the mutable fields and version of an existing entry.
	UpdateEntry(ctx context.Context, entry domain.Entry) error

	SoftDeleteEntry(ctx context.Context, entryID string, deletion domain.EntryDeletion) error

	SetEntryReconciled(ctx context.Context, entryID string, reconciled bool, userID string, now time.Time) error
}

// EntryRepositoryFacade combines the entry read side.
type EntryRepositoryFacade interface {
	EntryReader
}
