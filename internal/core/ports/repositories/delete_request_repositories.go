package repositories

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// DeleteRequestReader defines read operations for delete requests
type DeleteRequestReader interface {
	FindDeleteRequestByID(ctx context.Context, requestID string) (*domain.DeleteRequest, error)

	// ListDeleteRequests returns a cashbook's requests, newest first. A nil status lists all.
	ListDeleteRequests(ctx context.Context, cashbookID string, status *domain.DeleteRequestStatus) ([]domain.DeleteRequest, error)
}

// DeleteRequestTxWriter defines delete request operations inside a ledger transaction.
type DeleteRequestTxWriter interface {
	// FindPendingDeleteRequest returns the PENDING request for an entry or an ErrNotFound error.
	FindPendingDeleteRequest(ctx context.Context, entryID string) (*domain.DeleteRequest, error)

	// InsertDeleteRequest fails with ErrConflict when the entry already has a PENDING request.
	InsertDeleteRequest(ctx context.Context, req domain.DeleteRequest) error

	LockDeleteRequest(ctx context.Context, requestID string) (*domain.DeleteRequest, error)

	// SaveDeleteRequestReview persists status, reviewer, note and review time.
	SaveDeleteRequestReview(ctx context.Context, req domain.DeleteRequest) error
}

// DeleteRequestRepositoryFacade combines the delete request read side.
type DeleteRequestRepositoryFacade interface {
	DeleteRequestReader
}
