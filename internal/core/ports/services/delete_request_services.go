package services

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/dto"
)

// DeleteRequestSvc decides between direct deletion and second-party approval.
type DeleteRequestSvc interface {
	// RequestDeletion deletes immediately when the caller may also approve deletes,
	// otherwise it opens a PENDING DeleteRequest.
	RequestDeletion(ctx context.Context, cashbookID, entryID, reason, userID string) (*domain.DeletionResult, error)

	ReviewDeleteRequest(ctx context.Context, cashbookID, requestID string, req dto.ReviewDeleteRequestRequest, reviewerID string) (*domain.DeleteRequest, error)

	ListDeleteRequests(ctx context.Context, cashbookID, userID string, status *domain.DeleteRequestStatus) ([]domain.DeleteRequest, error)
}
