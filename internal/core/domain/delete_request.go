package domain

import (
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
)

// DeleteRequestStatus is the lifecycle state of a DeleteRequest.
type DeleteRequestStatus string

const (
	DeleteRequestPending  DeleteRequestStatus = "PENDING"
	DeleteRequestApproved DeleteRequestStatus = "APPROVED"
	DeleteRequestRejected DeleteRequestStatus = "REJECTED"
)

func (s DeleteRequestStatus) IsValid() bool {
	switch s {
	case DeleteRequestPending, DeleteRequestApproved, DeleteRequestRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s DeleteRequestStatus) IsTerminal() bool {
	return s == DeleteRequestApproved || s == DeleteRequestRejected
}

// DeleteRequest is a deferred deletion awaiting a second party.
type DeleteRequest struct {
	RequestID   string              `json:"requestID"`
	EntryID     string              `json:"entryID"`
	CashbookID  string              `json:"cashbookID"`
	RequesterID string              `json:"requesterID"`
	Reason      string              `json:"reason"`
	Status      DeleteRequestStatus `json:"status"`
	ReviewerID  *string             `json:"reviewerID,omitempty"`
	ReviewNote  *string             `json:"reviewNote,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// Review moves a pending request to its terminal decision.
// A request can be reviewed once, and never by its requester.
func (r *DeleteRequest) Review(reviewerID string, decision DeleteRequestStatus, note *string, at time.Time) error {
	if err := r.CheckReviewable(reviewerID); err != nil {
		return err
	}
	if !decision.IsTerminal() {
		return apperrors.NewValidationError("review decision must be APPROVED or REJECTED")
	}
	r.Status = decision
	r.ReviewerID = &reviewerID
	r.ReviewNote = note
	r.ReviewedAt = &at
	return nil
}

// CheckReviewable reports why reviewerID may not settle the request, if anything.
func (r *DeleteRequest) CheckReviewable(reviewerID string) error {
	if r.Status != DeleteRequestPending {
		return apperrors.ErrAlreadyReviewed
	}
	if r.RequesterID == reviewerID {
		return apperrors.ErrSelfReview
	}
	return nil
}

// DeletionOutcome tells the caller which path a deletion request took.
type DeletionOutcome string

const (
	DeletionPerformed DeletionOutcome = "DELETED"
	DeletionRequested DeletionOutcome = "REQUEST_CREATED"
)

// DeletionResult is returned from a delete call. Request is set only when a DeleteRequest was created.
type DeletionResult struct {
	Outcome DeletionOutcome `json:"outcome"`
	Entry   *Entry          `json:"entry,omitempty"`
	Request *DeleteRequest  `json:"request,omitempty"`
}
