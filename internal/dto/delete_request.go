package dto

import (
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// ReviewDeleteRequestRequest is a reviewer's decision on a pending delete request.
type ReviewDeleteRequestRequest struct {
	Status     domain.DeleteRequestStatus `json:"status" binding:"required,reviewdecision" example:"APPROVED"`
	ReviewNote *string                    `json:"reviewNote,omitempty" binding:"omitempty,max=500"`
}

// ListDeleteRequestsParams filters delete request listings.
type ListDeleteRequestsParams struct {
	Status *domain.DeleteRequestStatus `form:"status" binding:"omitempty,deleterequeststatus"`
}

// DeleteRequestResponse defines the data returned for a delete request.
type DeleteRequestResponse struct {
	RequestID   string                     `json:"requestID"`
	EntryID     string                     `json:"entryID"`
	CashbookID  string                     `json:"cashbookID"`
	RequesterID string                     `json:"requesterID"`
	Reason      string                     `json:"reason"`
	Status      domain.DeleteRequestStatus `json:"status"`
	ReviewerID  *string                    `json:"reviewerID,omitempty"`
	ReviewNote  *string                    `json:"reviewNote,omitempty"`
	ReviewedAt  *time.Time                 `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

func ToDeleteRequestResponse(r *domain.DeleteRequest) DeleteRequestResponse {
	return DeleteRequestResponse{
		RequestID:   r.RequestID,
		EntryID:     r.EntryID,
		CashbookID:  r.CashbookID,
		RequesterID: r.RequesterID,
		Reason:      r.Reason,
		Status:      r.Status,
		ReviewerID:  r.ReviewerID,
		ReviewNote:  r.ReviewNote,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func ToDeleteRequestResponses(reqs []domain.DeleteRequest) []DeleteRequestResponse {
	responses := make([]DeleteRequestResponse, len(reqs))
	for i := range reqs {
		responses[i] = ToDeleteRequestResponse(&reqs[i])
	}
	return responses
}

// DeleteEntryResponse reports which path a delete call took.
type DeleteEntryResponse struct {
	Outcome domain.DeletionOutcome `json:"outcome"`
	Entry   *EntryResponse         `json:"entry,omitempty"`
	Request *DeleteRequestResponse `json:"request,omitempty"`
	Message string                 `json:"message"`
}

func ToDeleteEntryResponse(result *domain.DeletionResult) DeleteEntryResponse {
	resp := DeleteEntryResponse{Outcome: result.Outcome}
	if result.Entry != nil {
		e := ToEntryResponse(result.Entry)
		resp.Entry = &e
	}
	if result.Request != nil {
		r := ToDeleteRequestResponse(result.Request)
		resp.Request = &r
	}
	switch result.Outcome {
	case domain.DeletionRequested:
		resp.Message = "Delete request submitted for approval"
	default:
		resp.Message = "Entry deleted"
	}
	return resp
}
