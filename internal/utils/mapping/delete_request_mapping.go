package mapping

import (
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/models"
)

// ToModelDeleteRequest converts a domain DeleteRequest to a model DeleteRequest
func ToModelDeleteRequest(d domain.DeleteRequest) models.DeleteRequest {
	return models.DeleteRequest{
		RequestID:   d.RequestID,
		EntryID:     d.EntryID,
		CashbookID:  d.CashbookID,
		RequesterID: d.RequesterID,
		Reason:      d.Reason,
		Status:      string(d.Status),
		ReviewerID:  d.ReviewerID,
		ReviewNote:  d.ReviewNote,
		ReviewedAt:  d.ReviewedAt,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainDeleteRequest converts a model DeleteRequest to a domain DeleteRequest
func ToDomainDeleteRequest(m models.DeleteRequest) domain.DeleteRequest {
	return domain.DeleteRequest{
		RequestID:   m.RequestID,
		EntryID:     m.EntryID,
		CashbookID:  m.CashbookID,
		RequesterID: m.RequesterID,
		Reason:      m.Reason,
		Status:      domain.DeleteRequestStatus(m.Status),
		ReviewerID:  m.ReviewerID,
		ReviewNote:  m.ReviewNote,
		ReviewedAt:  m.ReviewedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func ToDomainDeleteRequestSlice(ms []models.DeleteRequest) []domain.DeleteRequest {
	ds := make([]domain.DeleteRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDeleteRequest(m)
	}
	return ds
}
