package dto

import (
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest defines the input for recording an entry.
type CreateEntryRequest struct {
	Type          domain.EntryType `json:"type" binding:"required,entrytype" example:"INCOME"`
	Amount        decimal.Decimal  `json:"amount" swaggertype:"string" example:"100.50"` // must be > 0
	Description   string           `json:"description" binding:"max=500"`
	CategoryID    *string          `json:"categoryID,omitempty" binding:"omitempty,uuid"`
	ContactID     *string          `json:"contactID,omitempty" binding:"omitempty,uuid"`
	PaymentModeID *string          `json:"paymentModeID,omitempty" binding:"omitempty,uuid"`
	EntryDate     time.Time        `json:"entryDate" binding:"required"`
}

// UpdateEntryRequest is a partial update. Omitted fields keep their value;
// an empty string clears an optional link.
type UpdateEntryRequest struct {
	Type          *domain.EntryType `json:"type,omitempty" binding:"omitempty,entrytype"`
	Amount        *decimal.Decimal  `json:"amount,omitempty" swaggertype:"string"`
	Description   *string           `json:"description,omitempty" binding:"omitempty,max=500"`
	CategoryID    *string           `json:"categoryID,omitempty"`
	ContactID     *string           `json:"contactID,omitempty"`
	PaymentModeID *string           `json:"paymentModeID,omitempty"`
	EntryDate     *time.Time        `json:"entryDate,omitempty"`
	// ExpectedVersion rejects the update with 409 when the stored version differs.
	ExpectedVersion *int `json:"expectedVersion,omitempty" binding:"omitempty,min=1"`
}

// DeleteEntryRequest carries the reason recorded with a deletion.
type DeleteEntryRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// ListEntriesParams defines the query parameters for listing entries.
type ListEntriesParams struct {
	Type          *domain.EntryType `form:"type" binding:"omitempty,entrytype"`
	CategoryID    *string           `form:"categoryID"`
	ContactID     *string           `form:"contactID"`
	PaymentModeID *string           `form:"paymentModeID"`
	From          *time.Time        `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To            *time.Time        `form:"to" time_format:"2006-01-02" time_utc:"1"`
	IsReconciled  *bool             `form:"isReconciled"`
	Limit         int               `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken     *string           `form:"nextToken"`
}

// Filter converts the query parameters into a domain filter.
func (p ListEntriesParams) Filter() domain.EntryFilter {
	return domain.EntryFilter{
		Type:          p.Type,
		CategoryID:    p.CategoryID,
		ContactID:     p.ContactID,
		PaymentModeID: p.PaymentModeID,
		From:          p.From,
		To:            p.To,
		IsReconciled:  p.IsReconciled,
	}
}

// EntryResponse defines the data returned for an entry.
type EntryResponse struct {
	EntryID       string           `json:"entryID"`
	CashbookID    string           `json:"cashbookID"`
	Type          domain.EntryType `json:"type"`
	Amount        decimal.Decimal  `json:"amount" swaggertype:"string"`
	Description   string           `json:"description"`
	CategoryID    *string          `json:"categoryID,omitempty"`
	ContactID     *string          `json:"contactID,omitempty"`
	PaymentModeID *string          `json:"paymentModeID,omitempty"`
	EntryDate     time.Time        `json:"entryDate"`
	IsReconciled  bool             `json:"isReconciled"`
	Version       int              `json:"version"`
	IsDeleted     bool             `json:"isDeleted"`
	DeletedAt     *time.Time       `json:"deletedAt,omitempty"`
	DeletedReason *string          `json:"deletedReason,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy string           `json:"lastUpdatedBy"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	resp := EntryResponse{
		EntryID:       e.EntryID,
		CashbookID:    e.CashbookID,
		Type:          e.Type,
		Amount:        e.Amount,
		Description:   e.Description,
		CategoryID:    e.CategoryID,
		ContactID:     e.ContactID,
		PaymentModeID: e.PaymentModeID,
		EntryDate:     e.EntryDate,
		IsReconciled:  e.IsReconciled,
		Version:       e.Version,
		IsDeleted:     e.IsDeleted(),
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
	if e.Deletion != nil {
		deletedAt := e.Deletion.DeletedAt
		reason := e.Deletion.Reason
		resp.DeletedAt = &deletedAt
		resp.DeletedReason = &reason
	}
	return resp
}

// ToEntryResponses converts a slice of domain.Entry to []EntryResponse.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}

// EntryAuditResponse is one row of an entry's audit trail.
type EntryAuditResponse struct {
	AuditID   string                        `json:"auditID"`
	UserID    string                        `json:"userID"`
	Action    domain.EntryAuditAction       `json:"action"`
	OldValues map[string]any                `json:"oldValues,omitempty"`
	NewValues map[string]any                `json:"newValues,omitempty"`
	Changes   map[string]domain.FieldChange `json:"changes,omitempty"`
	CreatedAt time.Time                     `json:"createdAt"`
}

// EntryAuditTrailResponse lists the audit rows of one entry, oldest first.
type EntryAuditTrailResponse struct {
	EntryID string               `json:"entryID"`
	Audits  []EntryAuditResponse `json:"audits"`
}

func ToEntryAuditTrailResponse(entryID string, audits []domain.EntryAudit) EntryAuditTrailResponse {
	resp := EntryAuditTrailResponse{EntryID: entryID, Audits: make([]EntryAuditResponse, len(audits))}
	for i, a := range audits {
		resp.Audits[i] = EntryAuditResponse{
			AuditID:   a.AuditID,
			UserID:    a.UserID,
			Action:    a.Action,
			OldValues: a.OldValues,
			NewValues: a.NewValues,
			Changes:   a.Changes,
			CreatedAt: a.CreatedAt,
		}
	}
	return resp
}
