package mapping

import (
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/models"
)

// ToModelEntry converts a domain Entry to a model Entry
func ToModelEntry(d domain.Entry) models.Entry {
	m := models.Entry{
		EntryID:       d.EntryID,
		CashbookID:    d.CashbookID,
		EntryType:     models.EntryType(d.Type),
		Amount:        d.Amount,
		Description:   d.Description,
		CategoryID:    d.CategoryID,
		ContactID:     d.ContactID,
		PaymentModeID: d.PaymentModeID,
		EntryDate:     d.EntryDate,
		IsReconciled:  d.IsReconciled,
		Version:       d.Version,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.Deletion != nil {
		deletedAt := d.Deletion.DeletedAt
		deletedBy := d.Deletion.DeletedBy
		reason := d.Deletion.Reason
		m.DeletedAt = &deletedAt
		m.DeletedBy = &deletedBy
		m.DeletedReason = &reason
	}
	return m
}

// ToDomainEntry converts a model Entry to a domain Entry. A non-NULL deleted_at marks the entry deleted.
func ToDomainEntry(m models.Entry) domain.Entry {
	d := domain.Entry{
		EntryID:       m.EntryID,
		CashbookID:    m.CashbookID,
		Type:          domain.EntryType(m.EntryType),
		Amount:        m.Amount,
		Description:   m.Description,
		CategoryID:    m.CategoryID,
		ContactID:     m.ContactID,
		PaymentModeID: m.PaymentModeID,
		EntryDate:     m.EntryDate,
		IsReconciled:  m.IsReconciled,
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	if m.DeletedAt != nil {
		d.Deletion = &domain.EntryDeletion{DeletedAt: *m.DeletedAt}
		if m.DeletedBy != nil {
			d.Deletion.DeletedBy = *m.DeletedBy
		}
		if m.DeletedReason != nil {
			d.Deletion.Reason = *m.DeletedReason
		}
	}
	return d
}

// ToDomainEntrySlice converts a slice of model Entries to a slice of domain Entries
func ToDomainEntrySlice(ms []models.Entry) []domain.Entry {
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}
