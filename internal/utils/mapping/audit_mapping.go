package mapping

import (
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/models"
)

// ToModelEntryAudit converts a domain EntryAudit to a model EntryAudit
func ToModelEntryAudit(d domain.EntryAudit) models.EntryAudit {
	return models.EntryAudit{
		AuditID:   d.AuditID,
		EntryID:   d.EntryID,
		UserID:    d.UserID,
		Action:    string(d.Action),
		OldValues: d.OldValues,
		NewValues: d.NewValues,
		Changes:   toChangeMap(d.Changes),
		CreatedAt: d.CreatedAt,
	}
}

// ToDomainEntryAudit converts a model EntryAudit to a domain EntryAudit
func ToDomainEntryAudit(m models.EntryAudit) domain.EntryAudit {
	return domain.EntryAudit{
		AuditID:   m.AuditID,
		EntryID:   m.EntryID,
		UserID:    m.UserID,
		Action:    domain.EntryAuditAction(m.Action),
		OldValues: m.OldValues,
		NewValues: m.NewValues,
		Changes:   fromChangeMap(m.Changes),
		CreatedAt: m.CreatedAt,
	}
}

// toChangeMap flattens field changes into the {"from":…, "to":…} JSON shape.
func toChangeMap(changes map[string]domain.FieldChange) map[string]any {
	if changes == nil {
		return nil
	}
	out := make(map[string]any, len(changes))
	for field, c := range changes {
		out[field] = map[string]any{"from": c.From, "to": c.To}
	}
	return out
}

func fromChangeMap(raw map[string]any) map[string]domain.FieldChange {
	if raw == nil {
		return nil
	}
	out := make(map[string]domain.FieldChange, len(raw))
	for field, v := range raw {
		pair, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out[field] = domain.FieldChange{From: pair["from"], To: pair["to"]}
	}
	return out
}

// ToModelFinancialAuditLog converts a domain FinancialAuditLog to a model FinancialAuditLog
func ToModelFinancialAuditLog(d domain.FinancialAuditLog) models.FinancialAuditLog {
	return models.FinancialAuditLog{
		LogID:         d.LogID,
		UserID:        d.UserID,
		WorkspaceID:   d.WorkspaceID,
		CashbookID:    d.CashbookID,
		EntryID:       d.EntryID,
		Action:        string(d.Action),
		Amount:        d.Amount,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		Reason:        d.Reason,
		Details:       d.Details,
		CreatedAt:     d.CreatedAt,
	}
}

func ToDomainFinancialAuditLog(m models.FinancialAuditLog) domain.FinancialAuditLog {
	return domain.FinancialAuditLog{
		LogID:         m.LogID,
		UserID:        m.UserID,
		WorkspaceID:   m.WorkspaceID,
		CashbookID:    m.CashbookID,
		EntryID:       m.EntryID,
		Action:        domain.FinancialAction(m.Action),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Reason:        m.Reason,
		Details:       m.Details,
		CreatedAt:     m.CreatedAt,
	}
}

func ToModelAuditLog(d domain.AuditLog) models.AuditLog {
	return models.AuditLog{
		LogID:       d.LogID,
		UserID:      d.UserID,
		WorkspaceID: d.WorkspaceID,
		CashbookID:  d.CashbookID,
		Action:      string(d.Action),
		Resource:    d.Resource,
		ResourceID:  d.ResourceID,
		Details:     d.Details,
		CreatedAt:   d.CreatedAt,
	}
}
