package mapping

import (
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/models"
)

// ToDomainCashbook converts a model Cashbook to a domain Cashbook
func ToDomainCashbook(m models.Cashbook) domain.Cashbook {
	return domain.Cashbook{
		CashbookID:    m.CashbookID,
		WorkspaceID:   m.WorkspaceID,
		Name:          m.Name,
		Currency:      m.Currency,
		AllowBackdate: m.AllowBackdate,
		IsActive:      m.IsActive,
		Aggregates: domain.Aggregates{
			Balance:      m.Balance,
			TotalIncome:  m.TotalIncome,
			TotalExpense: m.TotalExpense,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
