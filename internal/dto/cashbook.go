package dto

import (
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// FinancialSummaryResponse is a cashbook's current aggregate position.
type FinancialSummaryResponse struct {
	CashbookID   string          `json:"cashbookID"`
	Name         string          `json:"name"`
	Currency     string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance" swaggertype:"string"`
	TotalIncome  decimal.Decimal `json:"totalIncome" swaggertype:"string"`
	TotalExpense decimal.Decimal `json:"totalExpense" swaggertype:"string"`
	// Balance rounded to the currency's minor unit, for display.
	FormattedBalance string `json:"formattedBalance"`
}

func ToFinancialSummaryResponse(c *domain.Cashbook) FinancialSummaryResponse {
	return FinancialSummaryResponse{
		CashbookID:   c.CashbookID,
		Name:         c.Name,
		Currency:     c.Currency,
		Balance:      c.Balance,
		TotalIncome:  c.TotalIncome,
		TotalExpense: c.TotalExpense,

		FormattedBalance: utils.FormatWithCurrencyPrecision(c.Balance, c.Currency),
	}
}

// RecalculationResult reports the aggregates before and after a from-scratch recomputation.
type RecalculationResult struct {
	CashbookID string            `json:"cashbookID"`
	Previous   domain.Aggregates `json:"previous"`
	Current    domain.Aggregates `json:"current"`
	Drift      decimal.Decimal   `json:"drift" swaggertype:"string"` // current balance minus previous balance
}

// PeriodSummaryParams defines the query parameters for a period report.
type PeriodSummaryParams struct {
	From *time.Time        `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To   *time.Time        `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Type *domain.EntryType `form:"type" binding:"omitempty,entrytype"`
}

// FinancialAuditLogParams defines the query parameters for the financial audit log.
type FinancialAuditLogParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// FinancialAuditLogResponse lists a cashbook's balance-changing audit rows, newest first.
type FinancialAuditLogResponse struct {
	CashbookID string                     `json:"cashbookID"`
	Logs       []domain.FinancialAuditLog `json:"logs"`
}

// ReconcileResponse reports the entry's reconciliation flag after a toggle.
type ReconcileResponse struct {
	EntryID      string `json:"entryID"`
	IsReconciled bool   `json:"isReconciled"`
}
