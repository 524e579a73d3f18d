package models

import (
	"github.com/shopspring/decimal"
)

// Cashbook represents a row of the cashbooks table.
type Cashbook struct {
	CashbookID    string          `db:"cashbook_id"`
	WorkspaceID   string          `db:"workspace_id"`
	Name          string          `db:"name"`
	Currency      string          `db:"currency"`
	AllowBackdate bool            `db:"allow_backdate"`
	IsActive      bool            `db:"is_active"`
	Balance       decimal.Decimal `db:"balance"`
	TotalIncome   decimal.Decimal `db:"total_income"`
	TotalExpense  decimal.Decimal `db:"total_expense"`
	AuditFields
}
