package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aggregates are the derived running totals a cashbook keeps for its live entries.
// Balance always equals TotalIncome minus TotalExpense.
type Aggregates struct {
	Balance      decimal.Decimal `json:"balance"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}

// NewAggregates derives the balance from the two totals.
func NewAggregates(totalIncome, totalExpense decimal.Decimal) Aggregates {
	return Aggregates{
		Balance:      totalIncome.Sub(totalExpense),
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
	}
}

// Consistent reports whether Balance == TotalIncome - TotalExpense exactly.
func (a Aggregates) Consistent() bool {
	return a.Balance.Equal(a.TotalIncome.Sub(a.TotalExpense))
}

// Apply returns the aggregates after delta is added.
func (a Aggregates) Apply(delta BalanceDelta) Aggregates {
	return Aggregates{
		Balance:      a.Balance.Add(delta.Balance()),
		TotalIncome:  a.TotalIncome.Add(delta.Income),
		TotalExpense: a.TotalExpense.Add(delta.Expense),
	}
}

// Equal compares all three fields with decimal equality.
func (a Aggregates) Equal(other Aggregates) bool {
	return a.Balance.Equal(other.Balance) &&
		a.TotalIncome.Equal(other.TotalIncome) &&
		a.TotalExpense.Equal(other.TotalExpense)
}

// BalanceDelta is a signed change to a cashbook's income and expense totals.
type BalanceDelta struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance is the net effect of the delta on the running balance.
func (d BalanceDelta) Balance() decimal.Decimal {
	return d.Income.Sub(d.Expense)
}

func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{Income: d.Income.Add(other.Income), Expense: d.Expense.Add(other.Expense)}
}

func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{Income: d.Income.Neg(), Expense: d.Expense.Neg()}
}

func (d BalanceDelta) IsZero() bool {
	return d.Income.IsZero() && d.Expense.IsZero()
}

// Cashbook is a ledger scoped to a workspace. Its aggregates are only ever
// changed by entry mutations and recalculation.
type Cashbook struct {
	CashbookID    string `json:"cashbookID"`
	WorkspaceID   string `json:"workspaceID"`
	Name          string `json:"name"`
	Currency      string `json:"currency"` // ISO-4217
	AllowBackdate bool   `json:"allowBackdate"`
	IsActive      bool   `json:"isActive"`
	Aggregates
	AuditFields
}

// PeriodSummary totals live entries of a cashbook within an optional date range.
type PeriodSummary struct {
	CashbookID   string          `json:"cashbookID"`
	Currency     string          `json:"currency"`
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`
	EntryCount   int             `json:"entryCount"`
}
