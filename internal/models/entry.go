package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType mirrors the entry_type column.
type EntryType string

const (
	Income  EntryType = "INCOME"
	Expense EntryType = "EXPENSE"
)

// Entry represents a row of the entries table. Deletion columns are NULL for live entries.
type Entry struct {
	EntryID       string          `db:"entry_id"`
	CashbookID    string          `db:"cashbook_id"`
	EntryType     EntryType       `db:"entry_type"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	CategoryID    *string         `db:"category_id"`
	ContactID     *string         `db:"contact_id"`
	PaymentModeID *string         `db:"payment_mode_id"`
	EntryDate     time.Time       `db:"entry_date"`
	IsReconciled  bool            `db:"is_reconciled"`
	Version       int             `db:"version"`
	DeletedAt     *time.Time      `db:"deleted_at"`
	DeletedBy     *string         `db:"deleted_by"`
	DeletedReason *string         `db:"deleted_reason"`
	AuditFields
}
