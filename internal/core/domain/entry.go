package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the closed set of entry kinds.
type EntryType string

const (
	Income  EntryType = "INCOME"
	Expense EntryType = "EXPENSE"
)

func (t EntryType) IsValid() bool {
	return t == Income || t == Expense
}

// EntryDeletion marks an entry as soft-deleted. Deleted rows stay queryable for audit and reporting.
type EntryDeletion struct {
	DeletedAt time.Time `json:"deletedAt"`
	DeletedBy string    `json:"deletedBy"`
	Reason    string    `json:"reason"`
}

// Entry is a single income or expense line in a cashbook.
type Entry struct {
	EntryID       string          `json:"entryID"`
	CashbookID    string          `json:"cashbookID"`
	Type          EntryType       `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // always positive
	Description   string          `json:"description"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	ContactID     *string         `json:"contactID,omitempty"`
	PaymentModeID *string         `json:"paymentModeID,omitempty"`
	EntryDate     time.Time       `json:"entryDate"`
	IsReconciled  bool            `json:"isReconciled"`
	Version       int             `json:"version"`
	Deletion      *EntryDeletion  `json:"deletion,omitempty"`
	AuditFields
}

// IsDeleted reports whether the entry has been soft-deleted.
func (e Entry) IsDeleted() bool {
	return e.Deletion != nil
}

// SignedAmount is +amount for income and -amount for expense.
func (e Entry) SignedAmount() decimal.Decimal {
	if e.Type == Expense {
		return e.Amount.Neg()
	}
	return e.Amount
}

// EntryFilter narrows entry listings. Nil fields are not applied.
type EntryFilter struct {
	Type          *EntryType
	CategoryID    *string
	ContactID     *string
	PaymentModeID *string
	From          *time.Time
	To            *time.Time
	IsReconciled  *bool
}
