package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryAuditAction is the kind of mutation an EntryAudit row records.
type EntryAuditAction string

const (
	EntryCreated EntryAuditAction = "CREATED"
	EntryUpdated EntryAuditAction = "UPDATED"
	EntryDeleted EntryAuditAction = "DELETED"
)

// FieldChange is one field of a field-level diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// EntryAudit is an immutable per-entry mutation record.
type EntryAudit struct {
	AuditID   string                 `json:"auditID"`
	EntryID   string                 `json:"entryID"`
	UserID    string                 `json:"userID"`
	Action    EntryAuditAction       `json:"action"`
	OldValues map[string]any         `json:"oldValues,omitempty"`
	NewValues map[string]any         `json:"newValues,omitempty"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// FinancialAction classifies balance-affecting events.
type FinancialAction string

const (
	FinEntryCreated        FinancialAction = "ENTRY_CREATED"
	FinEntryUpdated        FinancialAction = "ENTRY_UPDATED"
	FinEntryDeleted        FinancialAction = "ENTRY_DELETED"
	FinBalanceRecalculated FinancialAction = "BALANCE_RECALCULATED"
)

// FinancialAuditLog is the ledger-level append-only record of balance changes.
type FinancialAuditLog struct {
	LogID         string          `json:"logID"`
	UserID        string          `json:"userID"`
	WorkspaceID   string          `json:"workspaceID"`
	CashbookID    string          `json:"cashbookID"`
	EntryID       *string         `json:"entryID,omitempty"`
	Action        FinancialAction `json:"action"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Reason        *string         `json:"reason,omitempty"`
	Details       map[string]any  `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// AuditAction classifies general (non-balance) audit events.
type AuditAction string

const (
	AuditDeleteRequested   AuditAction = "ENTRY_DELETE_REQUESTED"
	AuditDeleteApproved    AuditAction = "ENTRY_DELETE_APPROVED"
	AuditDeleteRejected    AuditAction = "ENTRY_DELETE_REJECTED"
	AuditEntryReconciled   AuditAction = "ENTRY_RECONCILED"
	AuditEntryUnreconciled AuditAction = "ENTRY_UNRECONCILED"
	AuditPermissionDenied  AuditAction = "PERMISSION_DENIED"
	AuditReportGenerated   AuditAction = "REPORT_GENERATED"
)

// AuditLog is a general purpose audit record.
type AuditLog struct {
	LogID       string         `json:"logID"`
	UserID      string         `json:"userID"`
	WorkspaceID *string        `json:"workspaceID,omitempty"`
	CashbookID  *string        `json:"cashbookID,omitempty"`
	Action      AuditAction    `json:"action"`
	Resource    string         `json:"resource"`
	ResourceID  string         `json:"resourceID"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
