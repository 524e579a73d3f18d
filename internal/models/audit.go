package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryAudit represents a row of entry_audits. The value maps are stored as JSONB.
type EntryAudit struct {
	AuditID   string         `db:"audit_id"`
	EntryID   string         `db:"entry_id"`
	UserID    string         `db:"user_id"`
	Action    string         `db:"action"`
	OldValues map[string]any `db:"old_values"`
	NewValues map[string]any `db:"new_values"`
	Changes   map[string]any `db:"changes"`
	CreatedAt time.Time      `db:"created_at"`
}

// FinancialAuditLog represents a row of financial_audit_logs.
type FinancialAuditLog struct {
	LogID         string          `db:"log_id"`
	UserID        string          `db:"user_id"`
	WorkspaceID   string          `db:"workspace_id"`
	CashbookID    string          `db:"cashbook_id"`
	EntryID       *string         `db:"entry_id"`
	Action        string          `db:"action"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Reason        *string         `db:"reason"`
	Details       map[string]any  `db:"details"`
	CreatedAt     time.Time       `db:"created_at"`
}

// AuditLog represents a row of audit_logs.
type AuditLog struct {
	LogID       string         `db:"log_id"`
	UserID      string         `db:"user_id"`
	WorkspaceID *string        `db:"workspace_id"`
	CashbookID  *string        `db:"cashbook_id"`
	Action      string         `db:"action"`
	Resource    string         `db:"resource"`
	ResourceID  string         `db:"resource_id"`
	Details     map[string]any `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
}
