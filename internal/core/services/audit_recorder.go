package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// Keys of the value maps stored in EntryAudit rows.
const (
	fieldType          = "type"
	fieldAmount        = "amount"
	fieldDescription   = "description"
	fieldCategoryID    = "categoryId"
	fieldContactID     = "contactId"
	fieldPaymentModeID = "paymentModeId"
	fieldEntryDate     = "entryDate"
)

// entryValues is the JSON-able snapshot of an entry's tracked fields.
func entryValues(e domain.Entry) map[string]any {
	return map[string]any{
		fieldType:          string(e.Type),
		fieldAmount:        e.Amount.String(),
		fieldDescription:   e.Description,
		fieldCategoryID:    optionalValue(e.CategoryID),
		fieldContactID:     optionalValue(e.ContactID),
		fieldPaymentModeID: optionalValue(e.PaymentModeID),
		fieldEntryDate:     e.EntryDate.UTC().Format(time.RFC3339),
	}
}

func optionalValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// diffEntry returns old and new values plus a change map restricted to fields whose value differs.
// Amounts compare with decimal equality and dates by instant.
func diffEntry(old, updated domain.Entry) (map[string]any, map[string]any, map[string]domain.FieldChange) {
	oldValues := make(map[string]any)
	newValues := make(map[string]any)
	changes := make(map[string]domain.FieldChange)

	record := func(field string, from, to any) {
		oldValues[field] = from
		newValues[field] = to
		changes[field] = domain.FieldChange{From: from, To: to}
	}

	if old.Type != updated.Type {
		record(fieldType, string(old.Type), string(updated.Type))
	}
	if !old.Amount.Equal(updated.Amount) {
		record(fieldAmount, old.Amount.String(), updated.Amount.String())
	}
	if old.Description != updated.Description {
		record(fieldDescription, old.Description, updated.Description)
	}
	if !equalOptional(old.CategoryID, updated.CategoryID) {
		record(fieldCategoryID, optionalValue(old.CategoryID), optionalValue(updated.CategoryID))
	}
	if !equalOptional(old.ContactID, updated.ContactID) {
		record(fieldContactID, optionalValue(old.ContactID), optionalValue(updated.ContactID))
	}
	if !equalOptional(old.PaymentModeID, updated.PaymentModeID) {
		record(fieldPaymentModeID, optionalValue(old.PaymentModeID), optionalValue(updated.PaymentModeID))
	}
	if !old.EntryDate.Equal(updated.EntryDate) {
		record(fieldEntryDate, old.EntryDate.UTC().Format(time.RFC3339), updated.EntryDate.UTC().Format(time.RFC3339))
	}
	return oldValues, newValues, changes
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// entryMutation describes one balance-affecting change for the audit trail.
type entryMutation struct {
	Cashbook  *domain.Cashbook
	Entry     domain.Entry
	UserID    string
	Action    domain.EntryAuditAction
	OldValues map[string]any
	NewValues map[string]any
	Changes   map[string]domain.FieldChange
	Before    domain.Aggregates
	After     domain.Aggregates
	Reason    *string
	Details   map[string]any
	At        time.Time
}

var financialActionFor = map[domain.EntryAuditAction]domain.FinancialAction{
	domain.EntryCreated: domain.FinEntryCreated,
	domain.EntryUpdated: domain.FinEntryUpdated,
	domain.EntryDeleted: domain.FinEntryDeleted,
}

// recordEntryMutation writes the EntryAudit and FinancialAuditLog of a mutation.
// Either insert failing aborts the caller's transaction.
func recordEntryMutation(ctx context.Context, tx portsrepo.AuditTxWriter, m entryMutation) error {
	audit := domain.EntryAudit{
		AuditID:   uuid.NewString(),
		EntryID:   m.Entry.EntryID,
		UserID:    m.UserID,
		Action:    m.Action,
		OldValues: m.OldValues,
		NewValues: m.NewValues,
		Changes:   m.Changes,
		CreatedAt: m.At,
	}
	if err := tx.InsertEntryAudit(ctx, audit); err != nil {
		return fmt.Errorf("record entry audit: %w", err)
	}

	entryID := m.Entry.EntryID
	log := domain.FinancialAuditLog{
		LogID:         uuid.NewString(),
		UserID:        m.UserID,
		WorkspaceID:   m.Cashbook.WorkspaceID,
		CashbookID:    m.Cashbook.CashbookID,
		EntryID:       &entryID,
		Action:        financialActionFor[m.Action],
		Amount:        m.Entry.Amount,
		BalanceBefore: m.Before.Balance,
		BalanceAfter:  m.After.Balance,
		Reason:        m.Reason,
		Details:       m.Details,
		CreatedAt:     m.At,
	}
	if err := tx.InsertFinancialAuditLog(ctx, log); err != nil {
		return fmt.Errorf("record financial audit log: %w", err)
	}
	return nil
}

// recordRecalculation writes the BALANCE_RECALCULATED financial log.
func recordRecalculation(ctx context.Context, tx portsrepo.AuditTxWriter, cb *domain.Cashbook, userID string, previous, current domain.Aggregates, at time.Time) error {
	drift := current.Balance.Sub(previous.Balance)
	log := domain.FinancialAuditLog{
		LogID:         uuid.NewString(),
		UserID:        userID,
		WorkspaceID:   cb.WorkspaceID,
		CashbookID:    cb.CashbookID,
		Action:        domain.FinBalanceRecalculated,
		Amount:        drift,
		BalanceBefore: previous.Balance,
		BalanceAfter:  current.Balance,
		Details: map[string]any{
			"previous": aggregateValues(previous),
			"current":  aggregateValues(current),
			"drift":    drift.String(),
		},
		CreatedAt: at,
	}
	if err := tx.InsertFinancialAuditLog(ctx, log); err != nil {
		return fmt.Errorf("record recalculation: %w", err)
	}
	return nil
}

func aggregateValues(a domain.Aggregates) map[string]any {
	return map[string]any{
		"balance":      a.Balance.String(),
		"totalIncome":  a.TotalIncome.String(),
		"totalExpense": a.TotalExpense.String(),
	}
}

// newAuditLog builds a general audit row scoped to a cashbook.
func newAuditLog(cb *domain.Cashbook, userID string, action domain.AuditAction, resource, resourceID string, details map[string]any, at time.Time) domain.AuditLog {
	workspaceID := cb.WorkspaceID
	cashbookID := cb.CashbookID
	return domain.AuditLog{
		LogID:       uuid.NewString(),
		UserID:      userID,
		WorkspaceID: &workspaceID,
		CashbookID:  &cashbookID,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		Details:     details,
		CreatedAt:   at,
	}
}
