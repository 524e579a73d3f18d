package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/middleware"
	"github.com/SscSPs/cashbook_backend/internal/utils"
	"github.com/SscSPs/cashbook_backend/internal/utils/accounting"
)

// ledgerEngine applies entry mutations to a cashbook inside a caller-owned transaction.
//
// Every mutation locks the cashbook row first and the entry row second, so two
// mutations on one cashbook always queue in the same order. The balance change
// is applied with an atomic increment and the audit rows are written through
// the same transaction, so a failure anywhere leaves nothing behind.
type ledgerEngine struct {
	now func() time.Time
}

// lockActiveCashbook locks the cashbook row; inactive cashbooks are reported as missing.
func (l ledgerEngine) lockActiveCashbook(ctx context.Context, tx portsrepo.LedgerTx, cashbookID string) (*domain.Cashbook, error) {
	cb, err := tx.LockCashbook(ctx, cashbookID)
	if err != nil {
		return nil, err
	}
	if !cb.IsActive {
		return nil, apperrors.NewNotFoundError("Cashbook")
	}
	return cb, nil
}

// lockLiveEntry locks an entry of cashbookID. Deleted entries and entries of other cashbooks are not found.
func (l ledgerEngine) lockLiveEntry(ctx context.Context, tx portsrepo.LedgerTx, cashbookID, entryID string) (*domain.Entry, error) {
	entry, err := tx.LockEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.CashbookID != cashbookID || entry.IsDeleted() {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	return entry, nil
}

func (l ledgerEngine) checkBackdate(cb *domain.Cashbook, entryDate, now time.Time) error {
	if !cb.AllowBackdate && domain.IsBackdated(entryDate, now) {
		return apperrors.ErrBackdateNotAllowed
	}
	return nil
}

func (l ledgerEngine) validateAmount(cb *domain.Cashbook, entry domain.Entry) error {
	if err := accounting.ValidateAmount(entry.Amount); err != nil {
		return err
	}
	return utils.ValidateAmountScale(entry.Amount, cb.Currency)
}

// create inserts entry and adds its effect to the cashbook.
func (l ledgerEngine) create(ctx context.Context, tx portsrepo.LedgerTx, entry domain.Entry, userID string) (*domain.Entry, error) {
	now := l.now()
	cb, err := l.lockActiveCashbook(ctx, tx, entry.CashbookID)
	if err != nil {
		return nil, err
	}
	if err := l.checkBackdate(cb, entry.EntryDate, now); err != nil {
		return nil, err
	}
	if err := l.validateAmount(cb, entry); err != nil {
		return nil, err
	}

	delta, err := accounting.DeltaForEntry(entry.Type, entry.Amount)
	if err != nil {
		return nil, err
	}

	entry.Version = 1
	entry.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	after, err := tx.ApplyBalanceDelta(ctx, cb.CashbookID, delta, userID, now)
	if err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}

	err = recordEntryMutation(ctx, tx, entryMutation{
		Cashbook:  cb,
		Entry:     entry,
		UserID:    userID,
		Action:    domain.EntryCreated,
		NewValues: entryValues(entry),
		Before:    cb.Aggregates,
		After:     after,
		Details:   map[string]any{"type": string(entry.Type)},
		At:        now,
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// update reverses the locked entry's effect, applies the patched entry's effect and bumps the version.
func (l ledgerEngine) update(ctx context.Context, tx portsrepo.LedgerTx, cashbookID, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.Entry, error) {
	now := l.now()
	cb, err := l.lockActiveCashbook(ctx, tx, cashbookID)
	if err != nil {
		return nil, err
	}
	old, err := l.lockLiveEntry(ctx, tx, cashbookID, entryID)
	if err != nil {
		return nil, err
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != old.Version {
		return nil, apperrors.NewDomainError(http.StatusConflict, apperrors.CodeVersionConflict,
			fmt.Sprintf("entry is at version %d, expected %d", old.Version, *req.ExpectedVersion),
			apperrors.ErrVersionMismatch)
	}

	updated := applyEntryPatch(*old, req)
	if !updated.Type.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid entry type '%s'", updated.Type))
	}
	if err := l.validateAmount(cb, updated); err != nil {
		return nil, err
	}
	if !updated.EntryDate.Equal(old.EntryDate) {
		if err := l.checkBackdate(cb, updated.EntryDate, now); err != nil {
			return nil, err
		}
	}

	oldValues, newValues, changes := diffEntry(*old, updated)

	delta, err := accounting.UpdateDelta(*old, updated)
	if err != nil {
		return nil, err
	}

	updated.Version = old.Version + 1
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID
	if err := tx.UpdateEntry(ctx, updated); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	after, err := tx.ApplyBalanceDelta(ctx, cb.CashbookID, delta, userID, now)
	if err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}

	err = recordEntryMutation(ctx, tx, entryMutation{
		Cashbook:  cb,
		Entry:     updated,
		UserID:    userID,
		Action:    domain.EntryUpdated,
		OldValues: oldValues,
		NewValues: newValues,
		Changes:   changes,
		Before:    cb.Aggregates,
		After:     after,
		Details: map[string]any{
			"previousType":   string(old.Type),
			"previousAmount": old.Amount.String(),
			"balanceDelta":   delta.Balance().String(),
			"version":        updated.Version,
		},
		At: now,
	})
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		middleware.GetLoggerFromCtx(ctx).Debug("Entry update changed no fields", slog.String("entry_id", entryID))
	}
	return &updated, nil
}

// remove soft-deletes an entry and reverses its effect. deletedBy is the user the reversal is attributed to.
func (l ledgerEngine) remove(ctx context.Context, tx portsrepo.LedgerTx, cashbookID, entryID, deletedBy, reason string) (*domain.Entry, error) {
	now := l.now()
	cb, err := l.lockActiveCashbook(ctx, tx, cashbookID)
	if err != nil {
		return nil, err
	}
	entry, err := l.lockLiveEntry(ctx, tx, cashbookID, entryID)
	if err != nil {
		return nil, err
	}

	reversal, err := accounting.ReversalOf(*entry)
	if err != nil {
		return nil, err
	}

	deletion := domain.EntryDeletion{DeletedAt: now, DeletedBy: deletedBy, Reason: reason}
	if err := tx.SoftDeleteEntry(ctx, entryID, deletion); err != nil {
		return nil, fmt.Errorf("soft delete entry: %w", err)
	}

	after, err := tx.ApplyBalanceDelta(ctx, cb.CashbookID, reversal, deletedBy, now)
	if err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}

	oldValues := entryValues(*entry)
	entry.Deletion = &deletion
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = deletedBy

	err = recordEntryMutation(ctx, tx, entryMutation{
		Cashbook:  cb,
		Entry:     *entry,
		UserID:    deletedBy,
		Action:    domain.EntryDeleted,
		OldValues: oldValues,
		Before:    cb.Aggregates,
		After:     after,
		Reason:    &reason,
		At:        now,
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// applyEntryPatch returns old with every non-nil field of req applied. An empty link ID clears the link.
func applyEntryPatch(old domain.Entry, req dto.UpdateEntryRequest) domain.Entry {
	updated := old
	if req.Type != nil {
		updated.Type = *req.Type
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil {
		updated.CategoryID = clearable(*req.CategoryID)
	}
	if req.ContactID != nil {
		updated.ContactID = clearable(*req.ContactID)
	}
	if req.PaymentModeID != nil {
		updated.PaymentModeID = clearable(*req.PaymentModeID)
	}
	if req.EntryDate != nil {
		updated.EntryDate = req.EntryDate.UTC()
	}
	return updated
}

func clearable(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
