package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/SscSPs/cashbook_backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryDeletionColumns(t *testing.T) {
	deletedAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	d := domain.Entry{
		EntryID:  "e-1",
		Type:     domain.Expense,
		Amount:   decimal.NewFromInt(5),
		Deletion: &domain.EntryDeletion{DeletedAt: deletedAt, DeletedBy: "u-1", Reason: "dup"},
	}

	m := ToModelEntry(d)
	require.NotNil(t, m.DeletedAt)
	assert.Equal(t, models.Expense, m.EntryType)
	assert.Equal(t, "dup", *m.DeletedReason)

	back := ToDomainEntry(m)
	require.True(t, back.IsDeleted())
	assert.Equal(t, *d.Deletion, *back.Deletion)

	m.DeletedAt, m.DeletedBy, m.DeletedReason = nil, nil, nil
	assert.False(t, ToDomainEntry(m).IsDeleted())
}

func TestEntryAuditChangesShape(t *testing.T) {
	d := domain.EntryAudit{
		AuditID: "a-1",
		Action:  domain.EntryUpdated,
		Changes: map[string]domain.FieldChange{"amount": {From: "40", To: "10"}},
	}

	m := ToModelEntryAudit(d)
	assert.Equal(t, map[string]any{"from": "40", "to": "10"}, m.Changes["amount"])

	back := ToDomainEntryAudit(m)
	assert.Equal(t, d.Changes, back.Changes)
	assert.Nil(t, ToDomainEntryAudit(models.EntryAudit{}).Changes)
}
