package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name string
		role domain.CashbookRole
		perm domain.Permission
		want bool
	}{
		{"primary admin approves", domain.RolePrimaryAdmin, domain.PermApproveDelete, true},
		{"admin recalculates", domain.RoleAdmin, domain.PermRecalculateBalance, true},
		{"book admin approves", domain.RoleBookAdmin, domain.PermApproveDelete, true},
		{"book admin cannot recalculate", domain.RoleBookAdmin, domain.PermRecalculateBalance, false},
		{"operator deletes", domain.RoleDataOperator, domain.PermDeleteEntry, true},
		{"operator cannot approve", domain.RoleDataOperator, domain.PermApproveDelete, false},
		{"operator cannot read audit", domain.RoleDataOperator, domain.PermViewAuditLog, false},
		{"viewer views", domain.RoleViewer, domain.PermViewEntries, true},
		{"viewer cannot delete", domain.RoleViewer, domain.PermDeleteEntry, false},
		{"unknown role", domain.CashbookRole("OWNER"), domain.PermViewEntries, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.HasPermission(tt.role, tt.perm))
		})
	}
}

func TestAggregatesApply(t *testing.T) {
	agg := domain.NewAggregates(decimal.Zero, decimal.Zero)

	agg = agg.Apply(domain.BalanceDelta{Income: decimal.NewFromInt(100), Expense: decimal.Zero})
	agg = agg.Apply(domain.BalanceDelta{Income: decimal.Zero, Expense: decimal.NewFromInt(40)})

	assert.True(t, agg.Balance.Equal(decimal.NewFromInt(60)))
	assert.True(t, agg.TotalIncome.Equal(decimal.NewFromInt(100)))
	assert.True(t, agg.TotalExpense.Equal(decimal.NewFromInt(40)))
	assert.True(t, agg.Consistent())

	reversed := agg.Apply(domain.BalanceDelta{Income: decimal.Zero, Expense: decimal.NewFromInt(40)}.Neg())
	assert.True(t, reversed.Equal(domain.NewAggregates(decimal.NewFromInt(100), decimal.Zero)))
}

func TestAggregatesConsistentDetectsDrift(t *testing.T) {
	agg := domain.Aggregates{
		Balance:      decimal.NewFromInt(61),
		TotalIncome:  decimal.NewFromInt(100),
		TotalExpense: decimal.NewFromInt(40),
	}
	assert.False(t, agg.Consistent())
}

func TestIsBackdated(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	assert.False(t, domain.IsBackdated(now, now))
	assert.False(t, domain.IsBackdated(time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC), now), "earlier today is not backdated")
	assert.True(t, domain.IsBackdated(time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC), now))
	assert.False(t, domain.IsBackdated(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), now))
}

func TestEntrySignedAmount(t *testing.T) {
	income := domain.Entry{Type: domain.Income, Amount: decimal.NewFromInt(25)}
	expense := domain.Entry{Type: domain.Expense, Amount: decimal.NewFromInt(25)}

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(25)))
	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-25)))
	assert.False(t, income.IsDeleted())

	income.Deletion = &domain.EntryDeletion{DeletedAt: time.Now(), Reason: "duplicate"}
	assert.True(t, income.IsDeleted())
}

func TestDeleteRequestReview(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	newRequest := func() *domain.DeleteRequest {
		return &domain.DeleteRequest{RequestID: "req-1", EntryID: "entry-1", RequesterID: "alice", Status: domain.DeleteRequestPending}
	}

	t.Run("approve", func(t *testing.T) {
		req := newRequest()
		require.NoError(t, req.Review("bob", domain.DeleteRequestApproved, nil, at))
		assert.Equal(t, domain.DeleteRequestApproved, req.Status)
		require.NotNil(t, req.ReviewerID)
		assert.Equal(t, "bob", *req.ReviewerID)
		assert.Equal(t, at, *req.ReviewedAt)
	})

	t.Run("self review", func(t *testing.T) {
		req := newRequest()
		err := req.Review("alice", domain.DeleteRequestApproved, nil, at)
		assert.ErrorIs(t, err, apperrors.ErrSelfReview)
		assert.Equal(t, domain.DeleteRequestPending, req.Status)
	})

	t.Run("already reviewed wins over self review", func(t *testing.T) {
		req := newRequest()
		req.Status = domain.DeleteRequestRejected
		err := req.Review("alice", domain.DeleteRequestApproved, nil, at)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		req := newRequest()
		require.NoError(t, req.Review("bob", domain.DeleteRequestRejected, nil, at))
		err := req.Review("carol", domain.DeleteRequestApproved, nil, at)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
		assert.Equal(t, domain.DeleteRequestRejected, req.Status)
	})

	t.Run("decision must be terminal", func(t *testing.T) {
		req := newRequest()
		err := req.Review("bob", domain.DeleteRequestPending, nil, at)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
