package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seededStore() *Store {
	s := NewStore()
	s.SeedCashbook(domain.Cashbook{
		CashbookID:  "cb-1",
		WorkspaceID: "ws-1",
		Name:        "Petty cash",
		Currency:    "USD",
		IsActive:    true,
		Aggregates:  domain.NewAggregates(decimal.Zero, decimal.Zero),
	})
	s.SeedMember("cb-1", "user-1", domain.RoleAdmin)
	return s
}

func testEntry(id string, day int, amount int64) domain.Entry {
	date := time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC)
	return domain.Entry{
		EntryID:     id,
		CashbookID:  "cb-1",
		Type:        domain.Income,
		Amount:      decimal.NewFromInt(amount),
		EntryDate:   date,
		Version:     1,
		AuditFields: domain.AuditFields{CreatedAt: date.Add(time.Hour), CreatedBy: "user-1"},
	}
}

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		e := testEntry("e-1", 1, 100)
		if err := tx.InsertEntry(ctx, e); err != nil {
			return err
		}
		_, err := tx.ApplyBalanceDelta(ctx, "cb-1", domain.BalanceDelta{Income: e.Amount, Expense: decimal.Zero}, "user-1", testNow)
		return err
	})
	require.NoError(t, err)

	cb, err := s.FindCashbookByID(ctx, "cb-1")
	require.NoError(t, err)
	assert.True(t, cb.Balance.Equal(decimal.NewFromInt(100)))
	_, err = s.FindEntryByID(ctx, "e-1")
	assert.NoError(t, err)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		require.NoError(t, tx.InsertEntry(ctx, testEntry("e-1", 1, 100)))
		_, err := tx.ApplyBalanceDelta(ctx, "cb-1", domain.BalanceDelta{Income: decimal.NewFromInt(100), Expense: decimal.Zero}, "user-1", testNow)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.FindEntryByID(ctx, "e-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	cb, _ := s.FindCashbookByID(ctx, "cb-1")
	assert.True(t, cb.Balance.IsZero())
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			_ = tx.InsertEntry(ctx, testEntry("e-1", 1, 100))
			panic("unexpected")
		})
	})

	_, err := s.FindEntryByID(ctx, "e-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFaultHookFailsNamedOperation(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	injected := errors.New("disk full")
	s.SetFaultHook(func(op string) error {
		if op == OpInsertFinancialAuditLog {
			return injected
		}
		return nil
	})

	err := s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertEntry(ctx, testEntry("e-1", 1, 100)); err != nil {
			return err
		}
		return tx.InsertFinancialAuditLog(ctx, domain.FinancialAuditLog{LogID: "l-1", CashbookID: "cb-1"})
	})
	assert.ErrorIs(t, err, injected)

	_, err = s.FindEntryByID(ctx, "e-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	logs, err := s.ListFinancialAuditLogs(ctx, "cb-1", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestReadsInsideTransactionDoNotDeadlock(t *testing.T) {
	s := seededStore()

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := s.FindCashbookByID(ctx, "cb-1"); err != nil {
			return err
		}
		return s.SaveAuditLog(ctx, domain.AuditLog{LogID: "a-1", Action: domain.AuditReportGenerated})
	})
	require.NoError(t, err)
	assert.Len(t, s.AuditLogs(), 1)
}

func TestNestedTransactionIsRejected(t *testing.T) {
	s := seededStore()

	err := s.RunInTx(context.Background(), func(ctx context.Context, _ portsrepo.LedgerTx) error {
		return s.RunInTx(ctx, func(context.Context, portsrepo.LedgerTx) error { return nil })
	})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestInsertDeleteRequestAllowsOnePending(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	insert := func(id string) error {
		return s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			return tx.InsertDeleteRequest(ctx, domain.DeleteRequest{
				RequestID:   id,
				EntryID:     "e-1",
				CashbookID:  "cb-1",
				RequesterID: "user-2",
				Status:      domain.DeleteRequestPending,
				CreatedAt:   testNow,
			})
		})
	}

	require.NoError(t, insert("r-1"))
	assert.ErrorIs(t, insert("r-2"), apperrors.ErrConflict)

	pending := domain.DeleteRequestPending
	reqs, err := s.ListDeleteRequests(ctx, "cb-1", &pending)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestListEntriesPaginatesNewestFirst(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for i := 1; i <= 5; i++ {
			if err := tx.InsertEntry(ctx, testEntry(fmt.Sprintf("e-%d", i), i, int64(i))); err != nil {
				return err
			}
		}
		return tx.SoftDeleteEntry(ctx, "e-3", domain.EntryDeletion{DeletedAt: testNow, DeletedBy: "user-1", Reason: "dup"})
	}))

	first, next, err := s.ListEntries(ctx, "cb-1", domain.EntryFilter{}, 2, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, []string{"e-5", "e-4"}, ids(first))

	second, next, err := s.ListEntries(ctx, "cb-1", domain.EntryFilter{}, 2, next)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, []string{"e-2", "e-1"}, ids(second))

	bad := "%%%"
	_, _, err = s.ListEntries(ctx, "cb-1", domain.EntryFilter{}, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSummarizeAndSumSkipDeletedEntries(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	expense := testEntry("e-2", 2, 40)
	expense.Type = domain.Expense
	var sum domain.Aggregates
	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for _, e := range []domain.Entry{testEntry("e-1", 1, 100), expense, testEntry("e-3", 3, 7)} {
			if err := tx.InsertEntry(ctx, e); err != nil {
				return err
			}
		}
		if err := tx.SoftDeleteEntry(ctx, "e-3", domain.EntryDeletion{DeletedAt: testNow, DeletedBy: "user-1", Reason: "typo"}); err != nil {
			return err
		}
		var err error
		sum, err = tx.SumEntriesByType(ctx, "cb-1")
		return err
	}))

	assert.True(t, sum.Equal(domain.NewAggregates(decimal.NewFromInt(100), decimal.NewFromInt(40))))

	summary, err := s.SummarizeEntries(ctx, "cb-1", domain.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EntryCount)
	assert.Equal(t, "USD", summary.Currency)
	assert.True(t, summary.Net.Equal(decimal.NewFromInt(60)))
}

func TestFindMemberRole(t *testing.T) {
	s := seededStore()

	role, err := s.FindMemberRole(context.Background(), "cb-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = s.FindMemberRole(context.Background(), "cb-1", "stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func ids(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EntryID
	}
	return out
}
