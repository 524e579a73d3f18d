package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/core/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/platform/breaker"
	"github.com/SscSPs/cashbook_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	testCashbookID = "cb-main"
	adminID        = "user-admin"
	bookAdminID    = "user-book-admin"
	operatorID     = "user-operator"
	viewerID       = "user-viewer"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	store     *memory.Store
	dbBreaker *breaker.Breaker
	svc       *portssvc.ServiceContainer
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	suite.store = memory.NewStore()
	suite.store.SeedCashbook(domain.Cashbook{
		CashbookID:  testCashbookID,
		WorkspaceID: "ws-1",
		Name:        "Main",
		Currency:    "USD",
		IsActive:    true,
		Aggregates:  domain.NewAggregates(decimal.Zero, decimal.Zero),
	})
	suite.store.SeedMember(testCashbookID, adminID, domain.RoleAdmin)
	suite.store.SeedMember(testCashbookID, bookAdminID, domain.RoleBookAdmin)
	suite.store.SeedMember(testCashbookID, operatorID, domain.RoleDataOperator)
	suite.store.SeedMember(testCashbookID, viewerID, domain.RoleViewer)

	suite.dbBreaker = breaker.New(breaker.Options{Name: "test-db", FailureThreshold: 1, ResetTimeout: time.Minute})
	suite.svc = services.NewServiceContainer(suite.store.Provider(), suite.dbBreaker,
		services.WithClock(func() time.Time { return suite.now }))
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- helpers ---

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *LedgerServiceTestSuite) createEntry(entryType domain.EntryType, amt string) *domain.Entry {
	entry, err := suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
		Type:        entryType,
		Amount:      amount(amt),
		Description: "test " + string(entryType),
		EntryDate:   suite.now,
	}, adminID)
	suite.Require().NoError(err)
	return entry
}

func (suite *LedgerServiceTestSuite) aggregates() domain.Aggregates {
	cb, err := suite.store.FindCashbookByID(suite.ctx, testCashbookID)
	suite.Require().NoError(err)
	return cb.Aggregates
}

func (suite *LedgerServiceTestSuite) assertAggregates(balance, income, expense string) {
	agg := suite.aggregates()
	suite.True(agg.Balance.Equal(amount(balance)), "balance %s, want %s", agg.Balance, balance)
	suite.True(agg.TotalIncome.Equal(amount(income)), "totalIncome %s, want %s", agg.TotalIncome, income)
	suite.True(agg.TotalExpense.Equal(amount(expense)), "totalExpense %s, want %s", agg.TotalExpense, expense)
	suite.True(agg.Consistent())
}

// --- balance maintenance ---

func (suite *LedgerServiceTestSuite) TestBalanceScenario() {
	suite.createEntry(domain.Income, "100")
	suite.assertAggregates("100", "100", "0")

	expense := suite.createEntry(domain.Expense, "40")
	suite.assertAggregates("60", "100", "40")

	newAmount := amount("10")
	updated, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, expense.EntryID, dto.UpdateEntryRequest{Amount: &newAmount}, adminID)
	suite.Require().NoError(err)
	suite.Equal(2, updated.Version)
	suite.assertAggregates("90", "100", "10")

	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, expense.EntryID, "entered twice", adminID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeletionPerformed, result.Outcome)
	suite.assertAggregates("100", "100", "0")

	recalc, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.Require().NoError(err)
	suite.True(recalc.Previous.Equal(recalc.Current))
	suite.True(recalc.Drift.IsZero())
	suite.assertAggregates("100", "100", "0")
}

func (suite *LedgerServiceTestSuite) TestUpdateEntry_TypeChangeReversesThenApplies() {
	income := suite.createEntry(domain.Income, "100")

	expenseType := domain.Expense
	_, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, income.EntryID, dto.UpdateEntryRequest{Type: &expenseType}, adminID)
	suite.Require().NoError(err)
	suite.assertAggregates("-100", "0", "100")
}

func (suite *LedgerServiceTestSuite) TestUpdateEntry_AuditsOnlyChangedFields() {
	entry := suite.createEntry(domain.Income, "25.50")

	desc := "corrected description"
	sameAmount := amount("25.5")
	_, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID,
		dto.UpdateEntryRequest{Description: &desc, Amount: &sameAmount}, adminID)
	suite.Require().NoError(err)

	audits, err := suite.svc.Entry.GetEntryAuditTrail(suite.ctx, testCashbookID, entry.EntryID, adminID)
	suite.Require().NoError(err)
	suite.Require().Len(audits, 2)
	suite.Equal(domain.EntryCreated, audits[0].Action)
	suite.Equal(domain.EntryUpdated, audits[1].Action)
	suite.Len(audits[1].Changes, 1)
	suite.Equal(domain.FieldChange{From: "test INCOME", To: desc}, audits[1].Changes["description"])
}

func (suite *LedgerServiceTestSuite) TestUpdateEntry_ExpectedVersion() {
	entry := suite.createEntry(domain.Income, "10")
	newAmount := amount("20")

	stale := 7
	_, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID,
		dto.UpdateEntryRequest{Amount: &newAmount, ExpectedVersion: &stale}, adminID)
	suite.ErrorIs(err, apperrors.ErrVersionMismatch)
	suite.Equal(apperrors.CodeVersionConflict, apperrors.CodeFor(err))
	suite.assertAggregates("10", "10", "0")

	current := 1
	updated, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID,
		dto.UpdateEntryRequest{Amount: &newAmount, ExpectedVersion: &current}, adminID)
	suite.Require().NoError(err)
	suite.Equal(2, updated.Version)
	suite.assertAggregates("20", "20", "0")
}

func (suite *LedgerServiceTestSuite) TestUpdateEntry_DeletedEntryIsNotFound() {
	entry := suite.createEntry(domain.Income, "10")
	_, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "mistake", adminID)
	suite.Require().NoError(err)

	desc := "too late"
	_, err = suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID, dto.UpdateEntryRequest{Description: &desc}, adminID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.svc.Entry.GetEntry(suite.ctx, testCashbookID, entry.EntryID, adminID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	audits, err := suite.svc.Entry.GetEntryAuditTrail(suite.ctx, testCashbookID, entry.EntryID, adminID)
	suite.Require().NoError(err)
	suite.Len(audits, 2)
	suite.Equal(domain.EntryDeleted, audits[1].Action)
	suite.Nil(audits[1].NewValues)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_BackdateRule() {
	_, err := suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
		Type:      domain.Income,
		Amount:    amount("5"),
		EntryDate: suite.now.AddDate(0, 0, -1),
	}, adminID)
	suite.ErrorIs(err, apperrors.ErrBackdateNotAllowed)
	suite.Equal(apperrors.CodeBackdateNotAllowed, apperrors.CodeFor(err))

	// Earlier today is not backdated.
	_, err = suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
		Type:      domain.Income,
		Amount:    amount("5"),
		EntryDate: suite.now.Add(-9 * time.Hour),
	}, adminID)
	suite.NoError(err)
	suite.assertAggregates("5", "5", "0")
}

func (suite *LedgerServiceTestSuite) TestUpdateEntry_BackdateRevalidatedOnlyWhenDateChanges() {
	entry := suite.createEntry(domain.Income, "5")
	suite.now = suite.now.AddDate(0, 0, 3)

	desc := "still fine"
	_, err := suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID, dto.UpdateEntryRequest{Description: &desc}, adminID)
	suite.NoError(err)

	earlier := entry.EntryDate.AddDate(0, 0, -1)
	_, err = suite.svc.Entry.UpdateEntry(suite.ctx, testCashbookID, entry.EntryID, dto.UpdateEntryRequest{EntryDate: &earlier}, adminID)
	suite.ErrorIs(err, apperrors.ErrBackdateNotAllowed)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_RejectsBadAmounts() {
	for _, amt := range []string{"0", "-3", "1.001"} {
		_, err := suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
			Type:      domain.Expense,
			Amount:    amount(amt),
			EntryDate: suite.now,
		}, adminID)
		suite.ErrorIs(err, apperrors.ErrValidation, amt)
	}
	suite.assertAggregates("0", "0", "0")
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_FailureLeavesNothingBehind() {
	for _, op := range []string{memory.OpApplyBalanceDelta, memory.OpInsertEntryAudit, memory.OpInsertFinancialAuditLog} {
		injected := errors.New("injected at " + op)
		failOn := op
		suite.store.SetFaultHook(func(op string) error {
			if op == failOn {
				return injected
			}
			return nil
		})

		_, err := suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
			Type:      domain.Income,
			Amount:    amount("100"),
			EntryDate: suite.now,
		}, adminID)
		suite.ErrorIs(err, injected)

		page, err := suite.svc.Entry.ListEntries(suite.ctx, testCashbookID, adminID, dto.ListEntriesParams{})
		suite.Require().NoError(err)
		suite.Empty(page.Entries, op)
		suite.assertAggregates("0", "0", "0")
		logs, err := suite.store.ListFinancialAuditLogs(suite.ctx, testCashbookID, 0)
		suite.Require().NoError(err)
		suite.Empty(logs, op)
	}
}

func (suite *LedgerServiceTestSuite) TestFinancialAuditLogCarriesBalances() {
	suite.createEntry(domain.Income, "100")
	suite.createEntry(domain.Expense, "30")

	logs, err := suite.store.ListFinancialAuditLogs(suite.ctx, testCashbookID, 1)
	suite.Require().NoError(err)
	suite.Require().Len(logs, 1)
	suite.Equal(domain.FinEntryCreated, logs[0].Action)
	suite.True(logs[0].BalanceBefore.Equal(amount("100")))
	suite.True(logs[0].BalanceAfter.Equal(amount("70")))
	suite.True(logs[0].Amount.Equal(amount("30")))
	suite.Equal("ws-1", logs[0].WorkspaceID)
}

func (suite *LedgerServiceTestSuite) TestConcurrentCreatesDoNotLoseUpdates() {
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entryType := domain.Income
			if i%5 == 0 {
				entryType = domain.Expense
			}
			_, err := suite.svc.Entry.CreateEntry(suite.ctx, testCashbookID, dto.CreateEntryRequest{
				Type:      entryType,
				Amount:    amount("2.50"),
				EntryDate: suite.now,
			}, operatorID)
			suite.NoError(err)
		}(i)
	}
	wg.Wait()

	// 20 incomes and 5 expenses of 2.50
	suite.assertAggregates("37.5", "50", "12.5")
}

// --- delete approval ---

func (suite *LedgerServiceTestSuite) TestDeletionApprovalScenario() {
	entry := suite.createEntry(domain.Income, "80")

	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "duplicate of receipt 42", operatorID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeletionRequested, result.Outcome)
	suite.Require().NotNil(result.Request)
	suite.Equal(domain.DeleteRequestPending, result.Request.Status)

	live, err := suite.svc.Entry.GetEntry(suite.ctx, testCashbookID, entry.EntryID, operatorID)
	suite.Require().NoError(err)
	suite.False(live.IsDeleted())
	suite.assertAggregates("80", "80", "0")

	_, err = suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "again", operatorID)
	suite.ErrorIs(err, apperrors.ErrConflict)

	note := "checked against bank statement"
	reviewed, err := suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID,
		dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved, ReviewNote: &note}, bookAdminID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeleteRequestApproved, reviewed.Status)
	suite.Equal(bookAdminID, *reviewed.ReviewerID)
	suite.assertAggregates("0", "0", "0")

	deleted, err := suite.store.FindEntryByID(suite.ctx, entry.EntryID)
	suite.Require().NoError(err)
	suite.Require().True(deleted.IsDeleted())
	suite.Equal(bookAdminID, deleted.Deletion.DeletedBy)
	suite.Equal("duplicate of receipt 42", deleted.Deletion.Reason)

	logs, err := suite.store.ListFinancialAuditLogs(suite.ctx, testCashbookID, 1)
	suite.Require().NoError(err)
	suite.Equal(domain.FinEntryDeleted, logs[0].Action)
	suite.Equal(bookAdminID, logs[0].UserID)
	suite.Equal("duplicate of receipt 42", *logs[0].Reason)

	suite.Contains(suite.auditActions(), domain.AuditDeleteRequested)
	suite.Contains(suite.auditActions(), domain.AuditDeleteApproved)
}

func (suite *LedgerServiceTestSuite) TestReview_SelfReviewRejectedWhateverTheRole() {
	entry := suite.createEntry(domain.Income, "10")
	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "wrong book", operatorID)
	suite.Require().NoError(err)

	approve := dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved}
	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID, approve, operatorID)
	suite.ErrorIs(err, apperrors.ErrSelfReview)

	suite.store.SeedMember(testCashbookID, operatorID, domain.RolePrimaryAdmin)
	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID, approve, operatorID)
	suite.ErrorIs(err, apperrors.ErrSelfReview)
	suite.Equal(apperrors.CodeSelfReview, apperrors.CodeFor(err))
	suite.assertAggregates("10", "10", "0")
}

func (suite *LedgerServiceTestSuite) TestReview_IsSingleShot() {
	entry := suite.createEntry(domain.Expense, "12")
	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "not ours", operatorID)
	suite.Require().NoError(err)

	reject := dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestRejected}
	reviewed, err := suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID, reject, bookAdminID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeleteRequestRejected, reviewed.Status)
	suite.assertAggregates("-12", "0", "12")

	approve := dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved}
	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID, approve, adminID)
	suite.ErrorIs(err, apperrors.ErrAlreadyReviewed)
	suite.assertAggregates("-12", "0", "12")

	// Once settled, a fresh request may be opened.
	again, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "second try", operatorID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeletionRequested, again.Outcome)

	pending := domain.DeleteRequestPending
	reqs, err := suite.svc.DeleteRequest.ListDeleteRequests(suite.ctx, testCashbookID, adminID, &pending)
	suite.Require().NoError(err)
	suite.Len(reqs, 1)
	all, err := suite.svc.DeleteRequest.ListDeleteRequests(suite.ctx, testCashbookID, adminID, nil)
	suite.Require().NoError(err)
	suite.Len(all, 2)
	suite.Contains(suite.auditActions(), domain.AuditDeleteRejected)
}

func (suite *LedgerServiceTestSuite) TestReview_RequiresApprovePermission() {
	entry := suite.createEntry(domain.Income, "10")
	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "wrong book", operatorID)
	suite.Require().NoError(err)

	suite.store.SeedMember(testCashbookID, "user-operator-2", domain.RoleDataOperator)
	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID,
		dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved}, "user-operator-2")
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Equal(apperrors.CodeAuthorization, apperrors.CodeFor(err))
}

func (suite *LedgerServiceTestSuite) TestReview_SettledRequestHiddenFromUnauthorizedReviewer() {
	entry := suite.createEntry(domain.Income, "10")
	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "wrong book", operatorID)
	suite.Require().NoError(err)
	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID,
		dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestRejected}, adminID)
	suite.Require().NoError(err)

	_, err = suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID,
		dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved}, viewerID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.NotErrorIs(err, apperrors.ErrAlreadyReviewed)
	suite.Equal(apperrors.CodeAuthorization, apperrors.CodeFor(err))
}

func (suite *LedgerServiceTestSuite) TestReview_ApprovalAfterDirectDeleteSettlesRequest() {
	entry := suite.createEntry(domain.Income, "10")
	result, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "wrong book", operatorID)
	suite.Require().NoError(err)
	_, err = suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "cleanup", adminID)
	suite.Require().NoError(err)
	suite.assertAggregates("0", "0", "0")

	reviewed, err := suite.svc.DeleteRequest.ReviewDeleteRequest(suite.ctx, testCashbookID, result.Request.RequestID,
		dto.ReviewDeleteRequestRequest{Status: domain.DeleteRequestApproved}, bookAdminID)
	suite.Require().NoError(err)
	suite.Equal(domain.DeleteRequestApproved, reviewed.Status)
	suite.assertAggregates("0", "0", "0")
}

func (suite *LedgerServiceTestSuite) TestRequestDeletion_Permissions() {
	entry := suite.createEntry(domain.Income, "10")

	_, err := suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "nope", viewerID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, entry.EntryID, "  ", adminID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.DeleteRequest.RequestDeletion(suite.ctx, testCashbookID, "missing", "gone", operatorID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.assertAggregates("10", "10", "0")
}

// --- reconciliation ---

func (suite *LedgerServiceTestSuite) TestRecalculateBalance_CorrectsDriftAndIsIdempotent() {
	suite.createEntry(domain.Income, "100")
	suite.createEntry(domain.Expense, "40")

	cb, err := suite.store.FindCashbookByID(suite.ctx, testCashbookID)
	suite.Require().NoError(err)
	cb.Aggregates = domain.NewAggregates(amount("999"), amount("1"))
	suite.store.SeedCashbook(*cb)

	first, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.Require().NoError(err)
	suite.True(first.Drift.Equal(amount("-938")))
	suite.assertAggregates("60", "100", "40")

	second, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.Require().NoError(err)
	suite.True(second.Current.Equal(first.Current))
	suite.True(second.Drift.IsZero())

	logs, err := suite.store.ListFinancialAuditLogs(suite.ctx, testCashbookID, 2)
	suite.Require().NoError(err)
	suite.Equal(domain.FinBalanceRecalculated, logs[0].Action)
	suite.Equal(domain.FinBalanceRecalculated, logs[1].Action)
}

func (suite *LedgerServiceTestSuite) TestRecalculateBalance_BreakerFailsFast() {
	calls := 0
	injected := errors.New("statement timeout")
	suite.store.SetFaultHook(func(op string) error {
		if op == memory.OpSumEntriesByType {
			calls++
			return injected
		}
		return nil
	})

	_, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.ErrorIs(err, injected)
	suite.Equal(breaker.Open, suite.dbBreaker.State())

	_, err = suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.ErrorIs(err, breaker.ErrOpen)
	suite.ErrorIs(err, apperrors.ErrServiceUnavailable)
	suite.Equal(1, calls)
}

func (suite *LedgerServiceTestSuite) TestRecalculateBalance_BookAdminIsDenied() {
	_, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, bookAdminID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Contains(suite.auditActions(), domain.AuditPermissionDenied)
}

func (suite *LedgerServiceTestSuite) TestToggleReconciliation() {
	entry := suite.createEntry(domain.Income, "10")

	toggled, err := suite.svc.Reconciliation.ToggleReconciliation(suite.ctx, testCashbookID, entry.EntryID, bookAdminID)
	suite.Require().NoError(err)
	suite.True(toggled.IsReconciled)
	suite.Equal(1, toggled.Version)

	toggled, err = suite.svc.Reconciliation.ToggleReconciliation(suite.ctx, testCashbookID, entry.EntryID, bookAdminID)
	suite.Require().NoError(err)
	suite.False(toggled.IsReconciled)
	suite.assertAggregates("10", "10", "0")

	actions := suite.auditActions()
	suite.Contains(actions, domain.AuditEntryReconciled)
	suite.Contains(actions, domain.AuditEntryUnreconciled)

	_, err = suite.svc.Reconciliation.ToggleReconciliation(suite.ctx, testCashbookID, entry.EntryID, operatorID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestGetFinancialSummary() {
	suite.createEntry(domain.Income, "12.34")

	cb, err := suite.svc.Reconciliation.GetFinancialSummary(suite.ctx, testCashbookID, viewerID)
	suite.Require().NoError(err)
	suite.Equal("Main", cb.Name)
	suite.True(cb.Balance.Equal(amount("12.34")))
}

// --- reads and reports ---

func (suite *LedgerServiceTestSuite) TestListEntries_PagesAndValidatesRange() {
	for i := 0; i < 5; i++ {
		suite.createEntry(domain.Income, "1")
		suite.now = suite.now.Add(time.Minute)
	}

	first, err := suite.svc.Entry.ListEntries(suite.ctx, testCashbookID, viewerID, dto.ListEntriesParams{Limit: 3})
	suite.Require().NoError(err)
	suite.Len(first.Entries, 3)
	suite.Require().NotNil(first.NextToken)

	second, err := suite.svc.Entry.ListEntries(suite.ctx, testCashbookID, viewerID, dto.ListEntriesParams{Limit: 3, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Len(second.Entries, 2)
	suite.Nil(second.NextToken)

	from := suite.now
	to := suite.now.AddDate(0, 0, -1)
	_, err = suite.svc.Entry.ListEntries(suite.ctx, testCashbookID, viewerID, dto.ListEntriesParams{From: &from, To: &to})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestGetEntryAuditTrail_RequiresPermission() {
	entry := suite.createEntry(domain.Income, "1")
	_, err := suite.svc.Entry.GetEntryAuditTrail(suite.ctx, testCashbookID, entry.EntryID, operatorID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestGetFinancialAuditLogs() {
	suite.createEntry(domain.Income, "100")
	suite.createEntry(domain.Expense, "30")
	_, err := suite.svc.Reconciliation.RecalculateBalance(suite.ctx, testCashbookID, adminID)
	suite.Require().NoError(err)

	all, err := suite.svc.Reconciliation.GetFinancialAuditLogs(suite.ctx, testCashbookID, bookAdminID, dto.FinancialAuditLogParams{})
	suite.Require().NoError(err)
	suite.Equal(testCashbookID, all.CashbookID)
	suite.Require().Len(all.Logs, 3)
	suite.Equal(domain.FinBalanceRecalculated, all.Logs[0].Action)
	suite.Equal(domain.FinEntryCreated, all.Logs[2].Action)
	suite.True(all.Logs[1].BalanceAfter.Equal(amount("70")))

	limited, err := suite.svc.Reconciliation.GetFinancialAuditLogs(suite.ctx, testCashbookID, adminID, dto.FinancialAuditLogParams{Limit: 1})
	suite.Require().NoError(err)
	suite.Len(limited.Logs, 1)

	_, err = suite.svc.Reconciliation.GetFinancialAuditLogs(suite.ctx, testCashbookID, viewerID, dto.FinancialAuditLogParams{})
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestGetFinancialAuditLogs_EmptyIsNotNil() {
	logs, err := suite.svc.Reconciliation.GetFinancialAuditLogs(suite.ctx, testCashbookID, adminID, dto.FinancialAuditLogParams{})
	suite.Require().NoError(err)
	suite.NotNil(logs.Logs)
	suite.Empty(logs.Logs)
}

func (suite *LedgerServiceTestSuite) TestGetPeriodSummary() {
	suite.createEntry(domain.Income, "100")
	suite.createEntry(domain.Expense, "25")

	expense := domain.Expense
	summary, err := suite.svc.Report.GetPeriodSummary(suite.ctx, testCashbookID, viewerID, dto.PeriodSummaryParams{})
	suite.Require().NoError(err)
	suite.Equal(2, summary.EntryCount)
	suite.True(summary.Net.Equal(amount("75")))

	onlyExpense, err := suite.svc.Report.GetPeriodSummary(suite.ctx, testCashbookID, viewerID, dto.PeriodSummaryParams{Type: &expense})
	suite.Require().NoError(err)
	suite.Equal(1, onlyExpense.EntryCount)
	suite.True(onlyExpense.TotalIncome.IsZero())

	suite.Contains(suite.auditActions(), domain.AuditReportGenerated)
}

func (suite *LedgerServiceTestSuite) TestAccessToUnknownOrInactiveCashbook() {
	_, err := suite.svc.Entry.ListEntries(suite.ctx, "cb-missing", adminID, dto.ListEntriesParams{})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.store.SeedCashbook(domain.Cashbook{CashbookID: "cb-closed", WorkspaceID: "ws-1", Currency: "USD", IsActive: false})
	suite.store.SeedMember("cb-closed", adminID, domain.RoleAdmin)
	_, err = suite.svc.Entry.CreateEntry(suite.ctx, "cb-closed", dto.CreateEntryRequest{
		Type: domain.Income, Amount: amount("1"), EntryDate: suite.now,
	}, adminID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.svc.Entry.ListEntries(suite.ctx, testCashbookID, "stranger", dto.ListEntriesParams{})
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) auditActions() []domain.AuditAction {
	logs := suite.store.AuditLogs()
	actions := make([]domain.AuditAction, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}
