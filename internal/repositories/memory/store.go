// Package memory is an in-process ledger store with the same transactional
// contract as the Postgres repositories. Writers are serialized; a transaction
// works on the live maps and restores a snapshot when it fails.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/utils/accounting"
	"github.com/SscSPs/cashbook_backend/internal/utils/pagination"
)

// Operation names passed to a FaultHook.
const (
	OpLockCashbook            = "LockCashbook"
	OpApplyBalanceDelta       = "ApplyBalanceDelta"
	OpSetAggregates           = "SetAggregates"
	OpSumEntriesByType        = "SumEntriesByType"
	OpLockEntry               = "LockEntry"
	OpInsertEntry             = "InsertEntry"
	OpUpdateEntry             = "UpdateEntry"
	OpSoftDeleteEntry         = "SoftDeleteEntry"
	OpSetEntryReconciled      = "SetEntryReconciled"
	OpInsertEntryAudit        = "InsertEntryAudit"
	OpInsertFinancialAuditLog = "InsertFinancialAuditLog"
	OpInsertAuditLog          = "InsertAuditLog"
	OpInsertDeleteRequest     = "InsertDeleteRequest"
	OpSaveDeleteRequestReview = "SaveDeleteRequestReview"
)

// FaultHook lets tests fail a named operation inside a transaction.
type FaultHook func(op string) error

type memberKey struct {
	cashbookID string
	userID     string
}

type txCtxKey struct{}

// Store implements every repository port plus the TransactionManager.
type Store struct {
	mu sync.RWMutex

	cashbooks      map[string]domain.Cashbook
	entries        map[string]domain.Entry
	entryAudits    []domain.EntryAudit
	financialLogs  []domain.FinancialAuditLog
	auditLogs      []domain.AuditLog
	deleteRequests map[string]domain.DeleteRequest
	members        map[memberKey]domain.CashbookRole

	fault FaultHook
}

func NewStore() *Store {
	return &Store{
		cashbooks:      make(map[string]domain.Cashbook),
		entries:        make(map[string]domain.Entry),
		deleteRequests: make(map[string]domain.DeleteRequest),
		members:        make(map[memberKey]domain.CashbookRole),
	}
}

var (
	_ portsrepo.CashbookRepositoryFacade      = (*Store)(nil)
	_ portsrepo.EntryRepositoryFacade         = (*Store)(nil)
	_ portsrepo.AuditRepositoryFacade         = (*Store)(nil)
	_ portsrepo.DeleteRequestRepositoryFacade = (*Store)(nil)
	_ portsrepo.MembershipRepositoryFacade    = (*Store)(nil)
	_ portsrepo.TransactionManager            = (*Store)(nil)
	_ portsrepo.LedgerTx                      = (*txView)(nil)
)

// Provider exposes the store through the same provider struct the Postgres repositories use.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CashbookRepo:      s,
		EntryRepo:         s,
		AuditRepo:         s,
		DeleteRequestRepo: s,
		MembershipRepo:    s,
		TxManager:         s,
	}
}

// SetFaultHook installs hook for subsequent transactions. Pass nil to clear it.
func (s *Store) SetFaultHook(hook FaultHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = hook
}

// SeedCashbook inserts or replaces a cashbook.
func (s *Store) SeedCashbook(c domain.Cashbook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashbooks[c.CashbookID] = c
}

// SeedMember grants userID role in a cashbook.
func (s *Store) SeedMember(cashbookID, userID string, role domain.CashbookRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{cashbookID, userID}] = role
}

// RunInTx serializes fn against every other transaction and read.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) (err error) {
	if s.inTx(ctx) {
		return apperrors.NewAppError(http.StatusInternalServerError, "nested transactions are not supported", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	txCtx := context.WithValue(ctx, txCtxKey{}, s)
	return fn(txCtx, &txView{s: s})
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txCtxKey{}).(*Store)
	return owner == s
}

// rlock takes the read lock unless ctx already runs inside this store's transaction.
func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

type snapshot struct {
	cashbooks      map[string]domain.Cashbook
	entries        map[string]domain.Entry
	entryAudits    []domain.EntryAudit
	financialLogs  []domain.FinancialAuditLog
	auditLogs      []domain.AuditLog
	deleteRequests map[string]domain.DeleteRequest
}

// Stored values are replaced, never mutated in place, so copying the containers is enough.
func (s *Store) snapshot() snapshot {
	return snapshot{
		cashbooks:      copyMap(s.cashbooks),
		entries:        copyMap(s.entries),
		entryAudits:    append([]domain.EntryAudit(nil), s.entryAudits...),
		financialLogs:  append([]domain.FinancialAuditLog(nil), s.financialLogs...),
		auditLogs:      append([]domain.AuditLog(nil), s.auditLogs...),
		deleteRequests: copyMap(s.deleteRequests),
	}
}

func (s *Store) restore(snap snapshot) {
	s.cashbooks = snap.cashbooks
	s.entries = snap.entries
	s.entryAudits = snap.entryAudits
	s.financialLogs = snap.financialLogs
	s.auditLogs = snap.auditLogs
	s.deleteRequests = snap.deleteRequests
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- Readers ---

func (s *Store) FindCashbookByID(ctx context.Context, cashbookID string) (*domain.Cashbook, error) {
	defer s.rlock(ctx)()
	c, ok := s.cashbooks[cashbookID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Cashbook")
	}
	return &c, nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	defer s.rlock(ctx)()
	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	return &e, nil
}

func (s *Store) ListEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	defer s.rlock(ctx)()

	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		cursor = &c
	}

	matched := s.matchingEntries(cashbookID, filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		return pagination.Cursor{EntryDate: a.EntryDate, CreatedAt: a.CreatedAt, EntryID: a.EntryID}.
			Before(b.EntryDate, b.CreatedAt, b.EntryID)
	})

	page := make([]domain.Entry, 0, limit+1)
	for _, e := range matched {
		if cursor != nil && !cursor.Before(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		page = append(page, e)
		if len(page) > limit {
			break
		}
	}

	var next *string
	if len(page) > limit {
		page = page[:limit]
		last := page[limit-1]
		token := pagination.EncodeCursor(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
		next = &token
	}
	return page, next, nil
}

func (s *Store) SummarizeEntries(ctx context.Context, cashbookID string, filter domain.EntryFilter) (domain.PeriodSummary, error) {
	defer s.rlock(ctx)()

	matched := s.matchingEntries(cashbookID, filter)
	agg := accounting.RecomputeAggregates(matched)
	summary := domain.PeriodSummary{
		CashbookID:   cashbookID,
		From:         filter.From,
		To:           filter.To,
		TotalIncome:  agg.TotalIncome,
		TotalExpense: agg.TotalExpense,
		Net:          agg.Balance,
		EntryCount:   len(matched),
	}
	if c, ok := s.cashbooks[cashbookID]; ok {
		summary.Currency = c.Currency
	}
	return summary, nil
}

func (s *Store) matchingEntries(cashbookID string, f domain.EntryFilter) []domain.Entry {
	var out []domain.Entry
	for _, e := range s.entries {
		if e.CashbookID != cashbookID || e.IsDeleted() {
			continue
		}
		if f.Type != nil && e.Type != *f.Type {
			continue
		}
		if f.CategoryID != nil && !equalPtr(e.CategoryID, f.CategoryID) {
			continue
		}
		if f.ContactID != nil && !equalPtr(e.ContactID, f.ContactID) {
			continue
		}
		if f.PaymentModeID != nil && !equalPtr(e.PaymentModeID, f.PaymentModeID) {
			continue
		}
		if f.From != nil && e.EntryDate.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.EntryDate.Before(f.To.AddDate(0, 0, 1)) {
			continue
		}
		if f.IsReconciled != nil && e.IsReconciled != *f.IsReconciled {
			continue
		}
		out = append(out, e)
	}
	return out
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *Store) ListEntryAudits(ctx context.Context, entryID string) ([]domain.EntryAudit, error) {
	defer s.rlock(ctx)()
	var out []domain.EntryAudit
	for _, a := range s.entryAudits {
		if a.EntryID == entryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) ListFinancialAuditLogs(ctx context.Context, cashbookID string, limit int) ([]domain.FinancialAuditLog, error) {
	defer s.rlock(ctx)()
	var out []domain.FinancialAuditLog
	for i := len(s.financialLogs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.financialLogs[i].CashbookID == cashbookID {
			out = append(out, s.financialLogs[i])
		}
	}
	return out, nil
}

// AuditLogs returns every general audit row; used by tests.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditLog(nil), s.auditLogs...)
}

func (s *Store) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	if s.inTx(ctx) {
		s.auditLogs = append(s.auditLogs, log)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs = append(s.auditLogs, log)
	return nil
}

func (s *Store) FindDeleteRequestByID(ctx context.Context, requestID string) (*domain.DeleteRequest, error) {
	defer s.rlock(ctx)()
	r, ok := s.deleteRequests[requestID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Delete request")
	}
	return &r, nil
}

func (s *Store) ListDeleteRequests(ctx context.Context, cashbookID string, status *domain.DeleteRequestStatus) ([]domain.DeleteRequest, error) {
	defer s.rlock(ctx)()
	var out []domain.DeleteRequest
	for _, r := range s.deleteRequests {
		if r.CashbookID != cashbookID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) FindMemberRole(ctx context.Context, cashbookID, userID string) (domain.CashbookRole, error) {
	defer s.rlock(ctx)()
	role, ok := s.members[memberKey{cashbookID, userID}]
	if !ok {
		return "", apperrors.NewNotFoundError("Cashbook member")
	}
	return role, nil
}

// --- Transactional view ---

type txView struct {
	s *Store
}

func (tv *txView) check(op string) error {
	if tv.s.fault == nil {
		return nil
	}
	if err := tv.s.fault(op); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (tv *txView) LockCashbook(_ context.Context, cashbookID string) (*domain.Cashbook, error) {
	if err := tv.check(OpLockCashbook); err != nil {
		return nil, err
	}
	c, ok := tv.s.cashbooks[cashbookID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Cashbook")
	}
	return &c, nil
}

func (tv *txView) ApplyBalanceDelta(_ context.Context, cashbookID string, delta domain.BalanceDelta, userID string, now time.Time) (domain.Aggregates, error) {
	if err := tv.check(OpApplyBalanceDelta); err != nil {
		return domain.Aggregates{}, err
	}
	c, ok := tv.s.cashbooks[cashbookID]
	if !ok {
		return domain.Aggregates{}, apperrors.NewNotFoundError("Cashbook")
	}
	c.Aggregates = c.Aggregates.Apply(delta)
	c.LastUpdatedAt = now
	c.LastUpdatedBy = userID
	tv.s.cashbooks[cashbookID] = c
	return c.Aggregates, nil
}

func (tv *txView) SetAggregates(_ context.Context, cashbookID string, agg domain.Aggregates, userID string, now time.Time) error {
	if err := tv.check(OpSetAggregates); err != nil {
		return err
	}
	c, ok := tv.s.cashbooks[cashbookID]
	if !ok {
		return apperrors.NewNotFoundError("Cashbook")
	}
	c.Aggregates = agg
	c.LastUpdatedAt = now
	c.LastUpdatedBy = userID
	tv.s.cashbooks[cashbookID] = c
	return nil
}

func (tv *txView) SumEntriesByType(_ context.Context, cashbookID string) (domain.Aggregates, error) {
	if err := tv.check(OpSumEntriesByType); err != nil {
		return domain.Aggregates{}, err
	}
	var live []domain.Entry
	for _, e := range tv.s.entries {
		if e.CashbookID == cashbookID {
			live = append(live, e)
		}
	}
	return accounting.RecomputeAggregates(live), nil
}

func (tv *txView) LockEntry(_ context.Context, entryID string) (*domain.Entry, error) {
	if err := tv.check(OpLockEntry); err != nil {
		return nil, err
	}
	e, ok := tv.s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	return &e, nil
}

func (tv *txView) InsertEntry(_ context.Context, entry domain.Entry) error {
	if err := tv.check(OpInsertEntry); err != nil {
		return err
	}
	if _, exists := tv.s.entries[entry.EntryID]; exists {
		return apperrors.NewConflictError("entry already exists")
	}
	tv.s.entries[entry.EntryID] = entry
	return nil
}

func (tv *txView) UpdateEntry(_ context.Context, entry domain.Entry) error {
	if err := tv.check(OpUpdateEntry); err != nil {
		return err
	}
	if _, ok := tv.s.entries[entry.EntryID]; !ok {
		return apperrors.NewNotFoundError("Entry")
	}
	tv.s.entries[entry.EntryID] = entry
	return nil
}

func (tv *txView) SoftDeleteEntry(_ context.Context, entryID string, deletion domain.EntryDeletion) error {
	if err := tv.check(OpSoftDeleteEntry); err != nil {
		return err
	}
	e, ok := tv.s.entries[entryID]
	if !ok || e.IsDeleted() {
		return apperrors.NewNotFoundError("Entry")
	}
	e.Deletion = &deletion
	e.LastUpdatedAt = deletion.DeletedAt
	e.LastUpdatedBy = deletion.DeletedBy
	tv.s.entries[entryID] = e
	return nil
}

func (tv *txView) SetEntryReconciled(_ context.Context, entryID string, reconciled bool, userID string, now time.Time) error {
	if err := tv.check(OpSetEntryReconciled); err != nil {
		return err
	}
	e, ok := tv.s.entries[entryID]
	if !ok {
		return apperrors.NewNotFoundError("Entry")
	}
	e.IsReconciled = reconciled
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	tv.s.entries[entryID] = e
	return nil
}

func (tv *txView) InsertEntryAudit(_ context.Context, audit domain.EntryAudit) error {
	if err := tv.check(OpInsertEntryAudit); err != nil {
		return err
	}
	tv.s.entryAudits = append(tv.s.entryAudits, audit)
	return nil
}

func (tv *txView) InsertFinancialAuditLog(_ context.Context, log domain.FinancialAuditLog) error {
	if err := tv.check(OpInsertFinancialAuditLog); err != nil {
		return err
	}
	tv.s.financialLogs = append(tv.s.financialLogs, log)
	return nil
}

func (tv *txView) InsertAuditLog(_ context.Context, log domain.AuditLog) error {
	if err := tv.check(OpInsertAuditLog); err != nil {
		return err
	}
	tv.s.auditLogs = append(tv.s.auditLogs, log)
	return nil
}

func (tv *txView) FindPendingDeleteRequest(_ context.Context, entryID string) (*domain.DeleteRequest, error) {
	for _, r := range tv.s.deleteRequests {
		if r.EntryID == entryID && r.Status == domain.DeleteRequestPending {
			return &r, nil
		}
	}
	return nil, apperrors.NewNotFoundError("Pending delete request")
}

func (tv *txView) InsertDeleteRequest(ctx context.Context, req domain.DeleteRequest) error {
	if err := tv.check(OpInsertDeleteRequest); err != nil {
		return err
	}
	if _, err := tv.FindPendingDeleteRequest(ctx, req.EntryID); err == nil {
		return apperrors.NewConflictError("a delete request is already pending for this entry")
	}
	tv.s.deleteRequests[req.RequestID] = req
	return nil
}

func (tv *txView) LockDeleteRequest(_ context.Context, requestID string) (*domain.DeleteRequest, error) {
	r, ok := tv.s.deleteRequests[requestID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Delete request")
	}
	return &r, nil
}

func (tv *txView) SaveDeleteRequestReview(_ context.Context, req domain.DeleteRequest) error {
	if err := tv.check(OpSaveDeleteRequestReview); err != nil {
		return err
	}
	if _, ok := tv.s.deleteRequests[req.RequestID]; !ok {
		return apperrors.NewNotFoundError("Delete request")
	}
	tv.s.deleteRequests[req.RequestID] = req
	return nil
}
