package repositories

import (
	"context"
)

// TransactionManager scopes a unit of work. fn runs against a LedgerTx; the
// transaction commits when fn returns nil and rolls back on error or panic.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is every write or row lock a ledger mutation may need.
// All calls are routed through the enclosing transaction.
type LedgerTx interface {
	CashbookTxWriter
	EntryTxWriter
	AuditTxWriter
	DeleteRequestTxWriter
}
