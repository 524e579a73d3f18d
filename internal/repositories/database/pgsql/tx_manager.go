package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionManager runs ledger units of work in a single Postgres transaction.
type PgxTransactionManager struct {
	BaseRepository
}

func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// pgxLedgerTx routes every LedgerTx call through the same pgx.Tx.
type pgxLedgerTx struct {
	*PgxCashbookRepository
	*PgxEntryRepository
	*PgxAuditRepository
	*PgxDeleteRequestRepository
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func newPgxLedgerTx(tx pgx.Tx) *pgxLedgerTx {
	return &pgxLedgerTx{
		PgxCashbookRepository:      &PgxCashbookRepository{db: tx},
		PgxEntryRepository:         &PgxEntryRepository{db: tx},
		PgxAuditRepository:         &PgxAuditRepository{db: tx},
		PgxDeleteRequestRepository: &PgxDeleteRequestRepository{db: tx},
	}
}

// RunInTx commits when fn returns nil. Errors and panics roll back; a panic is re-raised after the rollback.
func (m *PgxTransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) (err error) {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = m.Rollback(context.WithoutCancel(ctx), tx)
			panic(p)
		}
		if err != nil {
			if rbErr := m.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(ctx, newPgxLedgerTx(tx)); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}
