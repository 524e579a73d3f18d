package pgsql

import (
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CashbookRepo:      newPgxCashbookRepository(dbPool),
		EntryRepo:         newPgxEntryRepository(dbPool),
		AuditRepo:         newPgxAuditRepository(dbPool),
		DeleteRequestRepo: newPgxDeleteRequestRepository(dbPool),
		MembershipRepo:    newPgxMembershipRepository(dbPool),
		TxManager:         newPgxTransactionManager(dbPool),
	}
}
