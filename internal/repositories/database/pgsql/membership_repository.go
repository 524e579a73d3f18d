package pgsql

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMembershipRepository struct {
	db querier
}

func newPgxMembershipRepository(pool *pgxpool.Pool) *PgxMembershipRepository {
	return &PgxMembershipRepository{db: pool}
}

var _ portsrepo.MembershipRepositoryFacade = (*PgxMembershipRepository)(nil)

// FindMemberRole looks up the caller's role. Removed members are ignored.
func (r *PgxMembershipRepository) FindMemberRole(ctx context.Context, cashbookID, userID string) (domain.CashbookRole, error) {
	query := `
		SELECT role
		FROM cashbook_members
		WHERE cashbook_id = $1 AND user_id = $2 AND removed_at IS NULL;
	`
	var role string
	if err := r.db.QueryRow(ctx, query, cashbookID, userID).Scan(&role); err != nil {
		return "", notFoundOr(err, "Cashbook member", "find cashbook member")
	}
	return domain.CashbookRole(role), nil
}
