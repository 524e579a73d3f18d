package repositories

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// MembershipReader resolves a user's role in a cashbook.
type MembershipReader interface {
	// FindMemberRole returns ErrNotFound when the user is not a member of the cashbook.
	FindMemberRole(ctx context.Context, cashbookID, userID string) (domain.CashbookRole, error)
}

type MembershipRepositoryFacade interface {
	MembershipReader
}
