package services

import (
	"context"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// CashbookAuthorizerSvc resolves a caller's role in a cashbook and checks permissions against it.
type CashbookAuthorizerSvc interface {
	// ResolveAccess loads an active cashbook and the caller's role in it.
	ResolveAccess(ctx context.Context, userID, cashbookID string) (*domain.Cashbook, domain.CashbookRole, error)

	// Authorize is ResolveAccess followed by a permission check. Denials are audited.
	Authorize(ctx context.Context, userID, cashbookID string, perm domain.Permission) (*domain.Cashbook, domain.CashbookRole, error)
}
