package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
)

// CashbookReader defines read operations for cashbook data
type CashbookReader interface {
	// FindCashbookByID returns the cashbook, including soft-deleted ones. Callers check IsActive.
	FindCashbookByID(ctx context.Context, cashbookID string) (*domain.Cashbook, error)
}

// CashbookTxWriter holds the aggregate primitives available inside a transaction.
type CashbookTxWriter interface {
	// LockCashbook reads the cashbook row and holds a write lock on it until the transaction ends.
	LockCashbook(ctx context.Context, cashbookID string) (*domain.Cashbook, error)

	// ApplyBalanceDelta increments the aggregates in place and returns the values after the update.
	// Implementations must not read-modify-write.
	ApplyBalanceDelta(ctx context.Context, cashbookID string, delta domain.BalanceDelta, userID string, now time.Time) (domain.Aggregates, error)

	// SetAggregates overwrites the aggregates. Only recalculation uses it.
	SetAggregates(ctx context.Context, cashbookID string, agg domain.Aggregates, userID string, now time.Time) error

	// SumEntriesByType recomputes totals from live entries.
	SumEntriesByType(ctx context.Context, cashbookID string) (domain.Aggregates, error)
}

// CashbookRepositoryFacade combines the cashbook read side.
type CashbookRepositoryFacade interface {
	CashbookReader
}
