package accounting

import (
	"fmt"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError(fmt.Sprintf("amount must be positive, got %s", amount.String()))
	}
	return nil
}

// DeltaForEntry returns the effect an entry of entryType and amount has on a cashbook.
// INCOME raises totalIncome and balance; EXPENSE raises totalExpense and lowers balance.
func DeltaForEntry(entryType domain.EntryType, amount decimal.Decimal) (domain.BalanceDelta, error) {
	switch entryType {
	case domain.Income:
		return domain.BalanceDelta{Income: amount, Expense: decimal.Zero}, nil
	case domain.Expense:
		return domain.BalanceDelta{Income: decimal.Zero, Expense: amount}, nil
	default:
		return domain.BalanceDelta{}, fmt.Errorf("%w: unknown entry type '%s'", apperrors.ErrValidation, entryType)
	}
}

// ReversalOf is the delta that removes entry's current effect.
func ReversalOf(entry domain.Entry) (domain.BalanceDelta, error) {
	delta, err := DeltaForEntry(entry.Type, entry.Amount)
	if err != nil {
		return domain.BalanceDelta{}, err
	}
	return delta.Neg(), nil
}

// UpdateDelta reverses old then applies updated. Type may change between the two,
// so the reversal and the application are computed separately.
func UpdateDelta(old, updated domain.Entry) (domain.BalanceDelta, error) {
	reversal, err := ReversalOf(old)
	if err != nil {
		return domain.BalanceDelta{}, err
	}
	apply, err := DeltaForEntry(updated.Type, updated.Amount)
	if err != nil {
		return domain.BalanceDelta{}, err
	}
	return reversal.Add(apply), nil
}

// RecomputeAggregates derives aggregates from scratch. Deleted entries contribute nothing.
func RecomputeAggregates(entries []domain.Entry) domain.Aggregates {
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.IsDeleted() {
			continue
		}
		switch e.Type {
		case domain.Income:
			income = income.Add(e.Amount)
		case domain.Expense:
			expense = expense.Add(e.Amount)
		}
	}
	return domain.NewAggregates(income, expense)
}
