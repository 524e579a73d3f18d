package utils

import (
	"testing"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithCurrencyPrecision(t *testing.T) {
	amount := decimal.RequireFromString("12.3456")

	assert.Equal(t, "12.35", FormatWithCurrencyPrecision(amount, "USD"))
	assert.Equal(t, "12", FormatWithCurrencyPrecision(amount, "JPY"))
	assert.Equal(t, "12.346", FormatWithCurrencyPrecision(amount, "kwd"))
	assert.Equal(t, "100.00", FormatWithCurrencyPrecision(decimal.NewFromInt(100), "INR"))
}

func TestValidateAmountScale(t *testing.T) {
	assert.NoError(t, ValidateAmountScale(decimal.RequireFromString("10.50"), "USD"))
	assert.NoError(t, ValidateAmountScale(decimal.RequireFromString("10"), "JPY"))
	assert.ErrorIs(t, ValidateAmountScale(decimal.RequireFromString("10.5"), "JPY"), apperrors.ErrValidation)
	assert.ErrorIs(t, ValidateAmountScale(decimal.RequireFromString("0.001"), "EUR"), apperrors.ErrValidation)
}
