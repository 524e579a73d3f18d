package utils

import (
	"fmt"
	"strings"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// minorUnits lists ISO-4217 currencies whose minor unit differs from the usual two digits.
var minorUnits = map[string]int{
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
}

// CurrencyPrecision returns the number of decimal places a currency allows.
func CurrencyPrecision(currencyCode string) int {
	if p, ok := minorUnits[strings.ToUpper(currencyCode)]; ok {
		return p
	}
	return 2
}

// FormatWithCurrencyPrecision formats an amount with the correct precision for a given currency
// Example: amount 12.3456 with USD (precision 2) returns "12.35"
// Example: amount 12.3456 with JPY (precision 0) returns "12"
func FormatWithCurrencyPrecision(amount decimal.Decimal, currencyCode string) string {
	return FormatWithPrecision(amount, CurrencyPrecision(currencyCode))
}

// FormatWithPrecision formats an amount with the given precision
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// ValidateAmountScale rejects amounts with more decimal places than the currency allows.
func ValidateAmountScale(amount decimal.Decimal, currencyCode string) error {
	precision := CurrencyPrecision(currencyCode)
	if !amount.Equal(amount.Truncate(int32(precision))) {
		return apperrors.NewValidationError(fmt.Sprintf("amount %s has more than %d decimal places allowed for %s", amount.String(), precision, currencyCode))
	}
	return nil
}
