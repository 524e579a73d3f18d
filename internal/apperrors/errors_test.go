package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapsSentinelAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewAppError(http.StatusInternalServerError, "failed to insert entry", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeFor(err))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDomainErrorsKeepTheirCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NewNotFoundError("Entry"), http.StatusNotFound, CodeNotFound},
		{"validation", NewValidationError("amount must be positive"), http.StatusBadRequest, CodeValidation},
		{"conflict", NewConflictError("a delete request is already pending"), http.StatusConflict, CodeConflict},
		{"forbidden", NewForbiddenError("missing permission"), http.StatusForbidden, CodeAuthorization},
		{"wrapped sentinel", fmt.Errorf("review: %w", ErrSelfReview), http.StatusBadRequest, CodeSelfReview},
		{"backdate", ErrBackdateNotAllowed, http.StatusBadRequest, CodeBackdateNotAllowed},
		{"already reviewed", ErrAlreadyReviewed, http.StatusBadRequest, CodeAlreadyReviewed},
		{"version", fmt.Errorf("update: %w", ErrVersionMismatch), http.StatusConflict, CodeVersionConflict},
		{"plain", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
			assert.Equal(t, tt.code, CodeFor(tt.err))
		})
	}
}

func TestNotFoundWrappedByCaller(t *testing.T) {
	err := fmt.Errorf("load cashbook: %w", NewNotFoundError("Cashbook"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Cashbook not found", MessageFor(err))
}
