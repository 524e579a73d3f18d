package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request collides with the current state of a resource.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized indicates the caller could not be identified.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller lacks the permission required for the action.
var ErrForbidden = errors.New("forbidden")

// ErrBackdateNotAllowed indicates an entry date earlier than today on a cashbook that disallows backdating.
var ErrBackdateNotAllowed = errors.New("backdated entries are not allowed for this cashbook")

// ErrSelfReview indicates a requester tried to review their own delete request.
var ErrSelfReview = errors.New("cannot review your own delete request")

// ErrAlreadyReviewed indicates a delete request is no longer pending.
var ErrAlreadyReviewed = errors.New("delete request has already been reviewed")

// ErrInvalidOperation indicates a well-formed request that is semantically forbidden.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrVersionMismatch indicates the caller's expected entry version is stale.
var ErrVersionMismatch = errors.New("entry was modified by another request")

// ErrServiceUnavailable indicates a protected dependency is temporarily refused.
var ErrServiceUnavailable = errors.New("service temporarily unavailable")

// ErrInternal is the catch-all for unexpected failures.
var ErrInternal = errors.New("internal error")

// Machine readable codes rendered to API clients.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAuthorization      = "AUTHORIZATION_ERROR"
	CodeBackdateNotAllowed = "BACKDATE_NOT_ALLOWED"
	CodeSelfReview         = "SELF_REVIEW"
	CodeAlreadyReviewed    = "ALREADY_REVIEWED"
	CodeInvalidOperation   = "INVALID_OPERATION"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError carries an HTTP status and a machine readable code alongside the
// underlying error. It unwraps to both the classifying sentinel and the cause.
type AppError struct {
	Status   int
	Code     string
	Message  string
	sentinel error
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the sentinel and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.sentinel != nil {
		errs = append(errs, e.sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewAppError wraps err with an HTTP status. The sentinel is derived from the status.
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:   status,
		Code:     codeForStatus(status),
		Message:  message,
		sentinel: sentinelForStatus(status),
		Err:      err,
	}
}

// NewDomainError builds an error for a named domain rule violation.
func NewDomainError(status int, code, message string, sentinel error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, sentinel: sentinel}
}

// NewNotFoundError reports that the named resource does not exist.
func NewNotFoundError(resource string) *AppError {
	return NewDomainError(http.StatusNotFound, CodeNotFound, resource+" not found", ErrNotFound)
}

func NewValidationError(message string) *AppError {
	return NewDomainError(http.StatusBadRequest, CodeValidation, message, ErrValidation)
}

func NewConflictError(message string) *AppError {
	return NewDomainError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func NewForbiddenError(message string) *AppError {
	return NewDomainError(http.StatusForbidden, CodeAuthorization, message, ErrForbidden)
}

// StatusFor maps any error to the HTTP status it should be rendered with.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, m := range sentinelTable {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// CodeFor maps any error to its machine readable code.
func CodeFor(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	for _, m := range sentinelTable {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return CodeInternal
}

// MessageFor returns the client facing message for err.
func MessageFor(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

type sentinelMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var sentinelTable = []sentinelMapping{
	{ErrBackdateNotAllowed, http.StatusBadRequest, CodeBackdateNotAllowed},
	{ErrSelfReview, http.StatusBadRequest, CodeSelfReview},
	{ErrAlreadyReviewed, http.StatusBadRequest, CodeAlreadyReviewed},
	{ErrInvalidOperation, http.StatusBadRequest, CodeInvalidOperation},
	{ErrVersionMismatch, http.StatusConflict, CodeVersionConflict},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrValidation, http.StatusBadRequest, CodeValidation},
	{ErrDuplicate, http.StatusConflict, CodeConflict},
	{ErrConflict, http.StatusConflict, CodeConflict},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrForbidden, http.StatusForbidden, CodeAuthorization},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, CodeServiceUnavailable},
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	default:
		return ErrInternal
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeAuthorization
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeInternal
	}
}
