package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.CashbookAuthorizerSvc
	clock      func() time.Time
}

// ServiceOption is a functional option shared by the service constructors.
type ServiceOption func(*BaseService)

// WithClock replaces time.Now, mostly for tests around the backdate rule.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = now
	}
}

func newBaseService(authorizer portssvc.CashbookAuthorizerSvc, opts ...ServiceOption) BaseService {
	base := BaseService{Authorizer: authorizer, clock: time.Now}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn is LogError for expected rule violations.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks that userID holds perm in the cashbook and returns the loaded cashbook and role.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, cashbookID string, perm domain.Permission) (*domain.Cashbook, domain.CashbookRole, error) {
	cashbook, role, err := s.Authorizer.Authorize(ctx, userID, cashbookID, perm)
	if err != nil {
		s.LogWarn(ctx, err, "Authorization failed",
			slog.String("user_id", userID),
			slog.String("cashbook_id", cashbookID),
			slog.String("permission", string(perm)))
		return nil, "", err
	}
	return cashbook, role, nil
}

// logMutationError logs rule violations at warn and everything else at error.
func (s *BaseService) logMutationError(ctx context.Context, err error, msg, cashbookID, entryID string) {
	attrs := []any{slog.String("cashbook_id", cashbookID), slog.String("entry_id", entryID)}
	if apperrors.StatusFor(err) < 500 {
		s.LogWarn(ctx, err, msg, attrs...)
		return
	}
	s.LogError(ctx, err, msg, attrs...)
}
