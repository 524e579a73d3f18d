package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
)

// cashbookAuthorizer resolves membership roles and checks them against the permission table.
type cashbookAuthorizer struct {
	BaseService
	cashbookRepo   portsrepo.CashbookReader
	membershipRepo portsrepo.MembershipReader
	auditRepo      portsrepo.AuditWriter
}

func NewCashbookAuthorizer(repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.CashbookAuthorizerSvc {
	return &cashbookAuthorizer{
		BaseService:    newBaseService(nil, opts...),
		cashbookRepo:   repos.CashbookRepo,
		membershipRepo: repos.MembershipRepo,
		auditRepo:      repos.AuditRepo,
	}
}

var _ portssvc.CashbookAuthorizerSvc = (*cashbookAuthorizer)(nil)

func (a *cashbookAuthorizer) ResolveAccess(ctx context.Context, userID, cashbookID string) (*domain.Cashbook, domain.CashbookRole, error) {
	cb, err := a.cashbookRepo.FindCashbookByID(ctx, cashbookID)
	if err != nil {
		return nil, "", err
	}
	if !cb.IsActive {
		return nil, "", apperrors.NewNotFoundError("Cashbook")
	}

	role, err := a.membershipRepo.FindMemberRole(ctx, cashbookID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.auditDenial(ctx, cb, userID, "", "not a member of this cashbook")
			return nil, "", apperrors.NewForbiddenError("you are not a member of this cashbook")
		}
		return nil, "", err
	}
	return cb, role, nil
}

func (a *cashbookAuthorizer) Authorize(ctx context.Context, userID, cashbookID string, perm domain.Permission) (*domain.Cashbook, domain.CashbookRole, error) {
	cb, role, err := a.ResolveAccess(ctx, userID, cashbookID)
	if err != nil {
		return nil, "", err
	}
	if !domain.HasPermission(role, perm) {
		a.auditDenial(ctx, cb, userID, perm, fmt.Sprintf("role %s lacks %s", role, perm))
		return nil, "", apperrors.NewForbiddenError(fmt.Sprintf("role %s does not grant %s", role, perm))
	}
	return cb, role, nil
}

// auditDenial records a PERMISSION_DENIED row. The denial is returned to the caller
// whether or not the audit write succeeds.
func (a *cashbookAuthorizer) auditDenial(ctx context.Context, cb *domain.Cashbook, userID string, perm domain.Permission, reason string) {
	details := map[string]any{"reason": reason}
	if perm != "" {
		details["permission"] = string(perm)
	}
	log := newAuditLog(cb, userID, domain.AuditPermissionDenied, "Cashbook", cb.CashbookID, details, a.Now())
	if err := a.auditRepo.SaveAuditLog(ctx, log); err != nil {
		a.LogError(ctx, err, "Failed to record permission denial",
			slog.String("cashbook_id", cb.CashbookID),
			slog.String("user_id", userID))
	}
}
