package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/google/uuid"
)

const deleteRequestResource = "DeleteRequest"

// deleteRequestService routes deletions through the direct path or the two-party approval workflow.
type deleteRequestService struct {
	BaseService
	requestRepo portsrepo.DeleteRequestRepositoryFacade
	txManager   portsrepo.TransactionManager
	engine      ledgerEngine
}

func NewDeleteRequestService(repos portsrepo.RepositoryProvider, authorizer portssvc.CashbookAuthorizerSvc, opts ...ServiceOption) portssvc.DeleteRequestSvc {
	svc := &deleteRequestService{
		BaseService: newBaseService(authorizer, opts...),
		requestRepo: repos.DeleteRequestRepo,
		txManager:   repos.TxManager,
	}
	svc.engine = ledgerEngine{now: svc.Now}
	return svc
}

var _ portssvc.DeleteRequestSvc = (*deleteRequestService)(nil)

// RequestDeletion deletes immediately when the caller can both delete and approve.
// A caller who can only delete gets a PENDING request instead.
func (s *deleteRequestService) RequestDeletion(ctx context.Context, cashbookID, entryID, reason, userID string) (*domain.DeletionResult, error) {
	_, role, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermDeleteEntry)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("a reason is required to delete an entry")
	}

	if domain.HasPermission(role, domain.PermApproveDelete) {
		return s.deleteDirectly(ctx, cashbookID, entryID, reason, userID)
	}
	return s.openRequest(ctx, cashbookID, entryID, reason, userID)
}

func (s *deleteRequestService) deleteDirectly(ctx context.Context, cashbookID, entryID, reason, userID string) (*domain.DeletionResult, error) {
	var deleted *domain.Entry
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		deleted, err = s.engine.remove(ctx, tx, cashbookID, entryID, userID, reason)
		return err
	})
	if err != nil {
		s.logMutationError(ctx, err, "Failed to delete entry", cashbookID, entryID)
		return nil, err
	}

	s.LogInfo(ctx, "Entry deleted",
		slog.String("cashbook_id", cashbookID),
		slog.String("entry_id", entryID))
	return &domain.DeletionResult{Outcome: domain.DeletionPerformed, Entry: deleted}, nil
}

func (s *deleteRequestService) openRequest(ctx context.Context, cashbookID, entryID, reason, userID string) (*domain.DeletionResult, error) {
	var created *domain.DeleteRequest
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		cb, err := s.engine.lockActiveCashbook(ctx, tx, cashbookID)
		if err != nil {
			return err
		}
		if _, err := s.engine.lockLiveEntry(ctx, tx, cashbookID, entryID); err != nil {
			return err
		}

		_, err = tx.FindPendingDeleteRequest(ctx, entryID)
		switch {
		case err == nil:
			return apperrors.NewConflictError("a delete request is already pending for this entry")
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		now := s.Now()
		req := domain.DeleteRequest{
			RequestID:   uuid.NewString(),
			EntryID:     entryID,
			CashbookID:  cashbookID,
			RequesterID: userID,
			Reason:      reason,
			Status:      domain.DeleteRequestPending,
			CreatedAt:   now,
		}
		if err := tx.InsertDeleteRequest(ctx, req); err != nil {
			return err
		}

		log := newAuditLog(cb, userID, domain.AuditDeleteRequested, deleteRequestResource, req.RequestID,
			map[string]any{"entryId": entryID, "reason": reason}, now)
		if err := tx.InsertAuditLog(ctx, log); err != nil {
			return err
		}
		created = &req
		return nil
	})
	if err != nil {
		s.logMutationError(ctx, err, "Failed to open delete request", cashbookID, entryID)
		return nil, err
	}

	s.LogInfo(ctx, "Delete request opened",
		slog.String("cashbook_id", cashbookID),
		slog.String("entry_id", entryID),
		slog.String("request_id", created.RequestID))
	return &domain.DeletionResult{Outcome: domain.DeletionRequested, Request: created}, nil
}

// ReviewDeleteRequest settles a PENDING request. Approval deletes the entry in the
// same transaction, attributed to the reviewer and carrying the requester's reason.
func (s *deleteRequestService) ReviewDeleteRequest(ctx context.Context, cashbookID, requestID string, req dto.ReviewDeleteRequestRequest, reviewerID string) (*domain.DeleteRequest, error) {
	_, role, err := s.Authorizer.ResolveAccess(ctx, reviewerID, cashbookID)
	if err != nil {
		return nil, err
	}

	pending, err := s.requestRepo.FindDeleteRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pending.CashbookID != cashbookID {
		return nil, apperrors.NewNotFoundError("Delete request")
	}
	// SELF_REVIEW is reported whatever the role. The request's status is only
	// disclosed to callers allowed to approve.
	if pending.RequesterID == reviewerID {
		s.LogWarn(ctx, apperrors.ErrSelfReview, "Delete request cannot be reviewed",
			slog.String("request_id", requestID),
			slog.String("reviewer_id", reviewerID))
		return nil, apperrors.ErrSelfReview
	}
	if !domain.HasPermission(role, domain.PermApproveDelete) {
		// Authorize again to get the audited denial.
		if _, _, err := s.AuthorizeUser(ctx, reviewerID, cashbookID, domain.PermApproveDelete); err != nil {
			return nil, err
		}
	}
	if err := pending.CheckReviewable(reviewerID); err != nil {
		s.LogWarn(ctx, err, "Delete request cannot be reviewed",
			slog.String("request_id", requestID),
			slog.String("reviewer_id", reviewerID))
		return nil, err
	}

	var reviewed *domain.DeleteRequest
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		cb, err := s.engine.lockActiveCashbook(ctx, tx, cashbookID)
		if err != nil {
			return err
		}
		request, err := tx.LockDeleteRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.CashbookID != cashbookID {
			return apperrors.NewNotFoundError("Delete request")
		}

		now := s.Now()
		if err := request.Review(reviewerID, req.Status, req.ReviewNote, now); err != nil {
			return err
		}

		action := domain.AuditDeleteRejected
		if request.Status == domain.DeleteRequestApproved {
			action = domain.AuditDeleteApproved
			if err := s.approve(ctx, tx, request, reviewerID); err != nil {
				return err
			}
		}

		if err := tx.SaveDeleteRequestReview(ctx, *request); err != nil {
			return err
		}

		details := map[string]any{"entryId": request.EntryID, "requesterId": request.RequesterID}
		if request.ReviewNote != nil {
			details["reviewNote"] = *request.ReviewNote
		}
		if err := tx.InsertAuditLog(ctx, newAuditLog(cb, reviewerID, action, deleteRequestResource, request.RequestID, details, now)); err != nil {
			return err
		}
		reviewed = request
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to review delete request",
			slog.String("cashbook_id", cashbookID),
			slog.String("request_id", requestID))
		return nil, err
	}

	s.LogInfo(ctx, "Delete request reviewed",
		slog.String("request_id", requestID),
		slog.String("status", string(reviewed.Status)))
	return reviewed, nil
}

// approve deletes the requested entry. An entry already deleted through the direct
// path has no effect left to reverse, so the request is settled without touching it.
func (s *deleteRequestService) approve(ctx context.Context, tx portsrepo.LedgerTx, request *domain.DeleteRequest, reviewerID string) error {
	_, err := s.engine.remove(ctx, tx, request.CashbookID, request.EntryID, reviewerID, request.Reason)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	entry, lookupErr := tx.LockEntry(ctx, request.EntryID)
	if lookupErr == nil && entry.IsDeleted() {
		s.LogInfo(ctx, "Approved delete request for an entry that is already deleted",
			slog.String("request_id", request.RequestID),
			slog.String("entry_id", request.EntryID))
		return nil
	}
	return err
}

func (s *deleteRequestService) ListDeleteRequests(ctx context.Context, cashbookID, userID string, status *domain.DeleteRequestStatus) ([]domain.DeleteRequest, error) {
	if _, _, err := s.AuthorizeUser(ctx, userID, cashbookID, domain.PermApproveDelete); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, apperrors.NewValidationError("status must be PENDING, APPROVED or REJECTED")
	}
	return s.requestRepo.ListDeleteRequests(ctx, cashbookID, status)
}
