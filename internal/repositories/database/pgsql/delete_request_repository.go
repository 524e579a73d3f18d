package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	"github.com/SscSPs/cashbook_backend/internal/models"
	"github.com/SscSPs/cashbook_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDeleteRequestRepository struct {
	db querier
}

func newPgxDeleteRequestRepository(pool *pgxpool.Pool) *PgxDeleteRequestRepository {
	return &PgxDeleteRequestRepository{db: pool}
}

var (
	_ portsrepo.DeleteRequestRepositoryFacade = (*PgxDeleteRequestRepository)(nil)
	_ portsrepo.DeleteRequestTxWriter         = (*PgxDeleteRequestRepository)(nil)
)

const deleteRequestColumns = `request_id, entry_id, cashbook_id, requester_id, reason, status,
		reviewer_id, review_note, reviewed_at, created_at`

func (r *PgxDeleteRequestRepository) queryOne(ctx context.Context, query string, arg string, op string) (*domain.DeleteRequest, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", op, arg, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.DeleteRequest])
	if err != nil {
		return nil, notFoundOr(err, "Delete request", op+" "+arg)
	}
	req := mapping.ToDomainDeleteRequest(m)
	return &req, nil
}

func (r *PgxDeleteRequestRepository) FindDeleteRequestByID(ctx context.Context, requestID string) (*domain.DeleteRequest, error) {
	query := `SELECT ` + deleteRequestColumns + ` FROM delete_requests WHERE request_id = $1;`
	return r.queryOne(ctx, query, requestID, "find delete request")
}

func (r *PgxDeleteRequestRepository) FindPendingDeleteRequest(ctx context.Context, entryID string) (*domain.DeleteRequest, error) {
	query := `SELECT ` + deleteRequestColumns + ` FROM delete_requests WHERE entry_id = $1 AND status = 'PENDING';`
	return r.queryOne(ctx, query, entryID, "find pending delete request for entry")
}

func (r *PgxDeleteRequestRepository) LockDeleteRequest(ctx context.Context, requestID string) (*domain.DeleteRequest, error) {
	query := `SELECT ` + deleteRequestColumns + ` FROM delete_requests WHERE request_id = $1 FOR UPDATE;`
	return r.queryOne(ctx, query, requestID, "lock delete request")
}

// ListDeleteRequests returns the newest requests first, optionally narrowed to one status.
func (r *PgxDeleteRequestRepository) ListDeleteRequests(ctx context.Context, cashbookID string, status *domain.DeleteRequestStatus) ([]domain.DeleteRequest, error) {
	query := `SELECT ` + deleteRequestColumns + ` FROM delete_requests WHERE cashbook_id = $1`
	args := []any{cashbookID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, request_id DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list delete requests of cashbook %s: %w", cashbookID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.DeleteRequest])
	if err != nil {
		return nil, fmt.Errorf("failed to scan delete requests of cashbook %s: %w", cashbookID, err)
	}
	return mapping.ToDomainDeleteRequestSlice(ms), nil
}

// InsertDeleteRequest relies on the partial unique index over pending requests per entry.
func (r *PgxDeleteRequestRepository) InsertDeleteRequest(ctx context.Context, req domain.DeleteRequest) error {
	m := mapping.ToModelDeleteRequest(req)
	query := `
		INSERT INTO delete_requests (request_id, entry_id, cashbook_id, requester_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query, m.RequestID, m.EntryID, m.CashbookID, m.RequesterID, m.Reason, m.Status, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("a delete request is already pending for this entry")
		}
		return fmt.Errorf("failed to insert delete request for entry %s: %w", m.EntryID, err)
	}
	return nil
}

// SaveDeleteRequestReview only settles a request that is still pending.
func (r *PgxDeleteRequestRepository) SaveDeleteRequestReview(ctx context.Context, req domain.DeleteRequest) error {
	m := mapping.ToModelDeleteRequest(req)
	query := `
		UPDATE delete_requests
		SET status = $2, reviewer_id = $3, review_note = $4, reviewed_at = $5
		WHERE request_id = $1 AND status = 'PENDING';
	`
	tag, err := r.db.Exec(ctx, query, m.RequestID, m.Status, m.ReviewerID, m.ReviewNote, m.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to save review of delete request %s: %w", m.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyReviewed
	}
	return nil
}
