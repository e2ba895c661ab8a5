package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

// RequestsRepository handles membership request persistence.
type RequestsRepository struct {
	db *sql.DB
}

// NewRequestsRepository creates a new requests repository.
func NewRequestsRepository(db *sql.DB) *RequestsRepository {
	return &RequestsRepository{db: db}
}

// Create creates a new pending membership request.
func (r *RequestsRepository) Create(ctx context.Context, request *domain.MembershipRequest) error {
	query := `
		INSERT INTO membership_requests (id, church_id, member_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.ChurchID,
		request.MemberID,
		request.Status,
		request.Message,
		request.CreatedAt,
	)
	return err
}

// GetByID retrieves a request by ID, scoped to a church.
func (r *RequestsRepository) GetByID(ctx context.Context, id, churchID uuid.UUID) (*domain.MembershipRequest, error) {
	query := `
		SELECT id, church_id, member_id, status, message, created_at, decided_at, decided_by, deleted_at
		FROM membership_requests
		WHERE id = $1 AND church_id = $2 AND deleted_at IS NULL
	`

	var request domain.MembershipRequest
	err := r.db.QueryRowContext(ctx, query, id, churchID).Scan(
		&request.ID,
		&request.ChurchID,
		&request.MemberID,
		&request.Status,
		&request.Message,
		&request.CreatedAt,
		&request.DecidedAt,
		&request.DecidedBy,
		&request.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	return &request, nil
}

// ListPendingByChurch retrieves all pending requests for a church.
func (r *RequestsRepository) ListPendingByChurch(ctx context.Context, churchID uuid.UUID) ([]*domain.MembershipRequest, error) {
	query := `
		SELECT id, church_id, member_id, status, message, created_at, decided_at, decided_by, deleted_at
		FROM membership_requests
		WHERE church_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, churchID, domain.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.MembershipRequest
	for rows.Next() {
		var request domain.MembershipRequest
		err := rows.Scan(
			&request.ID,
			&request.ChurchID,
			&request.MemberID,
			&request.Status,
			&request.Message,
			&request.CreatedAt,
			&request.DecidedAt,
			&request.DecidedBy,
			&request.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, &request)
	}

	return requests, rows.Err()
}

// DecideTx transitions a pending request to a terminal status within a
// transaction. The conditional predicate on status is the concurrency
// guard: of two racing deciders only one update matches a pending row,
// the other sees zero rows affected and gets ErrRequestNotFound. The
// same error covers a request that never existed or belongs to another
// church, intentionally.
func (r *RequestsRepository) DecideTx(ctx context.Context, q Querier, id, churchID uuid.UUID, status domain.RequestStatus, decidedBy uuid.UUID, decidedAt time.Time) error {
	query := `
		UPDATE membership_requests
		SET status = $1, decided_by = $2, decided_at = $3
		WHERE id = $4
			AND church_id = $5
			AND status = $6
			AND deleted_at IS NULL
	`
	result, err := q.ExecContext(ctx, query,
		status, decidedBy, decidedAt, id, churchID, domain.RequestStatusPending,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}

// CancelPending soft deletes a request, but only while it is still
// pending and only for the member who filed it. A request that was
// already decided, belongs to someone else, or never existed reports
// ErrRequestNotFound.
func (r *RequestsRepository) CancelPending(ctx context.Context, id, memberID uuid.UUID) error {
	query := `
		UPDATE membership_requests
		SET deleted_at = NOW()
		WHERE id = $1 AND member_id = $2 AND status = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, memberID, domain.RequestStatusPending)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}
