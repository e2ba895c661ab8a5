package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

// MembershipsRepository handles membership data persistence.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// MembershipWithChurch combines membership and church details for the login flow.
type MembershipWithChurch struct {
	Membership domain.Membership
	Church     domain.Church
}

// Create creates a new membership.
func (r *MembershipsRepository) Create(ctx context.Context, membership *domain.Membership) error {
	return r.CreateTx(ctx, r.db, membership)
}

// CreateTx creates a new membership within a transaction.
func (r *MembershipsRepository) CreateTx(ctx context.Context, q Querier, membership *domain.Membership) error {
	query := `
		INSERT INTO memberships (id, church_id, member_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		membership.ID,
		membership.ChurchID,
		membership.MemberID,
		membership.Role,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	return err
}

// GetByMemberAndChurch retrieves a membership for a member in a church.
func (r *MembershipsRepository) GetByMemberAndChurch(ctx context.Context, memberID, churchID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, church_id, member_id, role, created_at, updated_at, deleted_at
		FROM memberships
		WHERE member_id = $1 AND church_id = $2 AND deleted_at IS NULL
	`

	var membership domain.Membership
	err := r.db.QueryRowContext(ctx, query, memberID, churchID).Scan(
		&membership.ID,
		&membership.ChurchID,
		&membership.MemberID,
		&membership.Role,
		&membership.CreatedAt,
		&membership.UpdatedAt,
		&membership.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}

	return &membership, nil
}

// GetActiveWithChurch retrieves the member's active membership joined with
// its church, for building session claims at login.
func (r *MembershipsRepository) GetActiveWithChurch(ctx context.Context, memberID uuid.UUID) (*MembershipWithChurch, error) {
	query := `
		SELECT
			ms.id, ms.church_id, ms.member_id, ms.role, ms.created_at, ms.updated_at, ms.deleted_at,
			c.id, c.name, c.slug, c.created_at, c.updated_at, c.deleted_at
		FROM memberships ms
		INNER JOIN churches c ON ms.church_id = c.id
		WHERE ms.member_id = $1
			AND ms.deleted_at IS NULL
			AND c.deleted_at IS NULL
		ORDER BY ms.created_at ASC
		LIMIT 1
	`

	var result MembershipWithChurch
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&result.Membership.ID,
		&result.Membership.ChurchID,
		&result.Membership.MemberID,
		&result.Membership.Role,
		&result.Membership.CreatedAt,
		&result.Membership.UpdatedAt,
		&result.Membership.DeletedAt,
		&result.Church.ID,
		&result.Church.Name,
		&result.Church.Slug,
		&result.Church.CreatedAt,
		&result.Church.UpdatedAt,
		&result.Church.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}

	return &result, nil
}

// UpdateRole updates the role of a membership.
func (r *MembershipsRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `
		UPDATE memberships
		SET role = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}

	return nil
}

// SoftDelete soft deletes a membership.
func (r *MembershipsRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE memberships
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}

	return nil
}
