package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

// MembersRepository handles member persistence.
type MembersRepository struct {
	db *sql.DB
}

// NewMembersRepository creates a new members repository.
func NewMembersRepository(db *sql.DB) *MembersRepository {
	return &MembersRepository{db: db}
}

// Create creates a new member.
func (r *MembersRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		member.ID, member.Email, member.Name, member.PasswordHash, member.CreatedAt, member.UpdatedAt,
	)
	return err
}

// GetByID retrieves a member by ID.
func (r *MembersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at, deleted_at
		FROM members
		WHERE id = $1 AND deleted_at IS NULL
	`
	member := &domain.Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&member.ID, &member.Email, &member.Name, &member.PasswordHash,
		&member.CreatedAt, &member.UpdatedAt, &member.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetByEmail retrieves a member by email.
func (r *MembersRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at, deleted_at
		FROM members
		WHERE email = $1 AND deleted_at IS NULL
	`
	member := &domain.Member{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&member.ID, &member.Email, &member.Name, &member.PasswordHash,
		&member.CreatedAt, &member.UpdatedAt, &member.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// MemberWithRole combines a member with their role in a given church.
type MemberWithRole struct {
	Member domain.Member
	Role   domain.Role
}

// ListByChurch retrieves all members of a church with their roles.
func (r *MembersRepository) ListByChurch(ctx context.Context, churchID uuid.UUID) ([]*MemberWithRole, error) {
	query := `
		SELECT m.id, m.email, m.name, m.created_at, m.updated_at, ms.role
		FROM members m
		INNER JOIN memberships ms ON ms.member_id = m.id
		WHERE ms.church_id = $1
			AND ms.deleted_at IS NULL
			AND m.deleted_at IS NULL
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*MemberWithRole
	for rows.Next() {
		var result MemberWithRole
		err := rows.Scan(
			&result.Member.ID,
			&result.Member.Email,
			&result.Member.Name,
			&result.Member.CreatedAt,
			&result.Member.UpdatedAt,
			&result.Role,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}
