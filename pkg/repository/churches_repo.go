package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/flocklink/flocklink/pkg/domain"
)

// ChurchesRepository handles church data persistence.
type ChurchesRepository struct {
	db *sql.DB
}

// NewChurchesRepository creates a new churches repository.
func NewChurchesRepository(db *sql.DB) *ChurchesRepository {
	return &ChurchesRepository{db: db}
}

// Create creates a new church.
func (r *ChurchesRepository) Create(ctx context.Context, church *domain.Church) error {
	return r.CreateTx(ctx, r.db, church)
}

// CreateTx creates a new church within a transaction.
func (r *ChurchesRepository) CreateTx(ctx context.Context, q Querier, church *domain.Church) error {
	query := `
		INSERT INTO churches (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, query,
		church.ID,
		church.Name,
		church.Slug,
		church.CreatedAt,
		church.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.ErrChurchExists
	}
	return err
}

// GetByID retrieves a church by ID.
func (r *ChurchesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Church, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM churches
		WHERE id = $1 AND deleted_at IS NULL
	`

	var church domain.Church
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&church.ID,
		&church.Name,
		&church.Slug,
		&church.CreatedAt,
		&church.UpdatedAt,
		&church.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChurchNotFound
		}
		return nil, err
	}

	return &church, nil
}

// GetBySlug retrieves a church by slug.
func (r *ChurchesRepository) GetBySlug(ctx context.Context, slug string) (*domain.Church, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM churches
		WHERE slug = $1 AND deleted_at IS NULL
	`

	var church domain.Church
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&church.ID,
		&church.Name,
		&church.Slug,
		&church.CreatedAt,
		&church.UpdatedAt,
		&church.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChurchNotFound
		}
		return nil, err
	}

	return &church, nil
}
