package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

// AuditRepository handles the append-only audit log. Entries are never
// updated or deleted.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append appends an audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.AppendTx(ctx, r.db, entry)
}

// AppendTx appends an audit entry within a transaction. Callers mutating
// state must use this so the entry commits atomically with the mutation.
func (r *AuditRepository) AppendTx(ctx context.Context, q Querier, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, church_id, actor_id, action, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		entry.ID,
		entry.ChurchID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.CreatedAt,
	)
	return err
}

// ListByChurch retrieves the most recent audit entries for a church.
func (r *AuditRepository) ListByChurch(ctx context.Context, churchID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, church_id, actor_id, action, entity_type, entity_id, created_at
		FROM audit_log
		WHERE church_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, churchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ChurchID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// ListByEntity retrieves all audit entries referencing a specific entity.
func (r *AuditRepository) ListByEntity(ctx context.Context, churchID, entityID uuid.UUID) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, church_id, actor_id, action, entity_type, entity_id, created_at
		FROM audit_log
		WHERE church_id = $1 AND entity_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, churchID, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ChurchID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
