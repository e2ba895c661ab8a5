// Package workflow implements the membership request decision workflow:
// a pending request transitions to approved or declined exactly once,
// atomically with its audit log entry.
package workflow

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/notification"
	"github.com/flocklink/flocklink/pkg/repository"
)

// Service applies decisions to membership requests.
type Service struct {
	db       *sql.DB
	requests *repository.RequestsRepository
	audit    *repository.AuditRepository
	events   *notification.AuditPublisher
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService creates a workflow service. events may be nil (no audit
// event publishing).
func NewService(db *sql.DB, requests *repository.RequestsRepository, audit *repository.AuditRepository, events *notification.AuditPublisher, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		requests: requests,
		audit:    audit,
		events:   events,
		logger:   logger,
		tracer:   otel.Tracer("flocklink/workflow"),
		now:      time.Now,
	}
}

// Decide transitions a pending request to the decided terminal status and
// appends the audit entry in the same transaction. Both writes commit
// together or neither does. A request that does not exist, belongs to
// another church, or has already been decided yields ErrRequestNotFound;
// the conditional update makes a double decision impossible even under
// concurrent callers.
func (s *Service) Decide(ctx context.Context, requestID, churchID, actorID uuid.UUID, decision domain.Decision) error {
	if !decision.Valid() {
		return domain.ErrInvalidDecision
	}

	ctx, span := s.tracer.Start(ctx, "workflow.decide",
		trace.WithAttributes(
			attribute.String("request.id", requestID.String()),
			attribute.String("church.id", churchID.String()),
			attribute.String("decision", string(decision)),
		),
	)
	defer span.End()

	now := s.now()
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ChurchID:   churchID,
		ActorID:    actorID,
		Action:     decision.AuditAction(),
		EntityType: domain.EntityMembershipRequest,
		EntityID:   requestID,
		CreatedAt:  now,
	}

	err := repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.requests.DecideTx(ctx, tx, requestID, churchID, decision.Status(), actorID, now); err != nil {
			return err
		}
		return s.audit.AppendTx(ctx, tx, entry)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Info("membership request decided",
		"request_id", requestID,
		"church_id", churchID,
		"actor_id", actorID,
		"decision", decision,
	)

	// Post-commit, best effort. A publish failure must not undo or mask
	// the committed decision.
	if s.events != nil {
		if err := s.events.Publish(ctx, entry); err != nil {
			s.logger.Warn("audit event publish failed",
				"request_id", requestID,
				"error", err,
			)
		}
	}

	return nil
}
