package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"

	"github.com/flocklink/flocklink/pkg/domain"
)

// Writer is the subset of the kafka writer the publisher needs, so tests
// can inject a fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditEvent is the wire shape of a published audit notification. It
// mirrors the committed AuditEntry; the database row remains the source
// of truth, the event is informational.
type AuditEvent struct {
	ID         uuid.UUID          `json:"id"`
	ChurchID   uuid.UUID          `json:"church_id"`
	ActorID    uuid.UUID          `json:"actor_id"`
	Action     domain.AuditAction `json:"action"`
	EntityType string             `json:"entity_type"`
	EntityID   uuid.UUID          `json:"entity_id"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// AuditPublisher publishes audit events to Kafka after the corresponding
// database transaction has committed. Publishing is best effort and never
// affects the committed result.
type AuditPublisher struct {
	writer Writer
}

// NewAuditPublisher creates a publisher writing to the given broker and topic.
func NewAuditPublisher(brokerAddr, topic string) *AuditPublisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokerAddr),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &AuditPublisher{writer: w}
}

// NewAuditPublisherWithWriter allows injecting a test writer.
func NewAuditPublisherWithWriter(w Writer) *AuditPublisher {
	return &AuditPublisher{writer: w}
}

// Publish sends one audit event keyed by church id, so all events of a
// tenant land on the same partition in order.
func (p *AuditPublisher) Publish(ctx context.Context, entry *domain.AuditEntry) error {
	event := AuditEvent{
		ID:         entry.ID,
		ChurchID:   entry.ChurchID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OccurredAt: entry.CreatedAt,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(entry.ChurchID.String()),
		Value: value,
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close closes the underlying writer.
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
