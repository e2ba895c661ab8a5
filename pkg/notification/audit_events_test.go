package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"

	"github.com/flocklink/flocklink/pkg/domain"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewAuditPublisherWithWriter(fw)

	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ChurchID:   uuid.New(),
		ActorID:    uuid.New(),
		Action:     domain.AuditActionApprove,
		EntityType: domain.EntityMembershipRequest,
		EntityID:   uuid.New(),
		CreatedAt:  time.Now(),
	}

	if err := p.Publish(context.Background(), entry); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}

	if got := string(fw.msgs[0].Key); got != entry.ChurchID.String() {
		t.Errorf("message key = %q, want church id %q", got, entry.ChurchID)
	}

	var event AuditEvent
	if err := json.Unmarshal(fw.msgs[0].Value, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Action != domain.AuditActionApprove {
		t.Errorf("event action = %q, want %q", event.Action, domain.AuditActionApprove)
	}
	if event.EntityID != entry.EntityID {
		t.Errorf("event entity id = %v, want %v", event.EntityID, entry.EntityID)
	}
}
