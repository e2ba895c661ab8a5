package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the privileged action an audit entry records.
type AuditAction string

const (
	AuditActionApprove      AuditAction = "approve"
	AuditActionDecline      AuditAction = "decline"
	AuditActionCreateChurch AuditAction = "create_church"
)

// Entity types referenced by audit entries.
const (
	EntityMembershipRequest = "membership_request"
	EntityChurch            = "church"
)

// AuditEntry is an immutable record of a privileged action. An entry exists
// if and only if the corresponding state change committed.
type AuditEntry struct {
	ID         uuid.UUID
	ChurchID   uuid.UUID
	ActorID    uuid.UUID
	Action     AuditAction
	EntityType string
	EntityID   uuid.UUID
	CreatedAt  time.Time
}
