package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a person known to the system. A member may belong to
// at most one church at a time through a Membership.
type Member struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
