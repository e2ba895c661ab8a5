package domain

import (
	"time"

	"github.com/google/uuid"
)

// Membership ties a member to a church with a role.
type Membership struct {
	ID        uuid.UUID
	ChurchID  uuid.UUID
	MemberID  uuid.UUID
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
