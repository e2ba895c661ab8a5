package domain

import (
	"time"

	"github.com/google/uuid"
)

// Church represents a tenant organization with its own members and roles.
type Church struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
