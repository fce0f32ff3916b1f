package domain

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's account record. Credentials are
// verified upstream; this service only stores the profile.
type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	LastActiveAt *time.Time
}

// UserActivity is one row of the mutation audit trail.
type UserActivity struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]interface{}
	CreatedAt  time.Time
}
