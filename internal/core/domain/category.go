package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxCategoryNameLength = 100

// Category is a user-defined grouping of tasks within a project.
type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string
	Position  int
	ProjectID uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewCategory is a factory function to create a valid new category.
func NewCategory(name, color string, position int, projectID, ownerID uuid.UUID) (*Category, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) > MaxCategoryNameLength {
		return nil, ErrNameTooLong
	}
	if color == "" {
		color = "#94A3B8"
	}
	if !hexColorPattern.MatchString(color) {
		return nil, ErrInvalidColor
	}

	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		Position:  position,
		ProjectID: projectID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
