package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

const MaxProjectNameLength = 200

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Project groups tasks and carries the subscription topic identity
// used by the real-time layer.
type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      ProjectStatus
	Color       string
	OwnerID     uuid.UUID
	IsDeleted   bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// IsValidProjectStatus reports whether s is an accepted project status.
func IsValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// IsValidColor reports whether c is an accepted hex color value.
func IsValidColor(c string) bool {
	return hexColorPattern.MatchString(c)
}

// NewProject is a factory function to create a valid new project.
func NewProject(name, description, color string, ownerID uuid.UUID) (*Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) > MaxProjectNameLength {
		return nil, ErrNameTooLong
	}
	if color == "" {
		color = "#6366F1"
	}
	if !hexColorPattern.MatchString(color) {
		return nil, ErrInvalidColor
	}

	return &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      ProjectActive,
		Color:       color,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ChangeStatus moves the project to a new lifecycle state.
func (p *Project) ChangeStatus(newStatus ProjectStatus) error {
	if !IsValidProjectStatus(newStatus) {
		return ErrInvalidProjectStatus
	}
	p.Status = newStatus
	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}

// SoftDelete flags the project deleted without removing the row.
func (p *Project) SoftDelete() {
	now := time.Now().UTC()
	p.IsDeleted = true
	p.DeletedAt = &now
	p.UpdatedAt = &now
}
