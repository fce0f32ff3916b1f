package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityUrgent   TaskPriority = "urgent"
	PriorityCritical TaskPriority = "critical"
)

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 10000
	MaxTagsPerTask       = 10
)

// Task is the core domain entity.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	ProjectID   uuid.UUID
	CategoryID  *uuid.UUID
	AssigneeID  *uuid.UUID
	CreatorID   uuid.UUID
	DueDate     *time.Time
	Completed   bool
	CompletedAt *time.Time
	Position    int
	Tags        []string
	Version     int
	IsDeleted   bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ValidStatuses lists every accepted task status.
func ValidStatuses() []TaskStatus {
	return []TaskStatus{
		StatusBacklog, StatusTodo, StatusInProgress,
		StatusInReview, StatusBlocked, StatusDone, StatusCancelled,
	}
}

// ValidPriorities lists every accepted task priority.
func ValidPriorities() []TaskPriority {
	return []TaskPriority{
		PriorityLow, PriorityMedium, PriorityHigh,
		PriorityUrgent, PriorityCritical,
	}
}

// IsValidStatus reports whether s is an accepted task status.
func IsValidStatus(s TaskStatus) bool {
	for _, v := range ValidStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidPriority reports whether p is an accepted task priority.
func IsValidPriority(p TaskPriority) bool {
	for _, v := range ValidPriorities() {
		if v == p {
			return true
		}
	}
	return false
}

// NewTask is a factory function to create a valid new task.
func NewTask(title, description string, priority TaskPriority, projectID, creatorID uuid.UUID) (*Task, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !IsValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	return &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		Priority:    priority,
		ProjectID:   projectID,
		CreatorID:   creatorID,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ChangeStatus moves the task to a new status, enforcing workflow rules.
// Completion flags are kept consistent with the status.
func (t *Task) ChangeStatus(newStatus TaskStatus) error {
	if !IsValidStatus(newStatus) {
		return ErrInvalidStatus
	}
	// Terminal statuses can only be reopened to todo.
	if t.Status == StatusDone || t.Status == StatusCancelled {
		if newStatus != StatusTodo && newStatus != t.Status {
			return ErrInvalidStatusTransition
		}
	}

	t.Status = newStatus
	now := time.Now().UTC()
	if newStatus == StatusDone {
		t.Completed = true
		t.CompletedAt = &now
	} else {
		t.Completed = false
		t.CompletedAt = nil
	}
	t.UpdatedAt = &now
	t.Version++
	return nil
}

// Complete marks the task done. Completing a completed task is an error.
func (t *Task) Complete() error {
	if t.Completed {
		return ErrTaskAlreadyCompleted
	}
	return t.ChangeStatus(StatusDone)
}

// Touch bumps the version and update timestamp after a field change.
func (t *Task) Touch() {
	now := time.Now().UTC()
	t.UpdatedAt = &now
	t.Version++
}

// SoftDelete flags the task deleted without removing the row.
func (t *Task) SoftDelete() {
	now := time.Now().UTC()
	t.IsDeleted = true
	t.DeletedAt = &now
	t.UpdatedAt = &now
}

// SetTags replaces the tag list, enforcing the per-task cap.
func (t *Task) SetTags(tags []string) error {
	if len(tags) > MaxTagsPerTask {
		return ErrTooManyTags
	}
	seen := make(map[string]struct{}, len(tags))
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		clean = append(clean, tag)
	}
	t.Tags = clean
	return nil
}

// TaskStats aggregates task counts for a user's visible tasks.
type TaskStats struct {
	Total      int64
	Completed  int64
	Overdue    int64
	ByStatus   map[TaskStatus]int64
	ByPriority map[TaskPriority]int64
}
