package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind defines the type of real-time event.
type EventKind string

const (
	EventTaskCreated     EventKind = "task_created"
	EventTaskUpdated     EventKind = "task_updated"
	EventTaskDeleted     EventKind = "task_deleted"
	EventTaskCompleted   EventKind = "task_completed"
	EventTaskUncompleted EventKind = "task_uncompleted"
	EventUserStatus      EventKind = "user_status"
)

// Event is the payload fanned out over WebSocket to project subscribers.
// UserID identifies the originating user, whose own connections are
// skipped during delivery. ProjectID is the routing topic.
type Event struct {
	Kind      EventKind              `json:"event"`
	TaskID    *uuid.UUID             `json:"task_id,omitempty"`
	UserID    uuid.UUID              `json:"user_id"`
	ProjectID uuid.UUID              `json:"project_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewTaskEvent builds an event for a task mutation performed by actorID.
func NewTaskEvent(kind EventKind, task *Task, actorID uuid.UUID) Event {
	return Event{
		Kind:      kind,
		TaskID:    &task.ID,
		UserID:    actorID,
		ProjectID: task.ProjectID,
		Payload:   NewTaskSnapshot(task),
		Timestamp: time.Now().UTC(),
	}
}

// NewUserStatusEvent builds a presence event for userID on a project topic.
func NewUserStatusEvent(userID, projectID uuid.UUID, online bool) Event {
	status := "offline"
	if online {
		status = "online"
	}
	return Event{
		Kind:      EventUserStatus,
		UserID:    userID,
		ProjectID: projectID,
		Payload:   map[string]interface{}{"user_id": userID.String(), "status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskSnapshot builds the wire representation of a task for event payloads.
func NewTaskSnapshot(task *Task) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":         task.ID.String(),
		"title":      task.Title,
		"status":     string(task.Status),
		"priority":   string(task.Priority),
		"project_id": task.ProjectID.String(),
		"completed":  task.Completed,
		"position":   task.Position,
		"version":    task.Version,
		"created_at": task.CreatedAt.UTC().Format(time.RFC3339),
	}
	if task.Description != "" {
		snapshot["description"] = task.Description
	}
	if task.CategoryID != nil {
		snapshot["category_id"] = task.CategoryID.String()
	}
	if task.AssigneeID != nil {
		snapshot["assignee_id"] = task.AssigneeID.String()
	}
	if task.DueDate != nil {
		snapshot["due_date"] = task.DueDate.UTC().Format(time.RFC3339)
	}
	if task.CompletedAt != nil {
		snapshot["completed_at"] = task.CompletedAt.UTC().Format(time.RFC3339)
	}
	if len(task.Tags) > 0 {
		snapshot["tags"] = task.Tags
	}
	return snapshot
}
