package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
)

// CreateTaskParams defines the required input for creating a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	ProjectID   uuid.UUID
	CategoryID  *uuid.UUID
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	Tags        []string
	ActorID     uuid.UUID
}

// UpdateTaskParams defines the input for updating a task. Nil fields are
// left unchanged.
type UpdateTaskParams struct {
	TaskID      uuid.UUID
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	CategoryID  *uuid.UUID
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	Position    *int
	Tags        []string
	ActorID     uuid.UUID
}

// ListTasksParams defines the input for listing tasks.
type ListTasksParams struct {
	ViewerID uuid.UUID
	Filter   TaskFilter
}

// DeleteTaskParams defines the input for deleting a task.
type DeleteTaskParams struct {
	TaskID  uuid.UUID
	ActorID uuid.UUID
	Hard    bool
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks  []*domain.Task
	Total  int64
	Limit  int
	Offset int
}

// TaskService defines the core business operations for managing tasks.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)
	GetTask(ctx context.Context, taskID, viewerID uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*domain.Task, error)
	DeleteTask(ctx context.Context, params DeleteTaskParams) error
	CompleteTask(ctx context.Context, taskID, actorID uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error)
	GetStats(ctx context.Context, viewerID uuid.UUID) (*domain.TaskStats, error)
}

// BulkOperation names a bulk mutation for result reporting.
type BulkOperation string

const (
	BulkOpComplete    BulkOperation = "complete"
	BulkOpUncomplete  BulkOperation = "uncomplete"
	BulkOpDelete      BulkOperation = "delete"
	BulkOpSetStatus   BulkOperation = "set_status"
	BulkOpSetPriority BulkOperation = "set_priority"
	BulkOpSetCategory BulkOperation = "set_category"
	BulkOpUpdate      BulkOperation = "update"
)

// BulkTaskParams carries the shared shape of every bulk mutation.
type BulkTaskParams struct {
	TaskIDs []uuid.UUID
	ActorID uuid.UUID
}

// BulkUpdateFields holds the optional fields of a bulk update.
type BulkUpdateFields struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	CategoryID *uuid.UUID
	DueDate    *time.Time
	Completed  *bool
}

// BulkOutcome is the API-facing result of a bulk mutation.
type BulkOutcome struct {
	Operation  BulkOperation
	Requested  int
	Affected   int64
	DurationMS int64
}

// BulkService runs single-statement mutations over batches of tasks.
type BulkService interface {
	Complete(ctx context.Context, params BulkTaskParams, completed bool) (*BulkOutcome, error)
	Delete(ctx context.Context, params BulkTaskParams) (*BulkOutcome, error)
	SetStatus(ctx context.Context, params BulkTaskParams, status domain.TaskStatus) (*BulkOutcome, error)
	SetPriority(ctx context.Context, params BulkTaskParams, priority domain.TaskPriority) (*BulkOutcome, error)
	SetCategory(ctx context.Context, params BulkTaskParams, categoryID *uuid.UUID) (*BulkOutcome, error)
	Update(ctx context.Context, params BulkTaskParams, fields BulkUpdateFields) (*BulkOutcome, error)
}

// CreateProjectParams defines the input for creating a project.
type CreateProjectParams struct {
	Name        string
	Description string
	Color       string
	OwnerID     uuid.UUID
}

// UpdateProjectParams defines the input for updating a project.
type UpdateProjectParams struct {
	ProjectID   uuid.UUID
	Name        *string
	Description *string
	Color       *string
	Status      *domain.ProjectStatus
	ActorID     uuid.UUID
}

// ProjectService defines project management operations.
type ProjectService interface {
	CreateProject(ctx context.Context, params CreateProjectParams) (*domain.Project, error)
	GetProject(ctx context.Context, projectID, viewerID uuid.UUID) (*domain.Project, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Project, error)
	UpdateProject(ctx context.Context, params UpdateProjectParams) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID, actorID uuid.UUID) error
}

// CreateCategoryParams defines the input for creating a category.
type CreateCategoryParams struct {
	Name      string
	Color     string
	Position  int
	ProjectID uuid.UUID
	ActorID   uuid.UUID
}

// UpdateCategoryParams defines the input for updating a category.
type UpdateCategoryParams struct {
	CategoryID uuid.UUID
	Name       *string
	Color      *string
	Position   *int
	ActorID    uuid.UUID
}

// CategoryService defines category management operations.
type CategoryService interface {
	CreateCategory(ctx context.Context, params CreateCategoryParams) (*domain.Category, error)
	GetCategory(ctx context.Context, categoryID, viewerID uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, params UpdateCategoryParams) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID, actorID uuid.UUID) error
	ReorderCategories(ctx context.Context, projectID, actorID uuid.UUID, orderedIDs []uuid.UUID) ([]*domain.Category, error)
}

// ActivityService reads the mutation audit trail.
type ActivityService interface {
	ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserActivity, error)
}

// UserService reads the authenticated user's profile.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// EventPublisher is the port the business layer uses to fan events out to
// connected clients. Delivery is best effort; Publish never reports
// per-connection failures.
type EventPublisher interface {
	Publish(event domain.Event) error
}
