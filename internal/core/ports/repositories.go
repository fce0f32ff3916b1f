package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
)

// TaskFilter narrows task listings. Nil fields are ignored.
type TaskFilter struct {
	ProjectID  *uuid.UUID
	CategoryID *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	Completed  *bool
	Search     string
	Limit      int
	Offset     int
}

// BulkResult reports the outcome of a single-statement bulk mutation.
type BulkResult struct {
	Requested int
	Affected  int64
}

// TaskRepository persists tasks. All queries are scoped to the owning user
// and exclude soft-deleted rows unless stated otherwise.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	SoftDelete(ctx context.Context, taskID, userID uuid.UUID) error
	HardDelete(ctx context.Context, taskID, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)
	Count(ctx context.Context, userID uuid.UUID, filter TaskFilter) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error)

	BulkComplete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, completed bool) (BulkResult, error)
	BulkSetStatus(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, status domain.TaskStatus) (BulkResult, error)
	BulkSetPriority(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, priority domain.TaskPriority) (BulkResult, error)
	BulkSetCategory(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, categoryID *uuid.UUID) (BulkResult, error)
	BulkSetDueDate(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, dueDate *time.Time) (BulkResult, error)
	BulkSoftDelete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) (BulkResult, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	SoftDelete(ctx context.Context, projectID, ownerID uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, categoryID, ownerID uuid.UUID) (*domain.Category, error)
	ListByProject(ctx context.Context, projectID, ownerID uuid.UUID) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, categoryID, ownerID uuid.UUID) error
	Reorder(ctx context.Context, ownerID uuid.UUID, projectID uuid.UUID, orderedIDs []uuid.UUID) error
}

// ActivityRepository records and reads the mutation audit trail.
type ActivityRepository interface {
	Record(ctx context.Context, activity *domain.UserActivity) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserActivity, error)
}

// UserRepository reads identity-provider-synced user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	TouchLastActive(ctx context.Context, userID uuid.UUID) error
}
