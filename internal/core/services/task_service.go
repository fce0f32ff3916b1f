package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// TaskService implements business logic for task management
type TaskService struct {
	taskRepo     ports.TaskRepository
	projectRepo  ports.ProjectRepository
	categoryRepo ports.CategoryRepository
	activityRepo ports.ActivityRepository
	publisher    ports.EventPublisher
	logger       *slog.Logger
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo ports.TaskRepository,
	projectRepo ports.ProjectRepository,
	categoryRepo ports.CategoryRepository,
	activityRepo ports.ActivityRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ports.TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		categoryRepo: categoryRepo,
		activityRepo: activityRepo,
		publisher:    publisher,
		logger:       logger.With("component", "task_service"),
	}
}

// CreateTask handles the use case for creating a new task
func (s *TaskService) CreateTask(ctx context.Context, params ports.CreateTaskParams) (*domain.Task, error) {
	// 1. The target project must exist and belong to the actor
	project, err := s.projectRepo.GetByID(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != params.ActorID {
		return nil, apperrors.ErrForbidden
	}

	// 2. Create domain entity with validation
	task, err := domain.NewTask(params.Title, params.Description, params.Priority, params.ProjectID, params.ActorID)
	if err != nil {
		return nil, err
	}
	if err := task.SetTags(params.Tags); err != nil {
		return nil, err
	}
	if params.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *params.CategoryID, params.ActorID); err != nil {
			return nil, err
		}
		task.CategoryID = params.CategoryID
	}
	task.AssigneeID = params.AssigneeID
	task.DueDate = params.DueDate

	// 3. Persist the task
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	// 4. Fan out and audit (async, mutation already committed)
	go s.afterMutation(domain.EventTaskCreated, task, params.ActorID, "task_created")

	return task, nil
}

// GetTask retrieves a single task visible to the viewer
func (s *TaskService) GetTask(ctx context.Context, taskID, viewerID uuid.UUID) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID, viewerID)
}

// UpdateTask applies a partial update to a task
func (s *TaskService) UpdateTask(ctx context.Context, params ports.UpdateTaskParams) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, params.TaskID, params.ActorID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, domain.ErrTitleRequired
		}
		if len(*params.Title) > domain.MaxTitleLength {
			return nil, domain.ErrTitleTooLong
		}
		task.Title = *params.Title
	}
	if params.Description != nil {
		if len(*params.Description) > domain.MaxDescriptionLength {
			return nil, domain.ErrDescriptionTooLong
		}
		task.Description = *params.Description
	}
	if params.Priority != nil {
		if !domain.IsValidPriority(*params.Priority) {
			return nil, domain.ErrInvalidPriority
		}
		task.Priority = *params.Priority
	}
	if params.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *params.CategoryID, params.ActorID); err != nil {
			return nil, err
		}
		task.CategoryID = params.CategoryID
	}
	if params.AssigneeID != nil {
		task.AssigneeID = params.AssigneeID
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.Position != nil {
		task.Position = *params.Position
	}
	if params.Tags != nil {
		if err := task.SetTags(params.Tags); err != nil {
			return nil, err
		}
	}
	// Status goes last: the domain validates the transition and keeps
	// completion flags in sync.
	kind, action := domain.EventTaskUpdated, "task_updated"
	if params.Status != nil {
		wasCompleted := task.Completed
		if err := task.ChangeStatus(*params.Status); err != nil {
			return nil, err
		}
		if wasCompleted && !task.Completed {
			kind, action = domain.EventTaskUncompleted, "task_uncompleted"
		}
	} else {
		task.Touch()
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	go s.afterMutation(kind, task, params.ActorID, action)

	return task, nil
}

// DeleteTask soft deletes a task, or hard deletes when requested
func (s *TaskService) DeleteTask(ctx context.Context, params ports.DeleteTaskParams) error {
	task, err := s.taskRepo.GetByID(ctx, params.TaskID, params.ActorID)
	if err != nil {
		return err
	}

	if params.Hard {
		err = s.taskRepo.HardDelete(ctx, params.TaskID, params.ActorID)
	} else {
		err = s.taskRepo.SoftDelete(ctx, params.TaskID, params.ActorID)
	}
	if err != nil {
		return err
	}

	go s.afterMutation(domain.EventTaskDeleted, task, params.ActorID, "task_deleted")

	return nil
}

// CompleteTask marks a task done
func (s *TaskService) CompleteTask(ctx context.Context, taskID, actorID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	if err := task.Complete(); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	go s.afterMutation(domain.EventTaskCompleted, task, actorID, "task_completed")

	return task, nil
}

// ListTasks returns one page of the viewer's tasks
func (s *TaskService) ListTasks(ctx context.Context, params ports.ListTasksParams) (*ports.TaskPage, error) {
	tasks, err := s.taskRepo.List(ctx, params.ViewerID, params.Filter)
	if err != nil {
		return nil, err
	}
	total, err := s.taskRepo.Count(ctx, params.ViewerID, params.Filter)
	if err != nil {
		return nil, err
	}

	return &ports.TaskPage{
		Tasks:  tasks,
		Total:  total,
		Limit:  params.Filter.Limit,
		Offset: params.Filter.Offset,
	}, nil
}

// GetStats aggregates task counts for the viewer
func (s *TaskService) GetStats(ctx context.Context, viewerID uuid.UUID) (*domain.TaskStats, error) {
	return s.taskRepo.Stats(ctx, viewerID)
}

// afterMutation publishes the real-time event and records the audit row.
// It runs detached from the request: the mutation is already committed,
// so neither step may affect the caller's result.
func (s *TaskService) afterMutation(kind domain.EventKind, task *domain.Task, actorID uuid.UUID, action string) {
	event := domain.NewTaskEvent(kind, task, actorID)
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn("failed to publish event", "event", kind, "task_id", task.ID, "error", err)
	}

	activity := &domain.UserActivity{
		ID:         uuid.New(),
		UserID:     actorID,
		Action:     action,
		EntityType: "task",
		EntityID:   &task.ID,
		Details:    map[string]interface{}{"project_id": task.ProjectID.String(), "title": task.Title},
		CreatedAt:  event.Timestamp,
	}
	if err := s.activityRepo.Record(context.Background(), activity); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "task_id", task.ID, "error", err)
	}
}
