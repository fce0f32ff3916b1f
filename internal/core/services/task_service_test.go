package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/mocks"
	"github.com/avela/taskboard-backend/internal/core/ports"
	"github.com/avela/taskboard-backend/internal/core/services"
)

type taskServiceMocks struct {
	taskRepo     *mocks.MockTaskRepository
	projectRepo  *mocks.MockProjectRepository
	categoryRepo *mocks.MockCategoryRepository
	activityRepo *mocks.MockActivityRepository
	publisher    *mocks.MockEventPublisher
}

func newTaskService() (ports.TaskService, taskServiceMocks) {
	m := taskServiceMocks{
		taskRepo:     mocks.NewMockTaskRepository(),
		projectRepo:  mocks.NewMockProjectRepository(),
		categoryRepo: mocks.NewMockCategoryRepository(),
		activityRepo: mocks.NewMockActivityRepository(),
		publisher:    mocks.NewMockEventPublisher(),
	}
	// Fan-out and audit run detached from the request, so expectations
	// on them are optional in every test.
	m.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	m.activityRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := services.NewTaskService(
		m.taskRepo, m.projectRepo, m.categoryRepo, m.activityRepo, m.publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, m
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	projectID := uuid.New()

	project := &domain.Project{ID: projectID, Name: "Board", OwnerID: actorID}

	t.Run("success", func(t *testing.T) {
		svc, m := newTaskService()
		m.projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
		m.taskRepo.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title:     "Write release notes",
			Priority:  domain.PriorityHigh,
			ProjectID: projectID,
			ActorID:   actorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Write release notes", task.Title)
		assert.Equal(t, domain.StatusTodo, task.Status)
		assert.Equal(t, actorID, task.CreatorID)
		m.taskRepo.AssertExpectations(t)
	})

	t.Run("forbidden when actor does not own the project", func(t *testing.T) {
		svc, m := newTaskService()
		other := &domain.Project{ID: projectID, OwnerID: uuid.New()}
		m.projectRepo.On("GetByID", ctx, projectID).Return(other, nil)

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title:     "Nope",
			ProjectID: projectID,
			ActorID:   actorID,
		})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		m.taskRepo.AssertNotCalled(t, "Create")
	})

	t.Run("project not found", func(t *testing.T) {
		svc, m := newTaskService()
		m.projectRepo.On("GetByID", ctx, projectID).Return(nil, apperrors.ErrProjectNotFound)

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title:     "Orphan",
			ProjectID: projectID,
			ActorID:   actorID,
		})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
	})

	t.Run("validation error for empty title", func(t *testing.T) {
		svc, m := newTaskService()
		m.projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title:     "",
			ProjectID: projectID,
			ActorID:   actorID,
		})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
		m.taskRepo.AssertNotCalled(t, "Create")
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		svc, m := newTaskService()
		categoryID := uuid.New()
		m.projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
		m.categoryRepo.On("GetByID", ctx, categoryID, actorID).Return(nil, apperrors.ErrCategoryNotFound)

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title:      "Categorized",
			ProjectID:  projectID,
			CategoryID: &categoryID,
			ActorID:    actorID,
		})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	taskID := uuid.New()

	existing := func() *domain.Task {
		return &domain.Task{
			ID:        taskID,
			Title:     "Old title",
			Status:    domain.StatusTodo,
			Priority:  domain.PriorityMedium,
			ProjectID: uuid.New(),
			CreatorID: actorID,
			Version:   1,
		}
	}

	t.Run("updates provided fields only", func(t *testing.T) {
		svc, m := newTaskService()
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(existing(), nil)
		m.taskRepo.On("Update", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

		newTitle := "New title"
		newStatus := domain.StatusInProgress
		task, err := svc.UpdateTask(ctx, ports.UpdateTaskParams{
			TaskID:  taskID,
			Title:   &newTitle,
			Status:  &newStatus,
			ActorID: actorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "New title", task.Title)
		assert.Equal(t, domain.StatusInProgress, task.Status)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, 2, task.Version)
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		svc, m := newTaskService()
		done := existing()
		done.Status = domain.StatusDone
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(done, nil)

		blocked := domain.StatusBlocked
		task, err := svc.UpdateTask(ctx, ports.UpdateTaskParams{
			TaskID:  taskID,
			Status:  &blocked,
			ActorID: actorID,
		})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		m.taskRepo.AssertNotCalled(t, "Update")
	})

	t.Run("task not found", func(t *testing.T) {
		svc, m := newTaskService()
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(nil, apperrors.ErrTaskNotFound)

		task, err := svc.UpdateTask(ctx, ports.UpdateTaskParams{TaskID: taskID, ActorID: actorID})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})
}

func TestTaskService_CompleteTask(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	taskID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, m := newTaskService()
		task := &domain.Task{ID: taskID, Title: "Finish", Status: domain.StatusInProgress, ProjectID: uuid.New()}
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(task, nil)
		m.taskRepo.On("Update", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

		completed, err := svc.CompleteTask(ctx, taskID, actorID)

		require.NoError(t, err)
		assert.True(t, completed.Completed)
		assert.Equal(t, domain.StatusDone, completed.Status)
	})

	t.Run("already completed", func(t *testing.T) {
		svc, m := newTaskService()
		task := &domain.Task{ID: taskID, Title: "Done", Status: domain.StatusDone, Completed: true}
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(task, nil)

		completed, err := svc.CompleteTask(ctx, taskID, actorID)

		assert.Nil(t, completed)
		assert.ErrorIs(t, err, domain.ErrTaskAlreadyCompleted)
		m.taskRepo.AssertNotCalled(t, "Update")
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	taskID := uuid.New()
	task := &domain.Task{ID: taskID, Title: "Doomed", ProjectID: uuid.New()}

	t.Run("soft delete by default", func(t *testing.T) {
		svc, m := newTaskService()
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(task, nil)
		m.taskRepo.On("SoftDelete", ctx, taskID, actorID).Return(nil)

		err := svc.DeleteTask(ctx, ports.DeleteTaskParams{TaskID: taskID, ActorID: actorID})

		require.NoError(t, err)
		m.taskRepo.AssertNotCalled(t, "HardDelete")
	})

	t.Run("hard delete when requested", func(t *testing.T) {
		svc, m := newTaskService()
		m.taskRepo.On("GetByID", ctx, taskID, actorID).Return(task, nil)
		m.taskRepo.On("HardDelete", ctx, taskID, actorID).Return(nil)

		err := svc.DeleteTask(ctx, ports.DeleteTaskParams{TaskID: taskID, ActorID: actorID, Hard: true})

		require.NoError(t, err)
		m.taskRepo.AssertNotCalled(t, "SoftDelete")
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	viewerID := uuid.New()

	svc, m := newTaskService()
	expected := []*domain.Task{
		{ID: uuid.New(), Title: "One"},
		{ID: uuid.New(), Title: "Two"},
	}
	filter := ports.TaskFilter{Limit: 20, Offset: 0}
	m.taskRepo.On("List", ctx, viewerID, filter).Return(expected, nil)
	m.taskRepo.On("Count", ctx, viewerID, filter).Return(int64(2), nil)

	page, err := svc.ListTasks(ctx, ports.ListTasksParams{ViewerID: viewerID, Filter: filter})

	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 20, page.Limit)
}

func TestTaskService_GetStats(t *testing.T) {
	ctx := context.Background()
	viewerID := uuid.New()

	svc, m := newTaskService()
	expected := &domain.TaskStats{Total: 5, Completed: 2}
	m.taskRepo.On("Stats", ctx, viewerID).Return(expected, nil)

	stats, err := svc.GetStats(ctx, viewerID)

	require.NoError(t, err)
	assert.Equal(t, expected, stats)
}
