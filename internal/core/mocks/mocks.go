package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// MockTaskRepository is a mock implementation of ports.TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{}
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) SoftDelete(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskRepository) HardDelete(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Count(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskStats), args.Error(1)
}

func (m *MockTaskRepository) BulkComplete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, completed bool) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs, completed)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

func (m *MockTaskRepository) BulkSetStatus(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, status domain.TaskStatus) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs, status)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

func (m *MockTaskRepository) BulkSetPriority(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, priority domain.TaskPriority) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs, priority)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

func (m *MockTaskRepository) BulkSetCategory(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, categoryID *uuid.UUID) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs, categoryID)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

func (m *MockTaskRepository) BulkSetDueDate(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, dueDate *time.Time) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs, dueDate)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

func (m *MockTaskRepository) BulkSoftDelete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) (ports.BulkResult, error) {
	args := m.Called(ctx, userID, taskIDs)
	return args.Get(0).(ports.BulkResult), args.Error(1)
}

// MockProjectRepository is a mock implementation of ports.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{}
}

func (m *MockProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Project, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) SoftDelete(ctx context.Context, projectID, ownerID uuid.UUID) error {
	args := m.Called(ctx, projectID, ownerID)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of ports.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, categoryID, ownerID uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, categoryID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListByProject(ctx context.Context, projectID, ownerID uuid.UUID) ([]*domain.Category, error) {
	args := m.Called(ctx, projectID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, categoryID, ownerID uuid.UUID) error {
	args := m.Called(ctx, categoryID, ownerID)
	return args.Error(0)
}

func (m *MockCategoryRepository) Reorder(ctx context.Context, ownerID, projectID uuid.UUID, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, ownerID, projectID, orderedIDs)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of ports.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Record(ctx context.Context, activity *domain.UserActivity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserActivity, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserActivity), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
