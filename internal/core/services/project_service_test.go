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

func newProjectService() (ports.ProjectService, *mocks.MockProjectRepository) {
	projectRepo := mocks.NewMockProjectRepository()
	activityRepo := mocks.NewMockActivityRepository()
	activityRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := services.NewProjectService(projectRepo, activityRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, projectRepo
}

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		project, err := svc.CreateProject(ctx, ports.CreateProjectParams{
			Name:    "Website Redesign",
			Color:   "#4F46E5",
			OwnerID: ownerID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Website Redesign", project.Name)
		assert.Equal(t, domain.ProjectActive, project.Status)
	})

	t.Run("validation error", func(t *testing.T) {
		svc, repo := newProjectService()

		project, err := svc.CreateProject(ctx, ports.CreateProjectParams{OwnerID: ownerID})

		assert.Nil(t, project)
		assert.ErrorIs(t, err, domain.ErrNameRequired)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestProjectService_GetProject(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	projectID := uuid.New()

	t.Run("owner can read", func(t *testing.T) {
		svc, repo := newProjectService()
		expected := &domain.Project{ID: projectID, OwnerID: ownerID}
		repo.On("GetByID", ctx, projectID).Return(expected, nil)

		project, err := svc.GetProject(ctx, projectID, ownerID)

		require.NoError(t, err)
		assert.Equal(t, expected, project)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("GetByID", ctx, projectID).Return(&domain.Project{ID: projectID, OwnerID: uuid.New()}, nil)

		project, err := svc.GetProject(ctx, projectID, ownerID)

		assert.Nil(t, project)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	projectID := uuid.New()

	t.Run("updates provided fields", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("GetByID", ctx, projectID).
			Return(&domain.Project{ID: projectID, Name: "Old", Color: "#111111", OwnerID: ownerID, Status: domain.ProjectActive}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		name := "New"
		status := domain.ProjectOnHold
		project, err := svc.UpdateProject(ctx, ports.UpdateProjectParams{
			ProjectID: projectID,
			Name:      &name,
			Status:    &status,
			ActorID:   ownerID,
		})

		require.NoError(t, err)
		assert.Equal(t, "New", project.Name)
		assert.Equal(t, domain.ProjectOnHold, project.Status)
		assert.Equal(t, "#111111", project.Color)
	})

	t.Run("rejects invalid color", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("GetByID", ctx, projectID).
			Return(&domain.Project{ID: projectID, OwnerID: ownerID}, nil)

		color := "blue"
		project, err := svc.UpdateProject(ctx, ports.UpdateProjectParams{
			ProjectID: projectID,
			Color:     &color,
			ActorID:   ownerID,
		})

		assert.Nil(t, project)
		assert.ErrorIs(t, err, domain.ErrInvalidColor)
		repo.AssertNotCalled(t, "Update")
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	projectID := uuid.New()

	t.Run("owner can delete", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("GetByID", ctx, projectID).Return(&domain.Project{ID: projectID, OwnerID: ownerID}, nil)
		repo.On("SoftDelete", ctx, projectID, ownerID).Return(nil)

		require.NoError(t, svc.DeleteProject(ctx, projectID, ownerID))
		repo.AssertExpectations(t)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		svc, repo := newProjectService()
		repo.On("GetByID", ctx, projectID).Return(&domain.Project{ID: projectID, OwnerID: uuid.New()}, nil)

		err := svc.DeleteProject(ctx, projectID, ownerID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "SoftDelete")
	})
}
