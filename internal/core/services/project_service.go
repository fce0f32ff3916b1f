package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// ProjectService implements business logic for project management
type ProjectService struct {
	projectRepo  ports.ProjectRepository
	activityRepo ports.ActivityRepository
	logger       *slog.Logger
}

var _ ports.ProjectService = (*ProjectService)(nil)

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo ports.ProjectRepository,
	activityRepo ports.ActivityRepository,
	logger *slog.Logger,
) ports.ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		activityRepo: activityRepo,
		logger:       logger.With("component", "project_service"),
	}
}

// CreateProject handles the use case for creating a new project
func (s *ProjectService) CreateProject(ctx context.Context, params ports.CreateProjectParams) (*domain.Project, error) {
	project, err := domain.NewProject(params.Name, params.Description, params.Color, params.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	go s.recordActivity(params.OwnerID, "project_created", project.ID, project.Name)

	return project, nil
}

// GetProject retrieves a project the viewer owns
func (s *ProjectService) GetProject(ctx context.Context, projectID, viewerID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != viewerID {
		return nil, apperrors.ErrForbidden
	}
	return project, nil
}

// ListProjects returns the owner's projects
func (s *ProjectService) ListProjects(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID, limit, offset)
}

// UpdateProject applies a partial update to a project
func (s *ProjectService) UpdateProject(ctx context.Context, params ports.UpdateProjectParams) (*domain.Project, error) {
	project, err := s.GetProject(ctx, params.ProjectID, params.ActorID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(*params.Name) > domain.MaxProjectNameLength {
			return nil, domain.ErrNameTooLong
		}
		project.Name = *params.Name
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	if params.Color != nil {
		if !domain.IsValidColor(*params.Color) {
			return nil, domain.ErrInvalidColor
		}
		project.Color = *params.Color
	}
	if params.Status != nil {
		if err := project.ChangeStatus(*params.Status); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	go s.recordActivity(params.ActorID, "project_updated", project.ID, project.Name)

	return project, nil
}

// DeleteProject soft deletes a project the actor owns
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uuid.UUID) error {
	project, err := s.GetProject(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.SoftDelete(ctx, projectID, actorID); err != nil {
		return err
	}

	go s.recordActivity(actorID, "project_deleted", project.ID, project.Name)

	return nil
}

func (s *ProjectService) recordActivity(actorID uuid.UUID, action string, projectID uuid.UUID, name string) {
	activity := &domain.UserActivity{
		ID:         uuid.New(),
		UserID:     actorID,
		Action:     action,
		EntityType: "project",
		EntityID:   &projectID,
		Details:    map[string]interface{}{"name": name},
		CreatedAt:  nowUTC(),
	}
	if err := s.activityRepo.Record(context.Background(), activity); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "project_id", projectID, "error", err)
	}
}
