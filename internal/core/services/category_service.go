package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// CategoryService implements business logic for category management
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	projectRepo  ports.ProjectRepository
	logger       *slog.Logger
}

var _ ports.CategoryService = (*CategoryService)(nil)

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo ports.CategoryRepository,
	projectRepo ports.ProjectRepository,
	logger *slog.Logger,
) ports.CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
		logger:       logger.With("component", "category_service"),
	}
}

// CreateCategory adds a category to a project the actor owns
func (s *CategoryService) CreateCategory(ctx context.Context, params ports.CreateCategoryParams) (*domain.Category, error) {
	project, err := s.projectRepo.GetByID(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != params.ActorID {
		return nil, apperrors.ErrForbidden
	}

	category, err := domain.NewCategory(params.Name, params.Color, params.Position, params.ProjectID, params.ActorID)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory retrieves a category the viewer owns
func (s *CategoryService) GetCategory(ctx context.Context, categoryID, viewerID uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, categoryID, viewerID)
}

// ListCategories returns a project's categories ordered by position
func (s *CategoryService) ListCategories(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Category, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != viewerID {
		return nil, apperrors.ErrForbidden
	}
	return s.categoryRepo.ListByProject(ctx, projectID, viewerID)
}

// UpdateCategory applies a partial update to a category
func (s *CategoryService) UpdateCategory(ctx context.Context, params ports.UpdateCategoryParams) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, params.CategoryID, params.ActorID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(*params.Name) > domain.MaxCategoryNameLength {
			return nil, domain.ErrNameTooLong
		}
		category.Name = *params.Name
	}
	if params.Color != nil {
		if !domain.IsValidColor(*params.Color) {
			return nil, domain.ErrInvalidColor
		}
		category.Color = *params.Color
	}
	if params.Position != nil {
		category.Position = *params.Position
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category; its tasks keep existing uncategorized
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID, actorID uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID, actorID); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, categoryID, actorID)
}

// ReorderCategories persists a new position order and returns the result
func (s *CategoryService) ReorderCategories(ctx context.Context, projectID, actorID uuid.UUID, orderedIDs []uuid.UUID) ([]*domain.Category, error) {
	if len(orderedIDs) == 0 {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "ordered category IDs are required")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actorID {
		return nil, apperrors.ErrForbidden
	}

	if err := s.categoryRepo.Reorder(ctx, actorID, projectID, orderedIDs); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByProject(ctx, projectID, actorID)
}
