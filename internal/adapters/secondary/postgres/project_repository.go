package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// ProjectRepository is the secondary adapter for project persistence.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new project repository.
func NewProjectRepository(pool *pgxpool.Pool) ports.ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, name, description, status, color, owner_id,
	is_deleted, deleted_at, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Color, &p.OwnerID,
		&p.IsDeleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists a new project entity.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, name, description, status, color, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Status,
		project.Color, project.OwnerID, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by its ID. Soft-deleted rows are excluded.
func (r *ProjectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND NOT is_deleted
	`

	project, err := scanProject(GetDBTX(ctx, r.pool).QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListByOwner retrieves the owner's projects, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Update persists changes to an existing project entity.
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, color = $5, updated_at = $6
		WHERE id = $1 AND NOT is_deleted
	`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Status,
		project.Color, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// SoftDelete flags a project deleted without removing the row.
func (r *ProjectRepository) SoftDelete(ctx context.Context, projectID, ownerID uuid.UUID) error {
	query := `
		UPDATE projects
		SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND NOT is_deleted
	`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, projectID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to soft delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}
