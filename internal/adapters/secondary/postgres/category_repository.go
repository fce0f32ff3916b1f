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

// CategoryRepository is the secondary adapter for category persistence.
type CategoryRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(pool *pgxpool.Pool) ports.CategoryRepository {
	return &CategoryRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

const categoryColumns = `id, name, color, position, project_id, owner_id, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Color, &c.Position, &c.ProjectID, &c.OwnerID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new category entity.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, color, position, project_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		category.ID, category.Name, category.Color, category.Position,
		category.ProjectID, category.OwnerID, category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category owned by the given user.
func (r *CategoryRepository) GetByID(ctx context.Context, categoryID, ownerID uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND owner_id = $2
	`

	category, err := scanCategory(GetDBTX(ctx, r.pool).QueryRow(ctx, query, categoryID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListByProject retrieves a project's categories in board order.
func (r *CategoryRepository) ListByProject(ctx context.Context, projectID, ownerID uuid.UUID) ([]*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE project_id = $1 AND owner_id = $2
		ORDER BY position ASC, created_at ASC
	`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, projectID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update persists changes to an existing category entity.
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, position = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		category.ID, category.Name, category.Color, category.Position,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. Tasks keep their rows; the foreign key
// clears their category reference.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID, ownerID uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1 AND owner_id = $2`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, categoryID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// Reorder rewrites the positions of a project's categories to match the
// given order. The whole reorder is one transaction so a half-applied
// order is never visible.
func (r *CategoryRepository) Reorder(ctx context.Context, ownerID uuid.UUID, projectID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE categories
			SET position = $4, updated_at = now()
			WHERE id = $1 AND owner_id = $2 AND project_id = $3
		`
		for position, categoryID := range orderedIDs {
			tag, err := tx.Exec(ctx, query, categoryID, ownerID, projectID, position)
			if err != nil {
				return fmt.Errorf("failed to reposition category: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrCategoryNotFound
			}
		}
		return nil
	})
}
