package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
)

func TestCategoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	strangerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	category, err := domain.NewCategory("In review", "#FBBF24", 3, project.ID, ownerID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, category))

	got, err := repo.GetByID(ctx, category.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "In review", got.Name)
	assert.Equal(t, "#FBBF24", got.Color)
	assert.Equal(t, 3, got.Position)
	assert.Equal(t, project.ID, got.ProjectID)

	// Categories are private to their owner.
	_, err = repo.GetByID(ctx, category.ID, strangerID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestCategoryRepository_ListByProject(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	// Seeded out of order on purpose.
	second := seedTestCategory(t, ctx, project.ID, ownerID, "Doing", 1)
	third := seedTestCategory(t, ctx, project.ID, ownerID, "Done", 2)
	first := seedTestCategory(t, ctx, project.ID, ownerID, "Todo", 0)

	categories, err := repo.ListByProject(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, first.ID, categories[0].ID)
	assert.Equal(t, second.ID, categories[1].ID)
	assert.Equal(t, third.ID, categories[2].ID)
}

func TestCategoryRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)
	taskRepo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	strangerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	category := seedTestCategory(t, ctx, project.ID, ownerID, "Blocked", 0)

	task := seedTestTask(t, ctx, "Waiting on vendor", project.ID, ownerID)
	task.CategoryID = &category.ID
	require.NoError(t, taskRepo.Update(ctx, task))

	category.Name = "On hold"
	now := time.Now().UTC()
	category.UpdatedAt = &now
	require.NoError(t, repo.Update(ctx, category))

	got, err := repo.GetByID(ctx, category.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "On hold", got.Name)

	// Only the owner may delete.
	err = repo.Delete(ctx, category.ID, strangerID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	require.NoError(t, repo.Delete(ctx, category.ID, ownerID))
	_, err = repo.GetByID(ctx, category.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	// Deleting the category detaches its tasks instead of removing them.
	got2, err := taskRepo.GetByID(ctx, task.ID, ownerID)
	require.NoError(t, err)
	assert.Nil(t, got2.CategoryID)
}

func TestCategoryRepository_Reorder(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	a := seedTestCategory(t, ctx, project.ID, ownerID, "A", 0)
	b := seedTestCategory(t, ctx, project.ID, ownerID, "B", 1)
	c := seedTestCategory(t, ctx, project.ID, ownerID, "C", 2)

	require.NoError(t, repo.Reorder(ctx, ownerID, project.ID, []uuid.UUID{c.ID, a.ID, b.ID}))

	categories, err := repo.ListByProject(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, c.ID, categories[0].ID)
	assert.Equal(t, a.ID, categories[1].ID)
	assert.Equal(t, b.ID, categories[2].ID)
}

func TestCategoryRepository_ReorderUnknownIDRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	a := seedTestCategory(t, ctx, project.ID, ownerID, "A", 0)
	b := seedTestCategory(t, ctx, project.ID, ownerID, "B", 1)

	err := repo.Reorder(ctx, ownerID, project.ID, []uuid.UUID{b.ID, uuid.New(), a.ID})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	// Nothing moved.
	categories, err := repo.ListByProject(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, a.ID, categories[0].ID)
	assert.Equal(t, b.ID, categories[1].ID)
}
