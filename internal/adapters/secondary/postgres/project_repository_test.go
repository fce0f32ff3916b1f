package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
)

func TestProjectRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(testPool)

	ownerID := seedTestUser(t, ctx)

	project, err := domain.NewProject("Website relaunch", "Q4 marketing push", "#FF5733", ownerID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, project))

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, "Website relaunch", got.Name)
	assert.Equal(t, "Q4 marketing push", got.Description)
	assert.Equal(t, domain.ProjectActive, got.Status)
	assert.Equal(t, "#FF5733", got.Color)
	assert.Equal(t, ownerID, got.OwnerID)
	assert.False(t, got.IsDeleted)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestProjectRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	otherID := seedTestUser(t, ctx)

	first := seedTestProject(t, ctx, ownerID)
	second := seedTestProject(t, ctx, ownerID)
	seedTestProject(t, ctx, otherID)

	projects, err := repo.ListByOwner(ctx, ownerID, 50, 0)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Newest first, and only the owner's projects.
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)

	projects, err = repo.ListByOwner(ctx, ownerID, 1, 1)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, first.ID, projects[0].ID)
}

func TestProjectRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	project.Name = "Renamed project"
	require.NoError(t, project.ChangeStatus(domain.ProjectOnHold))
	require.NoError(t, repo.Update(ctx, project))

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed project", got.Name)
	assert.Equal(t, domain.ProjectOnHold, got.Status)
	require.NotNil(t, got.UpdatedAt)

	ghost := *project
	ghost.ID = uuid.New()
	err = repo.Update(ctx, &ghost)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestProjectRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	strangerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	// Only the owner may delete.
	err := repo.SoftDelete(ctx, project.ID, strangerID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	require.NoError(t, repo.SoftDelete(ctx, project.ID, ownerID))

	_, err = repo.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	err = repo.SoftDelete(ctx, project.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}
