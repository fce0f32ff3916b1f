package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/core/domain"
)

// seedTestUser inserts a user row directly. Profiles are synced from the
// identity provider in production, so the repository has no Create method.
func seedTestUser(t *testing.T, ctx context.Context) uuid.UUID {
	t.Helper()

	id := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", uuid.NewString())
	_, err := testPool.Exec(ctx,
		`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)`,
		id, email, "Test User",
	)
	require.NoError(t, err)
	return id
}

func seedTestProject(t *testing.T, ctx context.Context, ownerID uuid.UUID) *domain.Project {
	t.Helper()

	project, err := domain.NewProject("Test Project", "seeded for tests", "", ownerID)
	require.NoError(t, err)
	require.NoError(t, NewProjectRepository(testPool).Create(ctx, project))
	return project
}

func seedTestCategory(t *testing.T, ctx context.Context, projectID, ownerID uuid.UUID, name string, position int) *domain.Category {
	t.Helper()

	category, err := domain.NewCategory(name, "", position, projectID, ownerID)
	require.NoError(t, err)
	require.NoError(t, NewCategoryRepository(testPool).Create(ctx, category))
	return category
}

func seedTestTask(t *testing.T, ctx context.Context, title string, projectID, creatorID uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, "", domain.PriorityMedium, projectID, creatorID)
	require.NoError(t, err)
	require.NoError(t, NewTaskRepository(testPool).Create(ctx, task))
	return task
}
