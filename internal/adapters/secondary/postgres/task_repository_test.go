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
	"github.com/avela/taskboard-backend/internal/core/ports"
)

func TestTaskRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	assigneeID := seedTestUser(t, ctx)
	strangerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	task, err := domain.NewTask("Write release notes", "v2.0 highlights", domain.PriorityHigh, project.ID, ownerID)
	require.NoError(t, err)
	task.AssigneeID = &assigneeID
	require.NoError(t, task.SetTags([]string{"docs", "release"}))

	require.NoError(t, repo.Create(ctx, task))

	// 1. The creator sees the full row.
	got, err := repo.GetByID(ctx, task.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "Write release notes", got.Title)
	assert.Equal(t, "v2.0 highlights", got.Description)
	assert.Equal(t, domain.StatusTodo, got.Status)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, project.ID, got.ProjectID)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, assigneeID, *got.AssigneeID)
	assert.Equal(t, []string{"docs", "release"}, got.Tags)
	assert.Equal(t, 1, got.Version)
	assert.False(t, got.Completed)
	assert.WithinDuration(t, task.CreatedAt, got.CreatedAt, time.Second)

	// 2. The assignee sees it too.
	got, err = repo.GetByID(ctx, task.ID, assigneeID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// 3. Anyone else does not.
	_, err = repo.GetByID(ctx, task.ID, strangerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	// 4. Unknown IDs map to the same sentinel.
	_, err = repo.GetByID(ctx, uuid.New(), ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestTaskRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	task := seedTestTask(t, ctx, "Draft proposal", project.ID, ownerID)

	task.Title = "Draft proposal v2"
	task.Description = "with budget section"
	require.NoError(t, task.ChangeStatus(domain.StatusInProgress))

	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.GetByID(ctx, task.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Draft proposal v2", got.Title)
	assert.Equal(t, "with budget section", got.Description)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.UpdatedAt)

	// Updating a row that no longer exists reports not found.
	ghost := *task
	ghost.ID = uuid.New()
	err = repo.Update(ctx, &ghost)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestTaskRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	strangerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	task := seedTestTask(t, ctx, "Obsolete work", project.ID, ownerID)

	// Only the creator may delete.
	err := repo.SoftDelete(ctx, task.ID, strangerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	require.NoError(t, repo.SoftDelete(ctx, task.ID, ownerID))

	// Deleted rows disappear from reads and repeat deletes.
	_, err = repo.GetByID(ctx, task.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	err = repo.SoftDelete(ctx, task.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	// The row itself is still there, flagged.
	var isDeleted bool
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT is_deleted FROM tasks WHERE id = $1`, task.ID).Scan(&isDeleted))
	assert.True(t, isDeleted)
}

func TestTaskRepository_HardDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	task := seedTestTask(t, ctx, "Purge me", project.ID, ownerID)

	require.NoError(t, repo.HardDelete(ctx, task.ID, ownerID))

	var count int
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE id = $1`, task.ID).Scan(&count))
	assert.Zero(t, count)

	err := repo.HardDelete(ctx, task.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestTaskRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	otherID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	otherProject := seedTestProject(t, ctx, otherID)
	category := seedTestCategory(t, ctx, project.ID, ownerID, "Backend", 0)

	mk := func(title string, priority domain.TaskPriority, status domain.TaskStatus, position int) *domain.Task {
		task, err := domain.NewTask(title, "", priority, project.ID, ownerID)
		require.NoError(t, err)
		task.Position = position
		require.NoError(t, repo.Create(ctx, task))
		if status != domain.StatusTodo {
			require.NoError(t, task.ChangeStatus(status))
			require.NoError(t, repo.Update(ctx, task))
		}
		return task
	}

	mk("Fix login redirect", domain.PriorityHigh, domain.StatusInProgress, 0)
	inCategory := mk("Index the audit table", domain.PriorityMedium, domain.StatusTodo, 1)
	mk("Ship the importer", domain.PriorityLow, domain.StatusDone, 2)
	deleted := mk("Abandoned spike", domain.PriorityLow, domain.StatusTodo, 3)

	inCategory.CategoryID = &category.ID
	require.NoError(t, repo.Update(ctx, inCategory))
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID, ownerID))

	// A task belonging to someone else must never leak in.
	seedTestTask(t, ctx, "Fix login redirect elsewhere", otherProject.ID, otherID)

	base := ports.TaskFilter{Limit: 50}

	// 1. Unfiltered: the three live tasks, in board order.
	tasks, err := repo.List(ctx, ownerID, base)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Fix login redirect", tasks[0].Title)
	assert.Equal(t, "Index the audit table", tasks[1].Title)
	assert.Equal(t, "Ship the importer", tasks[2].Title)

	count, err := repo.Count(ctx, ownerID, base)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// 2. Status filter.
	status := domain.StatusInProgress
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{Status: &status, Limit: 50})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Fix login redirect", tasks[0].Title)

	// 3. Priority filter.
	priority := domain.PriorityHigh
	count, err = repo.Count(ctx, ownerID, ports.TaskFilter{Priority: &priority, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// 4. Completed filter.
	completed := true
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{Completed: &completed, Limit: 50})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship the importer", tasks[0].Title)

	// 5. Category filter.
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{CategoryID: &category.ID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, inCategory.ID, tasks[0].ID)

	// 6. Case-insensitive search over title and description.
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{Search: "LOGIN", Limit: 50})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Fix login redirect", tasks[0].Title)

	// 7. Pagination.
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	// 8. Project filter sees nothing in a project with no visible tasks.
	tasks, err = repo.List(ctx, ownerID, ports.TaskFilter{ProjectID: &otherProject.ID, Limit: 50})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)

	overdue := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	mk := func(title string, priority domain.TaskPriority, due *time.Time, done bool) {
		task, err := domain.NewTask(title, "", priority, project.ID, ownerID)
		require.NoError(t, err)
		task.DueDate = due
		require.NoError(t, repo.Create(ctx, task))
		if done {
			require.NoError(t, task.Complete())
			require.NoError(t, repo.Update(ctx, task))
		}
	}

	mk("Late and open", domain.PriorityHigh, &overdue, false)
	mk("Late but done", domain.PriorityHigh, &overdue, true)
	mk("On track", domain.PriorityMedium, &future, false)
	mk("No deadline", domain.PriorityLow, nil, false)

	stats, err := repo.Stats(ctx, ownerID)
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 1, stats.Completed)
	assert.EqualValues(t, 1, stats.Overdue)
	assert.EqualValues(t, 3, stats.ByStatus[domain.StatusTodo])
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusDone])
	assert.EqualValues(t, 2, stats.ByPriority[domain.PriorityHigh])
	assert.EqualValues(t, 1, stats.ByPriority[domain.PriorityMedium])
	assert.EqualValues(t, 1, stats.ByPriority[domain.PriorityLow])
}

func TestTaskRepository_BulkComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	otherID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	otherProject := seedTestProject(t, ctx, otherID)

	a := seedTestTask(t, ctx, "Bulk a", project.ID, ownerID)
	b := seedTestTask(t, ctx, "Bulk b", project.ID, ownerID)
	alreadyDone := seedTestTask(t, ctx, "Bulk done", project.ID, ownerID)
	require.NoError(t, alreadyDone.Complete())
	require.NoError(t, repo.Update(ctx, alreadyDone))
	foreign := seedTestTask(t, ctx, "Not yours", otherProject.ID, otherID)

	ids := []uuid.UUID{a.ID, b.ID, alreadyDone.ID, foreign.ID}
	result, err := repo.BulkComplete(ctx, ownerID, ids, true)
	require.NoError(t, err)

	// The already-completed task and the foreign task do not match.
	assert.Equal(t, 4, result.Requested)
	assert.EqualValues(t, 2, result.Affected)

	got, err := repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, domain.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 2, got.Version)

	// The foreign task is untouched.
	got, err = repo.GetByID(ctx, foreign.ID, otherID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	// Uncompleting reopens to todo and clears the completion stamp.
	result, err = repo.BulkComplete(ctx, ownerID, []uuid.UUID{a.ID, b.ID}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	got, err = repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, domain.StatusTodo, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskRepository_BulkSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	a := seedTestTask(t, ctx, "Status a", project.ID, ownerID)
	b := seedTestTask(t, ctx, "Status b", project.ID, ownerID)

	result, err := repo.BulkSetStatus(ctx, ownerID, []uuid.UUID{a.ID, b.ID}, domain.StatusDone)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	// Moving to done keeps the completion flags in sync.
	got, err := repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)

	// And moving away clears them.
	_, err = repo.BulkSetStatus(ctx, ownerID, []uuid.UUID{a.ID}, domain.StatusBlocked)
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, got.Status)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskRepository_BulkSetPriorityAndCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	category := seedTestCategory(t, ctx, project.ID, ownerID, "Sprint 12", 0)
	a := seedTestTask(t, ctx, "Move a", project.ID, ownerID)
	b := seedTestTask(t, ctx, "Move b", project.ID, ownerID)

	result, err := repo.BulkSetPriority(ctx, ownerID, []uuid.UUID{a.ID, b.ID}, domain.PriorityUrgent)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	result, err = repo.BulkSetCategory(ctx, ownerID, []uuid.UUID{a.ID, b.ID}, &category.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	got, err := repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUrgent, got.Priority)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, category.ID, *got.CategoryID)

	// A nil category clears the assignment.
	_, err = repo.BulkSetCategory(ctx, ownerID, []uuid.UUID{a.ID}, nil)
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestTaskRepository_BulkSetDueDate(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	a := seedTestTask(t, ctx, "Due a", project.ID, ownerID)
	b := seedTestTask(t, ctx, "Due b", project.ID, ownerID)

	due := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	result, err := repo.BulkSetDueDate(ctx, ownerID, []uuid.UUID{a.ID, b.ID}, &due)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	got, err := repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.WithinDuration(t, due, *got.DueDate, time.Second)

	_, err = repo.BulkSetDueDate(ctx, ownerID, []uuid.UUID{a.ID}, nil)
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, a.ID, ownerID)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestTaskRepository_BulkSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testPool)

	ownerID := seedTestUser(t, ctx)
	otherID := seedTestUser(t, ctx)
	project := seedTestProject(t, ctx, ownerID)
	otherProject := seedTestProject(t, ctx, otherID)

	a := seedTestTask(t, ctx, "Gone a", project.ID, ownerID)
	b := seedTestTask(t, ctx, "Gone b", project.ID, ownerID)
	foreign := seedTestTask(t, ctx, "Safe", otherProject.ID, otherID)

	result, err := repo.BulkSoftDelete(ctx, ownerID, []uuid.UUID{a.ID, b.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.EqualValues(t, 2, result.Affected)

	_, err = repo.GetByID(ctx, a.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	_, err = repo.GetByID(ctx, b.ID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	got, err := repo.GetByID(ctx, foreign.ID, otherID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
}
