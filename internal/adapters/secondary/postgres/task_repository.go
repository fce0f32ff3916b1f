package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// TaskRepository is the secondary adapter for task persistence.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// Ensure TaskRepository implements the ports.TaskRepository interface.
var _ ports.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new task repository.
func NewTaskRepository(pool *pgxpool.Pool) ports.TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, priority, project_id, category_id,
	assignee_id, creator_id, due_date, completed, completed_at, position, tags,
	version, is_deleted, deleted_at, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.ProjectID,
		&t.CategoryID, &t.AssigneeID, &t.CreatorID, &t.DueDate, &t.Completed,
		&t.CompletedAt, &t.Position, &t.Tags, &t.Version, &t.IsDeleted,
		&t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new task entity.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, priority, project_id,
			category_id, assignee_id, creator_id, due_date, position, tags,
			version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.ProjectID, task.CategoryID, task.AssigneeID, task.CreatorID,
		task.DueDate, task.Position, tags, task.Version, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetByID retrieves a task visible to the given user. Soft-deleted rows
// are excluded.
func (r *TaskRepository) GetByID(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
		  AND (creator_id = $2 OR assignee_id = $2)
		  AND NOT is_deleted
	`

	task, err := scanTask(GetDBTX(ctx, r.pool).QueryRow(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update persists changes to an existing task entity.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
			category_id = $6, assignee_id = $7, due_date = $8, completed = $9,
			completed_at = $10, position = $11, tags = $12, version = $13,
			updated_at = $14
		WHERE id = $1 AND NOT is_deleted
	`

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.CategoryID, task.AssigneeID, task.DueDate, task.Completed,
		task.CompletedAt, task.Position, tags, task.Version, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// SoftDelete flags a task deleted without removing the row.
func (r *TaskRepository) SoftDelete(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `
		UPDATE tasks
		SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
		WHERE id = $1 AND creator_id = $2 AND NOT is_deleted
	`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to soft delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// HardDelete removes a task row permanently.
func (r *TaskRepository) HardDelete(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND creator_id = $2`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// buildFilter appends WHERE clauses for the optional filter fields,
// continuing the placeholder numbering from the given args.
func buildFilter(filter ports.TaskFilter, clauses []string, args []interface{}) ([]string, []interface{}) {
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		clauses = append(clauses, fmt.Sprintf("completed = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	return clauses, args
}

// List retrieves tasks visible to the user, newest first.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*domain.Task, error) {
	clauses := []string{"(creator_id = $1 OR assignee_id = $1)", "NOT is_deleted"}
	args := []interface{}{userID}
	clauses, args = buildFilter(filter, clauses, args)

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY position ASC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, taskColumns, strings.Join(clauses, " AND "), limitPos, offsetPos)

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Count reports the total number of tasks matching the filter.
func (r *TaskRepository) Count(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) (int64, error) {
	clauses := []string{"(creator_id = $1 OR assignee_id = $1)", "NOT is_deleted"}
	args := []interface{}{userID}
	clauses, args = buildFilter(filter, clauses, args)

	query := "SELECT count(*) FROM tasks WHERE " + strings.Join(clauses, " AND ")

	var count int64
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Stats aggregates task counts for a user's visible tasks.
func (r *TaskRepository) Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error) {
	db := GetDBTX(ctx, r.pool)
	stats := &domain.TaskStats{
		ByStatus:   make(map[domain.TaskStatus]int64),
		ByPriority: make(map[domain.TaskPriority]int64),
	}

	summary := `
		SELECT count(*),
			count(*) FILTER (WHERE completed),
			count(*) FILTER (WHERE NOT completed AND due_date IS NOT NULL AND due_date < now())
		FROM tasks
		WHERE (creator_id = $1 OR assignee_id = $1) AND NOT is_deleted
	`
	if err := db.QueryRow(ctx, summary, userID).Scan(&stats.Total, &stats.Completed, &stats.Overdue); err != nil {
		return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
	}

	byStatus := `
		SELECT status, count(*)
		FROM tasks
		WHERE (creator_id = $1 OR assignee_id = $1) AND NOT is_deleted
		GROUP BY status
	`
	rows, err := db.Query(ctx, byStatus, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.TaskStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byPriority := `
		SELECT priority, count(*)
		FROM tasks
		WHERE (creator_id = $1 OR assignee_id = $1) AND NOT is_deleted
		GROUP BY priority
	`
	rows, err = db.Query(ctx, byPriority, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks by priority: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var priority domain.TaskPriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		stats.ByPriority[priority] = count
	}
	return stats, rows.Err()
}

// --- Bulk operations ---
// Each bulk mutation is a single UPDATE scoped to the caller's own tasks.
// IDs the caller does not own simply do not match, so Affected can be
// lower than Requested.

func (r *TaskRepository) bulkExec(ctx context.Context, query string, requested int, args ...interface{}) (ports.BulkResult, error) {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return ports.BulkResult{}, fmt.Errorf("bulk update failed: %w", err)
	}
	return ports.BulkResult{Requested: requested, Affected: tag.RowsAffected()}, nil
}

// BulkComplete marks a batch of tasks completed or not completed.
func (r *TaskRepository) BulkComplete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, completed bool) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET completed = $3,
			status = CASE WHEN $3 THEN 'done'::task_status ELSE 'todo'::task_status END,
			completed_at = CASE WHEN $3 THEN now() ELSE NULL END,
			version = version + 1, updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted AND completed <> $3
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs, completed)
}

// BulkSetStatus moves a batch of tasks to one status.
func (r *TaskRepository) BulkSetStatus(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, status domain.TaskStatus) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET status = $3,
			completed = ($3 = 'done'::task_status),
			completed_at = CASE WHEN $3 = 'done'::task_status THEN now() ELSE NULL END,
			version = version + 1, updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs, status)
}

// BulkSetPriority sets one priority across a batch of tasks.
func (r *TaskRepository) BulkSetPriority(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, priority domain.TaskPriority) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET priority = $3, version = version + 1, updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs, priority)
}

// BulkSetCategory moves a batch of tasks into a category. A nil
// categoryID clears the category.
func (r *TaskRepository) BulkSetCategory(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, categoryID *uuid.UUID) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET category_id = $3, version = version + 1, updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs, categoryID)
}

// BulkSetDueDate sets one due date across a batch of tasks. A nil
// dueDate clears it.
func (r *TaskRepository) BulkSetDueDate(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID, dueDate *time.Time) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET due_date = $3, version = version + 1, updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs, dueDate)
}

// BulkSoftDelete flags a batch of tasks deleted.
func (r *TaskRepository) BulkSoftDelete(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) (ports.BulkResult, error) {
	query := `
		UPDATE tasks
		SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
		WHERE creator_id = $1 AND id = ANY($2) AND NOT is_deleted
	`
	return r.bulkExec(ctx, query, len(taskIDs), userID, taskIDs)
}
