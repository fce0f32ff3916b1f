package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// ActivityRepository is the secondary adapter for the mutation audit trail.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(pool *pgxpool.Pool) ports.ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Record persists one audit trail entry. Details are stored as JSONB.
func (r *ActivityRepository) Record(ctx context.Context, activity *domain.UserActivity) error {
	query := `
		INSERT INTO user_activities (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		activity.ID, activity.UserID, activity.Action, activity.EntityType,
		activity.EntityID, activity.Details, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's audit trail, newest first.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserActivity, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM user_activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*domain.UserActivity, 0)
	for rows.Next() {
		var a domain.UserActivity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}
