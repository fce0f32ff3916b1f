package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// ActivityService reads the mutation audit trail
type ActivityService struct {
	activityRepo ports.ActivityRepository
}

var _ ports.ActivityService = (*ActivityService)(nil)

// NewActivityService creates a new activity service
func NewActivityService(activityRepo ports.ActivityRepository) ports.ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// ListActivities returns one page of the user's activity, newest first
func (s *ActivityService) ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.activityRepo.ListByUser(ctx, userID, limit, offset)
}
