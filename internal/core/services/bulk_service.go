package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// MaxBulkIDs caps the batch size of a single bulk mutation.
const MaxBulkIDs = 1000

// BulkService runs single-statement mutations over batches of tasks.
// Every operation is scoped to the acting user; IDs the user does not
// own simply do not match and show up as requested > affected.
type BulkService struct {
	taskRepo     ports.TaskRepository
	categoryRepo ports.CategoryRepository
	activityRepo ports.ActivityRepository
	logger       *slog.Logger
}

var _ ports.BulkService = (*BulkService)(nil)

// NewBulkService creates a new bulk service
func NewBulkService(
	taskRepo ports.TaskRepository,
	categoryRepo ports.CategoryRepository,
	activityRepo ports.ActivityRepository,
	logger *slog.Logger,
) ports.BulkService {
	return &BulkService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		activityRepo: activityRepo,
		logger:       logger.With("component", "bulk_service"),
	}
}

// validateIDs enforces the batch shape shared by every bulk operation.
func validateIDs(taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return apperrors.ErrBulkEmpty
	}
	if len(taskIDs) > MaxBulkIDs {
		return apperrors.ErrBulkTooLarge
	}
	seen := make(map[uuid.UUID]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		if _, dup := seen[id]; dup {
			return apperrors.ErrBulkDuplicateIDs
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *BulkService) run(
	ctx context.Context,
	op ports.BulkOperation,
	params ports.BulkTaskParams,
	fn func(ctx context.Context) (ports.BulkResult, error),
) (*ports.BulkOutcome, error) {
	if err := validateIDs(params.TaskIDs); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.logger.Info("bulk operation finished",
		"operation", op,
		"requested", result.Requested,
		"affected", result.Affected,
		"duration_ms", elapsed.Milliseconds(),
	)

	go s.recordBulk(op, params, result)

	return &ports.BulkOutcome{
		Operation:  op,
		Requested:  result.Requested,
		Affected:   result.Affected,
		DurationMS: elapsed.Milliseconds(),
	}, nil
}

// Complete marks a batch done or not done
func (s *BulkService) Complete(ctx context.Context, params ports.BulkTaskParams, completed bool) (*ports.BulkOutcome, error) {
	op := ports.BulkOpComplete
	if !completed {
		op = ports.BulkOpUncomplete
	}
	return s.run(ctx, op, params, func(ctx context.Context) (ports.BulkResult, error) {
		return s.taskRepo.BulkComplete(ctx, params.ActorID, params.TaskIDs, completed)
	})
}

// Delete soft deletes a batch
func (s *BulkService) Delete(ctx context.Context, params ports.BulkTaskParams) (*ports.BulkOutcome, error) {
	return s.run(ctx, ports.BulkOpDelete, params, func(ctx context.Context) (ports.BulkResult, error) {
		return s.taskRepo.BulkSoftDelete(ctx, params.ActorID, params.TaskIDs)
	})
}

// SetStatus moves a batch to one status
func (s *BulkService) SetStatus(ctx context.Context, params ports.BulkTaskParams, status domain.TaskStatus) (*ports.BulkOutcome, error) {
	if !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	return s.run(ctx, ports.BulkOpSetStatus, params, func(ctx context.Context) (ports.BulkResult, error) {
		return s.taskRepo.BulkSetStatus(ctx, params.ActorID, params.TaskIDs, status)
	})
}

// SetPriority moves a batch to one priority
func (s *BulkService) SetPriority(ctx context.Context, params ports.BulkTaskParams, priority domain.TaskPriority) (*ports.BulkOutcome, error) {
	if !domain.IsValidPriority(priority) {
		return nil, domain.ErrInvalidPriority
	}
	return s.run(ctx, ports.BulkOpSetPriority, params, func(ctx context.Context) (ports.BulkResult, error) {
		return s.taskRepo.BulkSetPriority(ctx, params.ActorID, params.TaskIDs, priority)
	})
}

// SetCategory moves a batch into a category, or clears it when nil
func (s *BulkService) SetCategory(ctx context.Context, params ports.BulkTaskParams, categoryID *uuid.UUID) (*ports.BulkOutcome, error) {
	if categoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *categoryID, params.ActorID); err != nil {
			return nil, err
		}
	}
	return s.run(ctx, ports.BulkOpSetCategory, params, func(ctx context.Context) (ports.BulkResult, error) {
		return s.taskRepo.BulkSetCategory(ctx, params.ActorID, params.TaskIDs, categoryID)
	})
}

// Update applies a combination of field changes to a batch. Each present
// field runs as its own single-statement mutation; affected reports the
// widest reach among them.
func (s *BulkService) Update(ctx context.Context, params ports.BulkTaskParams, fields ports.BulkUpdateFields) (*ports.BulkOutcome, error) {
	if fields.Status == nil && fields.Priority == nil && fields.CategoryID == nil &&
		fields.DueDate == nil && fields.Completed == nil {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "at least one field to update is required")
	}
	if fields.Status != nil && !domain.IsValidStatus(*fields.Status) {
		return nil, domain.ErrInvalidStatus
	}
	if fields.Priority != nil && !domain.IsValidPriority(*fields.Priority) {
		return nil, domain.ErrInvalidPriority
	}

	return s.run(ctx, ports.BulkOpUpdate, params, func(ctx context.Context) (ports.BulkResult, error) {
		var widest ports.BulkResult
		apply := func(result ports.BulkResult, err error) error {
			if err != nil {
				return err
			}
			widest.Requested = result.Requested
			if result.Affected > widest.Affected {
				widest.Affected = result.Affected
			}
			return nil
		}

		if fields.Status != nil {
			if err := apply(s.taskRepo.BulkSetStatus(ctx, params.ActorID, params.TaskIDs, *fields.Status)); err != nil {
				return widest, err
			}
		}
		if fields.Priority != nil {
			if err := apply(s.taskRepo.BulkSetPriority(ctx, params.ActorID, params.TaskIDs, *fields.Priority)); err != nil {
				return widest, err
			}
		}
		if fields.CategoryID != nil {
			if err := apply(s.taskRepo.BulkSetCategory(ctx, params.ActorID, params.TaskIDs, fields.CategoryID)); err != nil {
				return widest, err
			}
		}
		if fields.DueDate != nil {
			if err := apply(s.taskRepo.BulkSetDueDate(ctx, params.ActorID, params.TaskIDs, fields.DueDate)); err != nil {
				return widest, err
			}
		}
		if fields.Completed != nil {
			if err := apply(s.taskRepo.BulkComplete(ctx, params.ActorID, params.TaskIDs, *fields.Completed)); err != nil {
				return widest, err
			}
		}
		return widest, nil
	})
}

// recordBulk writes one audit row per bulk operation.
func (s *BulkService) recordBulk(op ports.BulkOperation, params ports.BulkTaskParams, result ports.BulkResult) {
	activity := &domain.UserActivity{
		ID:         uuid.New(),
		UserID:     params.ActorID,
		Action:     "bulk_" + string(op),
		EntityType: "task",
		Details: map[string]interface{}{
			"requested": result.Requested,
			"affected":  result.Affected,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.activityRepo.Record(context.Background(), activity); err != nil {
		s.logger.Warn("failed to record bulk activity", "operation", op, "error", err)
	}
}
