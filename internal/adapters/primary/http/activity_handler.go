package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/adapters/primary/validation"
	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

const maxActivitiesPerPage = 100

// ActivityHandler serves the caller's mutation audit trail.
type ActivityHandler struct {
	activityService ports.ActivityService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService ports.ActivityService, errorHandler *ErrorHandler, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "activity"),
	}
}

// Router sets up a new chi Router for activity routes.
func (h *ActivityHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleListActivities)
	return r
}

// ActivityDTO defines the JSON response for activity entries.
type ActivityDTO struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entityType"`
	EntityID   *string                `json:"entityId"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  string                 `json:"createdAt"`
}

func toActivityDTO(activity *domain.UserActivity) ActivityDTO {
	return ActivityDTO{
		ID:         activity.ID.String(),
		Action:     activity.Action,
		EntityType: activity.EntityType,
		EntityID:   uuidString(activity.EntityID),
		Details:    activity.Details,
		CreatedAt:  activity.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListActivities handles GET /activities
func (h *ActivityHandler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	pagination := validation.ParsePagination(r, maxActivitiesPerPage)

	activities, err := h.activityService.ListActivities(r.Context(), userID, pagination.Limit, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]ActivityDTO, 0, len(activities))
	for _, activity := range activities {
		response = append(response, toActivityDTO(activity))
	}

	WriteList(w, response)
}
