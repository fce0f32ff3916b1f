package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/adapters/primary/validation"
	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// BulkHandler handles batch task mutations
type BulkHandler struct {
	bulkService  ports.BulkService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulkService ports.BulkService, errorHandler *ErrorHandler, logger *slog.Logger) *BulkHandler {
	return &BulkHandler{
		bulkService:  bulkService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "bulk"),
	}
}

// Router sets up a new chi Router for all bulk endpoints.
func (h *BulkHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all bulk endpoints.
func (h *BulkHandler) RegisterRoutes(r chi.Router) {
	r.Post("/complete", h.HandleComplete)
	r.Post("/uncomplete", h.HandleUncomplete)
	r.Post("/delete", h.HandleDelete)
	r.Post("/status", h.HandleSetStatus)
	r.Post("/priority", h.HandleSetPriority)
	r.Post("/category", h.HandleSetCategory)
	r.Post("/update", h.HandleUpdate)
}

// --- Request/Response DTOs ---

// BulkTaskIDsRequest carries the batch of task IDs every bulk endpoint
// expects.
type BulkTaskIDsRequest struct {
	TaskIDs []string `json:"taskIds"`
}

func (r *BulkTaskIDsRequest) parseIDs() ([]uuid.UUID, error) {
	v := validation.NewValidator()
	ids := make([]uuid.UUID, 0, len(r.TaskIDs))
	for _, raw := range r.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			v.Custom("taskIds", false, "Every task ID must be a valid UUID")
			break
		}
		ids = append(ids, id)
	}
	if v.HasErrors() {
		return nil, v.Errors()
	}
	return ids, nil
}

// BulkSetStatusRequest sets one status across a batch.
type BulkSetStatusRequest struct {
	BulkTaskIDsRequest
	Status string `json:"status"`
}

// BulkSetPriorityRequest sets one priority across a batch.
type BulkSetPriorityRequest struct {
	BulkTaskIDsRequest
	Priority string `json:"priority"`
}

// BulkSetCategoryRequest moves a batch into a category. A null
// categoryId clears the category.
type BulkSetCategoryRequest struct {
	BulkTaskIDsRequest
	CategoryID *string `json:"categoryId"`
}

// BulkUpdateRequest applies any combination of fields across a batch.
type BulkUpdateRequest struct {
	BulkTaskIDsRequest
	Status     *string    `json:"status"`
	Priority   *string    `json:"priority"`
	CategoryID *string    `json:"categoryId"`
	DueDate    *time.Time `json:"dueDate"`
	Completed  *bool      `json:"completed"`
}

// BulkOutcomeDTO defines the JSON response for bulk mutations.
type BulkOutcomeDTO struct {
	Operation  string `json:"operation"`
	Requested  int    `json:"requested"`
	Affected   int64  `json:"affected"`
	DurationMS int64  `json:"durationMs"`
}

func toBulkOutcomeDTO(outcome *ports.BulkOutcome) BulkOutcomeDTO {
	return BulkOutcomeDTO{
		Operation:  string(outcome.Operation),
		Requested:  outcome.Requested,
		Affected:   outcome.Affected,
		DurationMS: outcome.DurationMS,
	}
}

// --- Handlers ---

// HandleComplete handles POST /tasks/bulk/complete
func (h *BulkHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.runCompletion(w, r, true)
}

// HandleUncomplete handles POST /tasks/bulk/uncomplete
func (h *BulkHandler) HandleUncomplete(w http.ResponseWriter, r *http.Request) {
	h.runCompletion(w, r, false)
}

func (h *BulkHandler) runCompletion(w http.ResponseWriter, r *http.Request, completed bool) {
	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}

	outcome, err := h.bulkService.Complete(r.Context(), params, completed)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(params.ActorID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// HandleDelete handles POST /tasks/bulk/delete
func (h *BulkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}

	outcome, err := h.bulkService.Delete(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(params.ActorID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// HandleSetStatus handles POST /tasks/bulk/status
func (h *BulkHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[BulkSetStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ids, err := req.parseIDs()
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.BulkTaskParams{TaskIDs: ids, ActorID: userID}
	outcome, err := h.bulkService.SetStatus(r.Context(), params, domain.TaskStatus(req.Status))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(userID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// HandleSetPriority handles POST /tasks/bulk/priority
func (h *BulkHandler) HandleSetPriority(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[BulkSetPriorityRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ids, err := req.parseIDs()
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.BulkTaskParams{TaskIDs: ids, ActorID: userID}
	outcome, err := h.bulkService.SetPriority(r.Context(), params, domain.TaskPriority(req.Priority))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(userID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// HandleSetCategory handles POST /tasks/bulk/category
func (h *BulkHandler) HandleSetCategory(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[BulkSetCategoryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ids, err := req.parseIDs()
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.BulkTaskParams{TaskIDs: ids, ActorID: userID}
	outcome, err := h.bulkService.SetCategory(r.Context(), params, categoryID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(userID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// HandleUpdate handles POST /tasks/bulk/update
func (h *BulkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[BulkUpdateRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ids, err := req.parseIDs()
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	fields := ports.BulkUpdateFields{
		DueDate:   req.DueDate,
		Completed: req.Completed,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		fields.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		fields.Priority = &priority
	}
	if fields.CategoryID, err = parseOptionalUUID(req.CategoryID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.BulkTaskParams{TaskIDs: ids, ActorID: userID}
	outcome, err := h.bulkService.Update(r.Context(), params, fields)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logOutcome(userID, outcome)
	WriteJSON(w, http.StatusOK, toBulkOutcomeDTO(outcome))
}

// --- Helper methods ---

func (h *BulkHandler) decodeParams(w http.ResponseWriter, r *http.Request) (ports.BulkTaskParams, bool) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[BulkTaskIDsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return ports.BulkTaskParams{}, false
	}

	ids, err := req.parseIDs()
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return ports.BulkTaskParams{}, false
	}

	return ports.BulkTaskParams{TaskIDs: ids, ActorID: userID}, true
}

func (h *BulkHandler) logOutcome(userID uuid.UUID, outcome *ports.BulkOutcome) {
	h.logger.Info("bulk operation finished",
		"operation", outcome.Operation,
		"requested", outcome.Requested,
		"affected", outcome.Affected,
		"duration_ms", outcome.DurationMS,
		"user_id", userID,
	)
}
