package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/adapters/primary/validation"
	"github.com/avela/taskboard-backend/internal/auth"
	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

const maxTasksPerPage = 100

func statusNames() []string {
	statuses := domain.ValidStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

func priorityNames() []string {
	priorities := domain.ValidPriorities()
	names := make([]string, len(priorities))
	for i, p := range priorities {
		names[i] = string(p)
	}
	return names
}

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskService  ports.TaskService
	bulkHandler  *BulkHandler
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	taskService ports.TaskService,
	bulkHandler *BulkHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		bulkHandler:  bulkHandler,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "task"),
	}
}

// Router sets up a new chi Router for all task-related routes.
func (h *TaskHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all task endpoints.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTasks)
	r.Post("/", h.HandleCreateTask)
	r.Get("/stats", h.HandleGetStats)

	if h.bulkHandler != nil {
		r.Mount("/bulk", h.bulkHandler.Router())
	}

	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTask)
		r.Patch("/", h.HandleUpdateTask)
		r.Delete("/", h.HandleDeleteTask)
		r.Post("/complete", h.HandleCompleteTask)
	})
}

// --- Request/Response DTOs ---

// CreateTaskRequest defines the expected JSON body for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"projectId"`
	CategoryID  *string    `json:"categoryId"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// Validate validates the create task request
func (r *CreateTaskRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	v.OneOf("priority", r.Priority, priorityNames())

	v.Required("projectId", r.ProjectID).
		UUID("projectId", r.ProjectID)

	if r.CategoryID != nil {
		v.UUID("categoryId", *r.CategoryID)
	}
	if r.AssigneeID != nil {
		v.UUID("assigneeId", *r.AssigneeID)
	}
	v.Max("tags", len(r.Tags), domain.MaxTagsPerTask)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateTaskRequest defines the expected JSON body for updating a task.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	CategoryID  *string    `json:"categoryId"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
	Position    *int       `json:"position"`
	Tags        []string   `json:"tags"`
}

// Validate validates the update task request
func (r *UpdateTaskRequest) Validate() error {
	v := validation.NewValidator()

	if r.Title != nil {
		v.Required("title", *r.Title).
			MaxLength("title", *r.Title, domain.MaxTitleLength)
	}
	if r.Description != nil {
		v.MaxLength("description", *r.Description, domain.MaxDescriptionLength)
	}
	if r.Status != nil {
		v.OneOf("status", *r.Status, statusNames())
	}
	if r.Priority != nil {
		v.OneOf("priority", *r.Priority, priorityNames())
	}
	if r.CategoryID != nil && *r.CategoryID != "" {
		v.UUID("categoryId", *r.CategoryID)
	}
	if r.AssigneeID != nil && *r.AssigneeID != "" {
		v.UUID("assigneeId", *r.AssigneeID)
	}
	if r.Position != nil {
		v.Min("position", *r.Position, 0)
	}
	v.Max("tags", len(r.Tags), domain.MaxTagsPerTask)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TaskDTO defines the JSON response for tasks.
type TaskDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"projectId"`
	CategoryID  *string    `json:"categoryId"`
	AssigneeID  *string    `json:"assigneeId"`
	CreatorID   string     `json:"creatorId"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *string    `json:"completedAt"`
	Position    int        `json:"position"`
	Tags        []string   `json:"tags"`
	Version     int        `json:"version"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   *string    `json:"updatedAt"`
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.Format(time.RFC3339)
	return &value
}

func toTaskDTO(task *domain.Task) TaskDTO {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		ProjectID:   task.ProjectID.String(),
		CategoryID:  uuidString(task.CategoryID),
		AssigneeID:  uuidString(task.AssigneeID),
		CreatorID:   task.CreatorID.String(),
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		CompletedAt: timeString(task.CompletedAt),
		Position:    task.Position,
		Tags:        tags,
		Version:     task.Version,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   timeString(task.UpdatedAt),
	}
}

func toTaskDTOs(tasks []*domain.Task) []TaskDTO {
	response := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, toTaskDTO(task))
	}
	return response
}

// --- Handlers ---

// HandleListTasks handles GET /tasks
func (h *TaskHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxTasksPerPage)

	v := validation.NewValidator()

	filter := ports.TaskFilter{
		ProjectID:  validation.ParseUUIDQueryParam(r, "projectId"),
		CategoryID: validation.ParseUUIDQueryParam(r, "categoryId"),
		Completed:  validation.ParseBoolQueryParam(r, "completed"),
		Limit:      pagination.Limit,
		Offset:     pagination.Offset,
	}

	if statusStr := validation.ParseStringQueryParam(r, "status"); statusStr != nil {
		status := domain.TaskStatus(*statusStr)
		if !domain.IsValidStatus(status) {
			v.Custom("status", false, "Unknown task status")
		} else {
			filter.Status = &status
		}
	}

	if priorityStr := validation.ParseStringQueryParam(r, "priority"); priorityStr != nil {
		priority := domain.TaskPriority(*priorityStr)
		if !domain.IsValidPriority(priority) {
			v.Custom("priority", false, "Unknown task priority")
		} else {
			filter.Priority = &priority
		}
	}

	if search := validation.ParseStringQueryParam(r, "q"); search != nil {
		filter.Search = *search
	}

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), ports.ListTasksParams{
		ViewerID: claims.UserID,
		Filter:   filter,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toTaskDTOs(page.Tasks), page.Limit, page.Offset, page.Total)
}

// HandleCreateTask handles POST /tasks
func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		ProjectID:   projectID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		ActorID:     claims.UserID,
	}
	if params.CategoryID, err = parseOptionalUUID(req.CategoryID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if params.AssigneeID, err = parseOptionalUUID(req.AssigneeID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task created",
		"task_id", task.ID,
		"project_id", task.ProjectID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toTaskDTO(task))
}

// HandleGetTask handles GET /tasks/{taskID}
func (h *TaskHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	taskID, err := h.parseTaskID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleUpdateTask handles PATCH /tasks/{taskID}
func (h *TaskHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	taskID, err := h.parseTaskID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateTaskParams{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Position:    req.Position,
		Tags:        req.Tags,
		ActorID:     claims.UserID,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		params.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		params.Priority = &priority
	}
	if params.CategoryID, err = parseOptionalUUID(req.CategoryID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if params.AssigneeID, err = parseOptionalUUID(req.AssigneeID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task updated",
		"task_id", taskID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDeleteTask handles DELETE /tasks/{taskID}
// The delete is soft unless ?hard=true is given.
func (h *TaskHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	taskID, err := h.parseTaskID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	hard := false
	if v := validation.ParseBoolQueryParam(r, "hard"); v != nil {
		hard = *v
	}

	err = h.taskService.DeleteTask(r.Context(), ports.DeleteTaskParams{
		TaskID:  taskID,
		ActorID: claims.UserID,
		Hard:    hard,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task deleted",
		"task_id", taskID,
		"hard", hard,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

// HandleCompleteTask handles POST /tasks/{taskID}/complete
func (h *TaskHandler) HandleCompleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	taskID, err := h.parseTaskID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), taskID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task completed",
		"task_id", taskID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toTaskDTO(task))
}

// TaskStatsDTO defines the JSON response for task statistics.
type TaskStatsDTO struct {
	Total      int64            `json:"total"`
	Completed  int64            `json:"completed"`
	Overdue    int64            `json:"overdue"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
}

// HandleGetStats handles GET /tasks/stats
func (h *TaskHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.GetStats(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dto := TaskStatsDTO{
		Total:      stats.Total,
		Completed:  stats.Completed,
		Overdue:    stats.Overdue,
		ByStatus:   make(map[string]int64, len(stats.ByStatus)),
		ByPriority: make(map[string]int64, len(stats.ByPriority)),
	}
	for status, count := range stats.ByStatus {
		dto.ByStatus[string(status)] = count
	}
	for priority, count := range stats.ByPriority {
		dto.ByPriority[string(priority)] = count
	}

	WriteJSON(w, http.StatusOK, dto)
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *TaskHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}

// parseTaskID extracts and validates the task ID from the URL
func (h *TaskHandler) parseTaskID(r *http.Request) (uuid.UUID, error) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("taskID", false, "Invalid task ID")
		return uuid.Nil, v.Errors()
	}
	return taskID, nil
}

// parseOptionalUUID converts an optional string field to a UUID pointer.
// An empty string clears the field, matching a null in the JSON body.
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
