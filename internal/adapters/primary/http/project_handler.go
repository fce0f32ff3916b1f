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

const maxProjectsPerPage = 100

func projectStatusNames() []string {
	return []string{
		string(domain.ProjectPlanning),
		string(domain.ProjectActive),
		string(domain.ProjectOnHold),
		string(domain.ProjectCompleted),
		string(domain.ProjectArchived),
	}
}

// ProjectHandler handles HTTP requests for projects
type ProjectHandler struct {
	projectService  ports.ProjectService
	categoryHandler *CategoryHandler
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	projectService ports.ProjectService,
	categoryHandler *CategoryHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		categoryHandler: categoryHandler,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "project"),
	}
}

// Router sets up a new chi Router for all project-related routes.
func (h *ProjectHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all project endpoints.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListProjects)
	r.Post("/", h.HandleCreateProject)

	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", h.HandleGetProject)
		r.Patch("/", h.HandleUpdateProject)
		r.Delete("/", h.HandleDeleteProject)

		// Categories live under their project.
		if h.categoryHandler != nil {
			r.Mount("/categories", h.categoryHandler.Router())
		}
	})
}

// --- Request/Response DTOs ---

// CreateProjectRequest defines the expected JSON body for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Validate validates the create project request
func (r *CreateProjectRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxProjectNameLength)

	v.HexColor("color", r.Color)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateProjectRequest defines the expected JSON body for updating a
// project. Absent fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Status      *string `json:"status"`
}

// Validate validates the update project request
func (r *UpdateProjectRequest) Validate() error {
	v := validation.NewValidator()

	if r.Name != nil {
		v.Required("name", *r.Name).
			MaxLength("name", *r.Name, domain.MaxProjectNameLength)
	}
	if r.Color != nil {
		v.HexColor("color", *r.Color)
	}
	if r.Status != nil {
		v.OneOf("status", *r.Status, projectStatusNames())
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ProjectDTO defines the JSON response for projects.
type ProjectDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Color       string  `json:"color"`
	OwnerID     string  `json:"ownerId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func toProjectDTO(project *domain.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID.String(),
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		Color:       project.Color,
		OwnerID:     project.OwnerID.String(),
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   timeString(project.UpdatedAt),
	}
}

func toProjectDTOs(projects []*domain.Project) []ProjectDTO {
	response := make([]ProjectDTO, 0, len(projects))
	for _, project := range projects {
		response = append(response, toProjectDTO(project))
	}
	return response
}

// --- Handlers ---

// HandleListProjects handles GET /projects
func (h *ProjectHandler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	pagination := validation.ParsePagination(r, maxProjectsPerPage)

	projects, err := h.projectService.ListProjects(r.Context(), userID, pagination.Limit, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toProjectDTOs(projects))
}

// HandleCreateProject handles POST /projects
func (h *ProjectHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	req, err := validation.DecodeAndValidate[CreateProjectRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), ports.CreateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		OwnerID:     userID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("project created",
		"project_id", project.ID,
		"user_id", userID,
	)

	WriteCreated(w, toProjectDTO(project))
}

// HandleGetProject handles GET /projects/{projectID}
func (h *ProjectHandler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	project, err := h.projectService.GetProject(r.Context(), projectID, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toProjectDTO(project))
}

// HandleUpdateProject handles PATCH /projects/{projectID}
func (h *ProjectHandler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateProjectRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateProjectParams{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		ActorID:     userID,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		params.Status = &status
	}

	project, err := h.projectService.UpdateProject(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("project updated",
		"project_id", projectID,
		"user_id", userID,
	)

	WriteJSON(w, http.StatusOK, toProjectDTO(project))
}

// HandleDeleteProject handles DELETE /projects/{projectID}
func (h *ProjectHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), projectID, userID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("project deleted",
		"project_id", projectID,
		"user_id", userID,
	)

	WriteNoContent(w)
}

// parseProjectID extracts and validates the project ID from the URL
func parseProjectID(r *http.Request) (uuid.UUID, error) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("projectID", false, "Invalid project ID")
		return uuid.Nil, v.Errors()
	}
	return projectID, nil
}
