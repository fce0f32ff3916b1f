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

// CategoryHandler handles HTTP requests for categories. It is mounted
// under /projects/{projectID}/categories.
type CategoryHandler struct {
	categoryService ports.CategoryService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService ports.CategoryService, errorHandler *ErrorHandler, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "category"),
	}
}

// Router sets up a new chi Router for all category-related routes.
func (h *CategoryHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all category endpoints.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListCategories)
	r.Post("/", h.HandleCreateCategory)
	r.Put("/reorder", h.HandleReorderCategories)

	r.Route("/{categoryID}", func(r chi.Router) {
		r.Get("/", h.HandleGetCategory)
		r.Patch("/", h.HandleUpdateCategory)
		r.Delete("/", h.HandleDeleteCategory)
	})
}

// --- Request/Response DTOs ---

// CreateCategoryRequest defines the expected JSON body for creating a category
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// Validate validates the create category request
func (r *CreateCategoryRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxCategoryNameLength)

	v.HexColor("color", r.Color)
	v.Min("position", r.Position, 0)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateCategoryRequest defines the expected JSON body for updating a
// category. Absent fields are left unchanged.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	Position *int    `json:"position"`
}

// Validate validates the update category request
func (r *UpdateCategoryRequest) Validate() error {
	v := validation.NewValidator()

	if r.Name != nil {
		v.Required("name", *r.Name).
			MaxLength("name", *r.Name, domain.MaxCategoryNameLength)
	}
	if r.Color != nil {
		v.HexColor("color", *r.Color)
	}
	if r.Position != nil {
		v.Min("position", *r.Position, 0)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ReorderCategoriesRequest carries the full category order for a project.
type ReorderCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}

// Validate validates the reorder request
func (r *ReorderCategoriesRequest) Validate() error {
	v := validation.NewValidator()

	v.Custom("categoryIds", len(r.CategoryIDs) > 0, "At least one category ID is required")
	for _, id := range r.CategoryIDs {
		v.UUID("categoryIds", id)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CategoryDTO defines the JSON response for categories.
type CategoryDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Position  int     `json:"position"`
	ProjectID string  `json:"projectId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}

func toCategoryDTO(category *domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID.String(),
		Name:      category.Name,
		Color:     category.Color,
		Position:  category.Position,
		ProjectID: category.ProjectID.String(),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
		UpdatedAt: timeString(category.UpdatedAt),
	}
}

func toCategoryDTOs(categories []*domain.Category) []CategoryDTO {
	response := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryDTO(category))
	}
	return response
}

// --- Handlers ---

// HandleListCategories handles GET /projects/{projectID}/categories
func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	categories, err := h.categoryService.ListCategories(r.Context(), projectID, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toCategoryDTOs(categories))
}

// HandleCreateCategory handles POST /projects/{projectID}/categories
func (h *CategoryHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateCategoryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), ports.CreateCategoryParams{
		Name:      req.Name,
		Color:     req.Color,
		Position:  req.Position,
		ProjectID: projectID,
		ActorID:   userID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("category created",
		"category_id", category.ID,
		"project_id", projectID,
		"user_id", userID,
	)

	WriteCreated(w, toCategoryDTO(category))
}

// HandleGetCategory handles GET /projects/{projectID}/categories/{categoryID}
func (h *CategoryHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	categoryID, err := h.parseCategoryID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), categoryID, userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toCategoryDTO(category))
}

// HandleUpdateCategory handles PATCH /projects/{projectID}/categories/{categoryID}
func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	categoryID, err := h.parseCategoryID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateCategoryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), ports.UpdateCategoryParams{
		CategoryID: categoryID,
		Name:       req.Name,
		Color:      req.Color,
		Position:   req.Position,
		ActorID:    userID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("category updated",
		"category_id", categoryID,
		"user_id", userID,
	)

	WriteJSON(w, http.StatusOK, toCategoryDTO(category))
}

// HandleDeleteCategory handles DELETE /projects/{projectID}/categories/{categoryID}
func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	categoryID, err := h.parseCategoryID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("category deleted",
		"category_id", categoryID,
		"user_id", userID,
	)

	WriteNoContent(w)
}

// HandleReorderCategories handles PUT /projects/{projectID}/categories/reorder
func (h *CategoryHandler) HandleReorderCategories(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ReorderCategoriesRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	orderedIDs := make([]uuid.UUID, 0, len(req.CategoryIDs))
	for _, raw := range req.CategoryIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			h.errorHandler.Handle(w, r, parseErr)
			return
		}
		orderedIDs = append(orderedIDs, id)
	}

	categories, err := h.categoryService.ReorderCategories(r.Context(), projectID, userID, orderedIDs)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("categories reordered",
		"project_id", projectID,
		"count", len(orderedIDs),
		"user_id", userID,
	)

	WriteList(w, toCategoryDTOs(categories))
}

// parseCategoryID extracts and validates the category ID from the URL
func (h *CategoryHandler) parseCategoryID(r *http.Request) (uuid.UUID, error) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("categoryID", false, "Invalid category ID")
		return uuid.Nil, v.Errors()
	}
	return categoryID, nil
}
