package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// MeHandler serves the authenticated user's own profile.
type MeHandler struct {
	userService  ports.UserService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMeHandler creates a new me handler
func NewMeHandler(userService ports.UserService, errorHandler *ErrorHandler, logger *slog.Logger) *MeHandler {
	return &MeHandler{
		userService:  userService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "me"),
	}
}

// Router sets up a new chi Router for the /me routes.
func (h *MeHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleProfile)
	return r
}

// ProfileDTO defines the JSON response for the caller's profile.
type ProfileDTO struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"fullName"`
	IsActive     bool    `json:"isActive"`
	CreatedAt    string  `json:"createdAt"`
	LastActiveAt *string `json:"lastActiveAt"`
}

func toProfileDTO(user *domain.User) ProfileDTO {
	return ProfileDTO{
		ID:           user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
		LastActiveAt: timeString(user.LastActiveAt),
	}
}

// HandleProfile handles GET /me
func (h *MeHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toProfileDTO(user))
}
