package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/adapters/primary/validation"
	wsAdapter "github.com/avela/taskboard-backend/internal/adapters/primary/websocket"
	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// RealtimeHandler exposes the operational surface of the websocket hub:
// connection statistics, manual broadcasts and stale-connection cleanup.
type RealtimeHandler struct {
	hub            *wsAdapter.Hub
	projectService ports.ProjectService
	staleMaxIdle   time.Duration
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(
	hub *wsAdapter.Hub,
	projectService ports.ProjectService,
	staleMaxIdle time.Duration,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *RealtimeHandler {
	return &RealtimeHandler{
		hub:            hub,
		projectService: projectService,
		staleMaxIdle:   staleMaxIdle,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "realtime"),
	}
}

// Router sets up a new chi Router for realtime admin routes. Manual
// broadcasts get their own per-user rate limit; pass nil to disable.
func (h *RealtimeHandler) Router(broadcastLimiter func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/stats", h.HandleStats)
	r.Post("/cleanup", h.HandleCleanup)
	r.Group(func(r chi.Router) {
		if broadcastLimiter != nil {
			r.Use(broadcastLimiter)
		}
		r.Post("/broadcast/{projectID}", h.HandleBroadcast)
	})
	return r
}

// HandleStats handles GET /realtime/stats
func (h *RealtimeHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.hub.Stats())
}

// BroadcastRequest defines the JSON body for a manual broadcast.
type BroadcastRequest struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Validate validates the broadcast request
func (r *BroadcastRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("event", r.Event).
		MaxLength("event", r.Event, 100)
	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// BroadcastResponse reports how many connections received the frame.
type BroadcastResponse struct {
	Delivered int `json:"delivered"`
}

// HandleBroadcast handles POST /realtime/broadcast/{projectID}. Only
// the project owner may push ad hoc events to its subscribers.
func (h *RealtimeHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Not authorized", Code: "UNAUTHORIZED"})
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("projectID", false, "Invalid project ID")
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	// Ownership check doubles as an existence check.
	if _, err := h.projectService.GetProject(r.Context(), projectID, claims.UserID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[BroadcastRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event := domain.Event{
		Kind:      domain.EventKind(req.Event),
		UserID:    claims.UserID,
		ProjectID: projectID,
		Payload:   req.Data,
		Timestamp: time.Now().UTC(),
	}
	delivered := h.hub.Broadcast(event)

	h.logger.Info("manual broadcast",
		"event", req.Event,
		"project_id", projectID,
		"delivered", delivered,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, BroadcastResponse{Delivered: delivered})
}

// CleanupResponse reports how many stale connections were evicted.
type CleanupResponse struct {
	Evicted int `json:"evicted"`
}

// HandleCleanup handles POST /realtime/cleanup. It drops every
// connection that has been silent longer than the configured idle cap.
func (h *RealtimeHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	evicted := h.hub.EvictStale(h.staleMaxIdle)

	h.logger.Info("stale connection cleanup",
		"evicted", evicted,
		"max_idle", h.staleMaxIdle,
	)

	WriteJSON(w, http.StatusOK, CleanupResponse{Evicted: evicted})
}
