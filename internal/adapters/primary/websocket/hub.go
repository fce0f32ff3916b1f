package websocket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// Hub ties the connection registry, the subscription index and the
// broadcaster together. All methods are safe for concurrent use.
type Hub struct {
	registry      *Registry
	subscriptions *SubscriptionIndex
	logger        *slog.Logger
}

// HubStats is the point-in-time snapshot served by the admin surface.
type HubStats struct {
	TotalConnections     int            `json:"total_connections"`
	UniqueUsers          int            `json:"unique_users"`
	ConnectionsPerUser   map[string]int `json:"connections_per_user"`
	ActiveTopics         int            `json:"active_topics"`
	ProjectSubscriptions map[string]int `json:"project_subscriptions"`
}

// Ensure Hub implements the EventPublisher port.
var _ ports.EventPublisher = (*Hub)(nil)

// NewHub creates a hub with an empty registry and subscription index.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		registry:      NewRegistry(),
		subscriptions: NewSubscriptionIndex(),
		logger:        logger.With("component", "websocket_hub"),
	}
}

// Register wraps an upgraded socket in a Connection, records it and
// queues the connected acknowledgement. The caller starts the pumps.
// The user's first connection broadcasts their online status to every
// project they subscribe to.
func (h *Hub) Register(conn *websocket.Conn, userID uuid.UUID) *Connection {
	c := newConnection(h, conn, userID, h.logger)
	first := h.registry.Add(c)

	h.logger.Info("connection registered",
		"connection_id", c.ID,
		"user_id", userID,
		"total_connections", h.registry.Stats().TotalConnections,
	)

	if frame, err := marshalConnected(c.ID, userID); err == nil {
		c.trySend(frame)
	}

	if first {
		h.broadcastUserStatus(userID, true)
	}
	return c
}

// Unregister removes a connection and marks it closed. It is idempotent;
// unregistering an unknown or already-removed connection is a no-op.
// When the user's last connection goes away their subscriptions are
// dropped and their offline status is broadcast.
func (h *Hub) Unregister(c *Connection) {
	_, last, ok := h.registry.Remove(c.ID)
	if !ok {
		return
	}
	c.markClosed()

	h.logger.Info("connection unregistered",
		"connection_id", c.ID,
		"user_id", c.UserID,
	)

	if last {
		topics := h.subscriptions.RemoveUser(c.UserID)
		for _, projectID := range topics {
			h.Broadcast(domain.NewUserStatusEvent(c.UserID, projectID, false))
		}
	}
}

// Broadcast fans an event out to every connection of every subscriber of
// the event's project, skipping all connections of the originating user.
// Sends are non-blocking; a connection that cannot accept the frame is
// unregistered and the loop moves on. Returns the number of connections
// the frame was queued to.
func (h *Hub) Broadcast(event domain.Event) int {
	subscribers := h.subscriptions.SubscribersOf(event.ProjectID)
	if len(subscribers) == 0 {
		return 0
	}

	frame, err := marshalEvent(event)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event.Kind, "error", err)
		return 0
	}

	delivered := 0
	for _, userID := range subscribers {
		if userID == event.UserID {
			// Echo suppression covers every connection the actor
			// holds, not just the one that issued the mutation.
			continue
		}
		for _, c := range h.registry.ConnectionsFor(userID) {
			if c.trySend(frame) {
				delivered++
				continue
			}
			h.logger.Warn("send failed, unregistering connection",
				"connection_id", c.ID,
				"user_id", c.UserID,
			)
			h.Unregister(c)
		}
	}

	h.logger.Debug("event broadcast",
		"event", event.Kind,
		"project_id", event.ProjectID,
		"delivered", delivered,
	)
	return delivered
}

// Publish implements ports.EventPublisher. Delivery is best effort;
// per-connection failures are handled inside Broadcast and never
// surface to the business layer.
func (h *Hub) Publish(event domain.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	h.Broadcast(event)
	return nil
}

// EvictStale unregisters every connection whose last liveness signal is
// older than maxIdle and returns how many were dropped.
func (h *Hub) EvictStale(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)
	stale := h.registry.StaleBefore(cutoff)
	for _, c := range stale {
		h.logger.Info("evicting stale connection",
			"connection_id", c.ID,
			"user_id", c.UserID,
			"last_seen", c.LastSeen(),
		)
		h.Unregister(c)
	}
	return len(stale)
}

// IsUserConnected checks if a user has any active connections.
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	return h.registry.IsUserConnected(userID)
}

// Stats reports registry occupancy and subscription spread.
func (h *Hub) Stats() HubStats {
	reg := h.registry.Stats()
	return HubStats{
		TotalConnections:     reg.TotalConnections,
		UniqueUsers:          reg.UniqueUsers,
		ConnectionsPerUser:   reg.ConnectionsPerUser,
		ActiveTopics:         h.subscriptions.TopicCount(),
		ProjectSubscriptions: h.subscriptions.SubscriberCounts(),
	}
}

func (h *Hub) subscribe(c *Connection, projectID uuid.UUID) {
	h.subscriptions.Subscribe(c.UserID, projectID)
	h.logger.Debug("user subscribed to project",
		"user_id", c.UserID,
		"project_id", projectID,
	)
}

func (h *Hub) unsubscribe(c *Connection, projectID uuid.UUID) {
	h.subscriptions.Unsubscribe(c.UserID, projectID)
	h.logger.Debug("user unsubscribed from project",
		"user_id", c.UserID,
		"project_id", projectID,
	)
}

// broadcastUserStatus announces presence on every topic the user holds.
func (h *Hub) broadcastUserStatus(userID uuid.UUID, online bool) {
	for _, projectID := range h.subscriptions.TopicsOf(userID) {
		h.Broadcast(domain.NewUserStatusEvent(userID, projectID, online))
	}
}
