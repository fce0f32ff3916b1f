package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks every open connection and indexes them by user.
// A single user can have multiple connections (multiple tabs/devices).
type Registry struct {
	// connections maps connection IDs to connections
	connections map[uuid.UUID]*Connection

	// users maps user IDs to their active connections
	users map[uuid.UUID]map[uuid.UUID]*Connection

	// mu protects both maps
	mu sync.RWMutex
}

// RegistryStats is a point-in-time snapshot of registry occupancy.
type RegistryStats struct {
	TotalConnections   int            `json:"total_connections"`
	UniqueUsers        int            `json:"unique_users"`
	ConnectionsPerUser map[string]int `json:"connections_per_user"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[uuid.UUID]*Connection),
		users:       make(map[uuid.UUID]map[uuid.UUID]*Connection),
	}
}

// Add records a connection. It reports whether this is the user's first
// active connection, which is the user-came-online edge.
func (r *Registry) Add(c *Connection) (firstForUser bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[c.ID] = c
	userConns, ok := r.users[c.UserID]
	if !ok {
		userConns = make(map[uuid.UUID]*Connection)
		r.users[c.UserID] = userConns
	}
	firstForUser = len(userConns) == 0
	userConns[c.ID] = c
	return firstForUser
}

// Remove drops a connection by ID. It is idempotent: removing an unknown
// connection returns ok=false. lastForUser reports the user-went-offline
// edge. Empty user entries are pruned.
func (r *Registry) Remove(connectionID uuid.UUID) (c *Connection, lastForUser, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok = r.connections[connectionID]
	if !ok {
		return nil, false, false
	}
	delete(r.connections, connectionID)

	if userConns, exists := r.users[c.UserID]; exists {
		delete(userConns, connectionID)
		if len(userConns) == 0 {
			delete(r.users, c.UserID)
			lastForUser = true
		}
	}
	return c, lastForUser, true
}

// Get looks up a connection by ID.
func (r *Registry) Get(connectionID uuid.UUID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[connectionID]
	return c, ok
}

// ConnectionsFor returns a snapshot of a user's active connections.
func (r *Registry) ConnectionsFor(userID uuid.UUID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userConns, ok := r.users[userID]
	if !ok {
		return nil
	}
	conns := make([]*Connection, 0, len(userConns))
	for _, c := range userConns {
		conns = append(conns, c)
	}
	return conns
}

// Snapshot returns a copy of every active connection. Callers iterate it
// without holding the registry lock, so concurrent registrations and
// removals never block on a slow sweep.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		conns = append(conns, c)
	}
	return conns
}

// IsUserConnected checks if a user has any active connections.
func (r *Registry) IsUserConnected(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// Stats reports current occupancy.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perUser := make(map[string]int, len(r.users))
	for userID, conns := range r.users {
		perUser[userID.String()] = len(conns)
	}
	return RegistryStats{
		TotalConnections:   len(r.connections),
		UniqueUsers:        len(r.users),
		ConnectionsPerUser: perUser,
	}
}

// StaleBefore returns connections whose last activity is older than the
// cutoff.
func (r *Registry) StaleBefore(cutoff time.Time) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*Connection
	for _, c := range r.connections {
		if c.LastSeen().Before(cutoff) {
			stale = append(stale, c)
		}
	}
	return stale
}
