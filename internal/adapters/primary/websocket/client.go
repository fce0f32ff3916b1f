package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Capacity of each connection's outbound buffer.
	sendBufferSize = 256
)

// Connection is a middleman between one websocket connection and the hub.
type Connection struct {
	// ID is assigned at registration and identifies this connection for
	// its whole lifetime.
	ID uuid.UUID

	// UserID of the authenticated user behind this connection.
	UserID uuid.UUID

	hub  *Hub
	conn *websocket.Conn

	// send is the buffered channel of outbound frames. It is never
	// closed; done signals the write pump to drain off instead.
	send chan []byte

	// done is closed exactly once when the connection dies. Senders
	// select on it so a send after close fails instead of panicking.
	done      chan struct{}
	closeOnce sync.Once

	// mu protects lastSeen
	mu       sync.RWMutex
	lastSeen time.Time

	logger *slog.Logger
}

func newConnection(hub *Hub, conn *websocket.Conn, userID uuid.UUID, logger *slog.Logger) *Connection {
	id := uuid.New()
	return &Connection{
		ID:       id,
		UserID:   userID,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		lastSeen: time.Now().UTC(),
		logger:   logger.With("connection_id", id.String(), "user_id", userID.String()),
	}
}

// Touch refreshes the liveness timestamp.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now().UTC()
	c.mu.Unlock()
}

// LastSeen returns the time of the last liveness signal.
func (c *Connection) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

// markClosed flips the connection to closed exactly once.
func (c *Connection) markClosed() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Closed reports whether the connection has been marked closed.
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// trySend queues a frame without blocking. It reports false when the
// connection is closed or its buffer is full; the caller decides what to
// do with the failure.
func (c *Connection) trySend(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// sendControl marshals and queues a control frame, logging on failure.
func (c *Connection) sendControl(frameType string, data map[string]interface{}) {
	frame, err := marshalControl(frameType, data)
	if err != nil {
		c.logger.Error("failed to marshal control frame", "type", frameType, "error", err)
		return
	}
	if !c.trySend(frame) {
		c.logger.Debug("dropped control frame", "type", frameType)
	}
}

func (c *Connection) sendError(message string) {
	frame, err := marshalError(message)
	if err != nil {
		c.logger.Error("failed to marshal error frame", "error", err)
		return
	}
	if !c.trySend(frame) {
		c.logger.Debug("dropped error frame")
	}
}

// ReadPump pumps messages from the websocket connection to the dispatcher.
// This method runs in its own goroutine.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		c.Touch()
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleFrame(message)
	}
}

// WritePump pumps frames from the hub to the websocket connection.
// All socket writes happen here, so per-connection writes are serialized.
// This method runs in its own goroutine.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("failed to write frame", "error", err)
				return
			}

		case <-c.done:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			}
			return

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// handleFrame processes one inbound frame. Malformed or unknown frames
// get a single error reply and leave the connection state untouched.
func (c *Connection) handleFrame(message []byte) {
	var frame clientFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.logger.Warn("failed to unmarshal client frame", "error", err)
		c.sendError("invalid JSON")
		return
	}

	switch frame.Type {
	case frameTypePing:
		c.Touch()
		c.sendControl(frameTypePong, nil)

	case frameTypeSubscribeProject:
		if frame.ProjectID == nil {
			c.sendError("project_id is required")
			return
		}
		c.hub.subscribe(c, *frame.ProjectID)
		c.sendControl(frameTypeSubscribed, map[string]interface{}{
			"project_id": frame.ProjectID.String(),
		})

	case frameTypeUnsubscribeProject:
		if frame.ProjectID == nil {
			c.sendError("project_id is required")
			return
		}
		c.hub.unsubscribe(c, *frame.ProjectID)
		c.sendControl(frameTypeUnsubscribed, map[string]interface{}{
			"project_id": frame.ProjectID.String(),
		})

	default:
		c.logger.Debug("received unknown frame type", "type", frame.Type)
		c.sendError("unknown message type: " + frame.Type)
	}
}
