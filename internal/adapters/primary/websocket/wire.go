package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
)

// Outbound frames come in two shapes: event envelopes fanned out to
// subscribers, and control frames answering a single connection.

// clientFrame is the structure for messages sent from the client.
// project_id sits at the top level of the frame.
type clientFrame struct {
	Type      string     `json:"type"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

const (
	frameTypePing               = "ping"
	frameTypePong               = "pong"
	frameTypeSubscribeProject   = "subscribe_project"
	frameTypeUnsubscribeProject = "unsubscribe_project"
	frameTypeSubscribed         = "subscribed"
	frameTypeUnsubscribed       = "unsubscribed"
	frameTypeError              = "error"
)

// marshalEvent encodes an event envelope. Task events carry the task
// snapshot under data.task_data; presence events merge their payload
// into data directly.
func marshalEvent(event domain.Event) ([]byte, error) {
	data := map[string]interface{}{
		"user_id":    event.UserID.String(),
		"project_id": event.ProjectID.String(),
		"timestamp":  event.Timestamp.UTC().Format(time.RFC3339),
	}
	if event.TaskID != nil {
		data["task_id"] = event.TaskID.String()
		data["task_data"] = event.Payload
	} else {
		for k, v := range event.Payload {
			data[k] = v
		}
	}

	return json.Marshal(map[string]interface{}{
		"event": event.Kind,
		"data":  data,
	})
}

// marshalConnected encodes the acknowledgement sent right after a
// connection is registered.
func marshalConnected(connectionID, userID uuid.UUID) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"event": "connected",
		"data": map[string]interface{}{
			"connection_id": connectionID.String(),
			"user_id":       userID.String(),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// marshalControl encodes a control frame with an optional data object.
func marshalControl(frameType string, data map[string]interface{}) ([]byte, error) {
	frame := map[string]interface{}{
		"type":      frameType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		frame["data"] = data
	}
	return json.Marshal(frame)
}

// marshalError encodes a one-off error frame. The connection stays open.
func marshalError(message string) ([]byte, error) {
	return marshalControl(frameTypeError, map[string]interface{}{"message": message})
}
