package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/core/domain"
)

// receiveFrame pops one queued frame from a connection's send buffer.
func receiveFrame(t *testing.T, c *Connection) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Connection) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame queued: %s", raw)
	default:
	}
}

func taskEvent(actorID, projectID uuid.UUID) domain.Event {
	taskID := uuid.New()
	return domain.Event{
		Kind:      domain.EventTaskUpdated,
		TaskID:    &taskID,
		UserID:    actorID,
		ProjectID: projectID,
		Payload:   map[string]interface{}{"id": taskID.String(), "title": "Test"},
		Timestamp: time.Now().UTC(),
	}
}

func TestHub_RegisterQueuesConnectedAck(t *testing.T) {
	h := NewHub(testLogger())
	userID := uuid.New()

	c := h.Register(nil, userID)

	frame := receiveFrame(t, c)
	assert.Equal(t, "connected", frame["event"])
	data := frame["data"].(map[string]interface{})
	assert.Equal(t, c.ID.String(), data["connection_id"])
	assert.Equal(t, userID.String(), data["user_id"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestHub_BroadcastSkipsOriginatingUser(t *testing.T) {
	h := NewHub(testLogger())
	actorID := uuid.New()
	viewerID := uuid.New()
	projectID := uuid.New()

	actorTab1 := h.Register(nil, actorID)
	actorTab2 := h.Register(nil, actorID)
	viewer := h.Register(nil, viewerID)
	receiveFrame(t, actorTab1)
	receiveFrame(t, actorTab2)
	receiveFrame(t, viewer)

	h.subscriptions.Subscribe(actorID, projectID)
	h.subscriptions.Subscribe(viewerID, projectID)

	delivered := h.Broadcast(taskEvent(actorID, projectID))

	assert.Equal(t, 1, delivered)
	frame := receiveFrame(t, viewer)
	assert.Equal(t, string(domain.EventTaskUpdated), frame["event"])
	data := frame["data"].(map[string]interface{})
	assert.Equal(t, actorID.String(), data["user_id"])
	assert.Equal(t, projectID.String(), data["project_id"])
	assert.NotNil(t, data["task_data"])

	// Neither of the actor's own connections sees the echo.
	assertNoFrame(t, actorTab1)
	assertNoFrame(t, actorTab2)
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	h := NewHub(testLogger())
	c := h.Register(nil, uuid.New())
	receiveFrame(t, c)

	delivered := h.Broadcast(taskEvent(uuid.New(), uuid.New()))

	assert.Equal(t, 0, delivered)
	assertNoFrame(t, c)
}

func TestHub_BroadcastDeliversToAllConnectionsOfSubscriber(t *testing.T) {
	h := NewHub(testLogger())
	viewerID := uuid.New()
	projectID := uuid.New()

	tab1 := h.Register(nil, viewerID)
	tab2 := h.Register(nil, viewerID)
	receiveFrame(t, tab1)
	receiveFrame(t, tab2)
	h.subscriptions.Subscribe(viewerID, projectID)

	delivered := h.Broadcast(taskEvent(uuid.New(), projectID))

	assert.Equal(t, 2, delivered)
	receiveFrame(t, tab1)
	receiveFrame(t, tab2)
}

func TestHub_BroadcastUnregistersFailedConnectionAndContinues(t *testing.T) {
	h := NewHub(testLogger())
	stuckID := uuid.New()
	healthyID := uuid.New()
	projectID := uuid.New()

	stuck := h.Register(nil, stuckID)
	healthy := h.Register(nil, healthyID)
	receiveFrame(t, stuck)
	receiveFrame(t, healthy)
	h.subscriptions.Subscribe(stuckID, projectID)
	h.subscriptions.Subscribe(healthyID, projectID)

	// Fill the stuck connection's buffer so the next send fails.
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, stuck.trySend([]byte("{}")))
	}

	delivered := h.Broadcast(taskEvent(uuid.New(), projectID))

	// The healthy subscriber still got the event.
	assert.Equal(t, 1, delivered)
	receiveFrame(t, healthy)

	// The stuck connection was dropped, not retried.
	assert.True(t, stuck.Closed())
	assert.False(t, h.registry.IsUserConnected(stuckID))
	assert.True(t, h.registry.IsUserConnected(healthyID))
}

func TestHub_BroadcastToClosedConnectionUnregisters(t *testing.T) {
	h := NewHub(testLogger())
	viewerID := uuid.New()
	projectID := uuid.New()

	viewer := h.Register(nil, viewerID)
	receiveFrame(t, viewer)
	h.subscriptions.Subscribe(viewerID, projectID)

	viewer.markClosed()

	delivered := h.Broadcast(taskEvent(uuid.New(), projectID))

	assert.Equal(t, 0, delivered)
	assert.False(t, h.registry.IsUserConnected(viewerID))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := NewHub(testLogger())
	c := h.Register(nil, uuid.New())

	h.Unregister(c)
	h.Unregister(c)

	assert.True(t, c.Closed())
	assert.Equal(t, 0, h.registry.Stats().TotalConnections)
}

func TestHub_LastDisconnectDropsSubscriptionsAndBroadcastsOffline(t *testing.T) {
	h := NewHub(testLogger())
	leavingID := uuid.New()
	stayingID := uuid.New()
	projectID := uuid.New()

	leaving := h.Register(nil, leavingID)
	staying := h.Register(nil, stayingID)
	receiveFrame(t, leaving)
	receiveFrame(t, staying)
	h.subscriptions.Subscribe(leavingID, projectID)
	h.subscriptions.Subscribe(stayingID, projectID)

	h.Unregister(leaving)

	assert.False(t, h.subscriptions.IsSubscribed(leavingID, projectID))

	frame := receiveFrame(t, staying)
	assert.Equal(t, string(domain.EventUserStatus), frame["event"])
	data := frame["data"].(map[string]interface{})
	assert.Equal(t, leavingID.String(), data["user_id"])
	assert.Equal(t, "offline", data["status"])
}

func TestHub_SecondConnectionSurvivesFirstDisconnect(t *testing.T) {
	h := NewHub(testLogger())
	userID := uuid.New()
	projectID := uuid.New()

	tab1 := h.Register(nil, userID)
	tab2 := h.Register(nil, userID)
	receiveFrame(t, tab1)
	receiveFrame(t, tab2)
	h.subscriptions.Subscribe(userID, projectID)

	h.Unregister(tab1)

	// Subscriptions are user-scoped and the user is still online.
	assert.True(t, h.subscriptions.IsSubscribed(userID, projectID))
	assert.True(t, h.registry.IsUserConnected(userID))
}

func TestHub_FirstConnectionBroadcastsOnline(t *testing.T) {
	h := NewHub(testLogger())
	watcherID := uuid.New()
	arrivingID := uuid.New()
	projectID := uuid.New()

	watcher := h.Register(nil, watcherID)
	receiveFrame(t, watcher)
	h.subscriptions.Subscribe(watcherID, projectID)

	// The arriving user already holds a subscription from a previous
	// session shape: subscribe first, then connect.
	h.subscriptions.Subscribe(arrivingID, projectID)
	arriving := h.Register(nil, arrivingID)
	receiveFrame(t, arriving)

	frame := receiveFrame(t, watcher)
	assert.Equal(t, string(domain.EventUserStatus), frame["event"])
	data := frame["data"].(map[string]interface{})
	assert.Equal(t, "online", data["status"])
	assert.Equal(t, arrivingID.String(), data["user_id"])
}

func TestHub_EvictStale(t *testing.T) {
	h := NewHub(testLogger())
	freshID := uuid.New()
	staleID := uuid.New()

	fresh := h.Register(nil, freshID)
	stale := h.Register(nil, staleID)
	receiveFrame(t, fresh)
	receiveFrame(t, stale)

	stale.mu.Lock()
	stale.lastSeen = time.Now().UTC().Add(-10 * time.Minute)
	stale.mu.Unlock()

	evicted := h.EvictStale(5 * time.Minute)

	assert.Equal(t, 1, evicted)
	assert.True(t, stale.Closed())
	assert.False(t, h.registry.IsUserConnected(staleID))
	assert.True(t, h.registry.IsUserConnected(freshID))
}

func TestHub_EvictStaleWithNothingStale(t *testing.T) {
	h := NewHub(testLogger())
	c := h.Register(nil, uuid.New())
	receiveFrame(t, c)

	assert.Equal(t, 0, h.EvictStale(5*time.Minute))
	assert.Equal(t, 1, h.registry.Stats().TotalConnections)
}

func TestHub_PublishNeverReportsDeliveryFailures(t *testing.T) {
	h := NewHub(testLogger())

	event := taskEvent(uuid.New(), uuid.New())
	event.Timestamp = time.Time{}

	assert.NoError(t, h.Publish(event))
}

func TestHub_Stats(t *testing.T) {
	h := NewHub(testLogger())
	userID := uuid.New()
	projectID := uuid.New()

	h.Register(nil, userID)
	h.Register(nil, userID)
	h.subscriptions.Subscribe(userID, projectID)

	stats := h.Stats()

	assert.Equal(t, 2, stats.TotalConnections)
	assert.Equal(t, 1, stats.UniqueUsers)
	assert.Equal(t, 2, stats.ConnectionsPerUser[userID.String()])
	assert.Equal(t, 1, stats.ActiveTopics)
	assert.Equal(t, 1, stats.ProjectSubscriptions[projectID.String()])
}
