package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionIndex_SubscribeIsIdempotent(t *testing.T) {
	s := NewSubscriptionIndex()
	userID := uuid.New()
	projectID := uuid.New()

	s.Subscribe(userID, projectID)
	s.Subscribe(userID, projectID)

	assert.Equal(t, []uuid.UUID{userID}, s.SubscribersOf(projectID))
	assert.Equal(t, []uuid.UUID{projectID}, s.TopicsOf(userID))
	assert.Equal(t, 1, s.TopicCount())
}

func TestSubscriptionIndex_UnsubscribePrunesEmptyEntries(t *testing.T) {
	s := NewSubscriptionIndex()
	userID := uuid.New()
	projectID := uuid.New()

	s.Subscribe(userID, projectID)
	s.Unsubscribe(userID, projectID)

	assert.Nil(t, s.SubscribersOf(projectID))
	assert.Nil(t, s.TopicsOf(userID))
	assert.Equal(t, 0, s.TopicCount())
}

func TestSubscriptionIndex_UnsubscribeUnknownIsNoOp(t *testing.T) {
	s := NewSubscriptionIndex()
	userID := uuid.New()
	projectID := uuid.New()

	s.Unsubscribe(userID, projectID)
	s.Unsubscribe(uuid.New(), projectID)

	assert.Equal(t, 0, s.TopicCount())
}

func TestSubscriptionIndex_IsSubscribed(t *testing.T) {
	s := NewSubscriptionIndex()
	userID := uuid.New()
	projectID := uuid.New()

	assert.False(t, s.IsSubscribed(userID, projectID))
	s.Subscribe(userID, projectID)
	assert.True(t, s.IsSubscribed(userID, projectID))
	assert.False(t, s.IsSubscribed(uuid.New(), projectID))
}

func TestSubscriptionIndex_RemoveUser(t *testing.T) {
	s := NewSubscriptionIndex()
	userID := uuid.New()
	otherID := uuid.New()
	projectA := uuid.New()
	projectB := uuid.New()

	s.Subscribe(userID, projectA)
	s.Subscribe(userID, projectB)
	s.Subscribe(otherID, projectA)

	removed := s.RemoveUser(userID)
	assert.ElementsMatch(t, []uuid.UUID{projectA, projectB}, removed)

	// The other user's subscription survives; the topic only the
	// removed user held is pruned.
	require.Equal(t, []uuid.UUID{otherID}, s.SubscribersOf(projectA))
	assert.Nil(t, s.SubscribersOf(projectB))
	assert.Equal(t, 1, s.TopicCount())
}

func TestSubscriptionIndex_RemoveUserWithoutSubscriptions(t *testing.T) {
	s := NewSubscriptionIndex()

	assert.Nil(t, s.RemoveUser(uuid.New()))
}

func TestSubscriptionIndex_SubscriberCounts(t *testing.T) {
	s := NewSubscriptionIndex()
	projectID := uuid.New()

	s.Subscribe(uuid.New(), projectID)
	s.Subscribe(uuid.New(), projectID)

	counts := s.SubscriberCounts()
	assert.Equal(t, 2, counts[projectID.String()])
}
