package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// SubscriptionIndex maps project topics to the users subscribed to them.
// Subscriptions are keyed by user, not by connection: every connection a
// user holds sees the events of the projects that user subscribed to.
//
// A reverse index from user to topics is kept in lock-step so that
// disconnect cleanup touches only the user's own topics instead of
// scanning the whole table.
type SubscriptionIndex struct {
	// topics maps project IDs to subscribed user sets
	topics map[uuid.UUID]map[uuid.UUID]struct{}

	// userTopics maps user IDs to the projects they subscribe to
	userTopics map[uuid.UUID]map[uuid.UUID]struct{}

	// mu protects both maps
	mu sync.RWMutex
}

// NewSubscriptionIndex creates an empty index.
func NewSubscriptionIndex() *SubscriptionIndex {
	return &SubscriptionIndex{
		topics:     make(map[uuid.UUID]map[uuid.UUID]struct{}),
		userTopics: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Subscribe adds a user to a project topic. Subscribing twice is a no-op.
func (s *SubscriptionIndex) Subscribe(userID, projectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.topics[projectID] == nil {
		s.topics[projectID] = make(map[uuid.UUID]struct{})
	}
	s.topics[projectID][userID] = struct{}{}

	if s.userTopics[userID] == nil {
		s.userTopics[userID] = make(map[uuid.UUID]struct{})
	}
	s.userTopics[userID][projectID] = struct{}{}
}

// Unsubscribe removes a user from a project topic. Unsubscribing a user
// who never subscribed is a no-op. Empty entries are pruned on both sides.
func (s *SubscriptionIndex) Unsubscribe(userID, projectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked(userID, projectID)
}

func (s *SubscriptionIndex) unsubscribeLocked(userID, projectID uuid.UUID) {
	if users, ok := s.topics[projectID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(s.topics, projectID)
		}
	}
	if topics, ok := s.userTopics[userID]; ok {
		delete(topics, projectID)
		if len(topics) == 0 {
			delete(s.userTopics, userID)
		}
	}
}

// SubscribersOf returns a snapshot of the users subscribed to a project.
func (s *SubscriptionIndex) SubscribersOf(projectID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, ok := s.topics[projectID]
	if !ok {
		return nil
	}
	subscribers := make([]uuid.UUID, 0, len(users))
	for userID := range users {
		subscribers = append(subscribers, userID)
	}
	return subscribers
}

// TopicsOf returns a snapshot of the projects a user subscribes to.
func (s *SubscriptionIndex) TopicsOf(userID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics, ok := s.userTopics[userID]
	if !ok {
		return nil
	}
	projects := make([]uuid.UUID, 0, len(topics))
	for projectID := range topics {
		projects = append(projects, projectID)
	}
	return projects
}

// IsSubscribed checks whether a user subscribes to a project.
func (s *SubscriptionIndex) IsSubscribed(userID, projectID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, ok := s.topics[projectID]
	if !ok {
		return false
	}
	_, subscribed := users[userID]
	return subscribed
}

// RemoveUser drops every subscription a user holds and returns the
// topics they were removed from.
func (s *SubscriptionIndex) RemoveUser(userID uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, ok := s.userTopics[userID]
	if !ok {
		return nil
	}
	removed := make([]uuid.UUID, 0, len(topics))
	for projectID := range topics {
		removed = append(removed, projectID)
	}
	for _, projectID := range removed {
		s.unsubscribeLocked(userID, projectID)
	}
	return removed
}

// TopicCount returns the number of topics with at least one subscriber.
func (s *SubscriptionIndex) TopicCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics)
}

// SubscriberCounts returns per-topic subscriber counts keyed by project ID.
func (s *SubscriptionIndex) SubscriberCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.topics))
	for projectID, users := range s.topics {
		counts[projectID.String()] = len(users)
	}
	return counts
}
