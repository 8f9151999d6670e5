package services

import (
	"sync"

	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

const subscriberBuffer = 16

// LiveHub fans task-state events out to every open client of a user.
// Events are cache-invalidation hints, not state: a slow subscriber may
// have events dropped, which costs nothing because every event triggers a
// full re-fetch on the client.
type LiveHub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[*LiveSubscriber]struct{}
	logger      *logger.Logger
	closed      bool
}

type LiveSubscriber struct {
	userID uint
	events chan domain.LiveEvent
	hub    *LiveHub
	once   sync.Once
}

func NewLiveHub(logger *logger.Logger) *LiveHub {
	return &LiveHub{
		subscribers: make(map[uint]map[*LiveSubscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers one client connection for a user. The caller owns
// the subscription and must Close it when the connection ends.
func (h *LiveHub) Subscribe(userID uint) *LiveSubscriber {
	sub := &LiveSubscriber{
		userID: userID,
		events: make(chan domain.LiveEvent, subscriberBuffer),
		hub:    h,
	}

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[*LiveSubscriber]struct{})
	}
	h.subscribers[userID][sub] = struct{}{}
	count := len(h.subscribers[userID])
	h.mu.Unlock()

	h.logger.Infow("live_subscribe", "user_id", userID, "connections", count)
	return sub
}

func (s *LiveSubscriber) Events() <-chan domain.LiveEvent {
	return s.events
}

// Close unsubscribes and releases the channel. Safe to call repeatedly.
func (s *LiveSubscriber) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if subs, ok := s.hub.subscribers[s.userID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.subscribers, s.userID)
			}
		}
		s.hub.mu.Unlock()
		close(s.events)
		s.hub.logger.Infow("live_unsubscribe", "user_id", s.userID)
	})
}

// Publish delivers an event to all of one user's open clients. Sends never
// block; a full subscriber simply misses the hint.
func (h *LiveHub) Publish(userID uint, event domain.LiveEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for sub := range h.subscribers[userID] {
		select {
		case sub.events <- event:
		default:
			h.logger.Warnw("live_event_dropped", "user_id", userID, "type", event.Type)
		}
	}
}

// Broadcast delivers an event to every connected user, used when a new
// task is published for everyone.
func (h *LiveHub) Broadcast(event domain.LiveEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for userID, subs := range h.subscribers {
		for sub := range subs {
			select {
			case sub.events <- event:
			default:
				h.logger.Warnw("live_event_dropped", "user_id", userID, "type", event.Type)
			}
		}
	}
}

// Shutdown stops delivery. Existing subscribers keep their channels until
// they Close; they just receive nothing further.
func (h *LiveHub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}
