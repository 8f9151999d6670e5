package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/middleware"
)

type EventsHandler struct {
	hub       *services.LiveHub
	logger    *logger.Logger
	heartbeat time.Duration
}

func NewEventsHandler(hub *services.LiveHub, heartbeat time.Duration, logger *logger.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &EventsHandler{hub: hub, logger: logger, heartbeat: heartbeat}
}

// Handle streams live events to one client until it disconnects. The
// stream carries hints only; a client that misses an event just serves a
// slightly stale task list until its next fetch.
func (h *EventsHandler) Handle(c *websocket.Conn) {
	user, ok := c.Locals(middleware.UserLocalKey).(*domain.User)
	if !ok || user == nil {
		h.logger.Warnw("events_missing_user")
		c.Close()
		return
	}

	sub := h.hub.Subscribe(user.ID)
	defer sub.Close()

	if err := c.WriteJSON(domain.LiveEvent{
		Type:      domain.LiveEventConnected,
		Timestamp: time.Now(),
	}); err != nil {
		h.logger.Warnw("events_connected_write_failed", "user_id", user.ID, "error", err)
		return
	}

	done := make(chan struct{})

	// The read loop exists to notice the disconnect; clients send nothing
	// meaningful upstream.
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, open := <-sub.Events():
			if !open {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				h.logger.Warnw("events_write_failed", "user_id", user.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.WriteJSON(domain.LiveEvent{
				Type:      domain.LiveEventHeartbeat,
				Timestamp: time.Now(),
			}); err != nil {
				return
			}
		case <-done:
			h.logger.Infow("events_client_disconnected", "user_id", user.ID)
			return
		}
	}
}
