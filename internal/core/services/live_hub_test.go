package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/earnly/backend/internal/domain"
)

func TestLiveHubPublishTargetsOneUser(t *testing.T) {
	hub := NewLiveHub(testLogger())

	alice := hub.Subscribe(1)
	defer alice.Close()
	bob := hub.Subscribe(2)
	defer bob.Close()

	hub.Publish(1, domain.LiveEvent{Type: domain.LiveEventTaskUpdated, TaskID: 7})

	select {
	case event := <-alice.Events():
		assert.Equal(t, domain.LiveEventTaskUpdated, event.Type)
		assert.Equal(t, uint(7), event.TaskID)
	default:
		t.Fatal("expected an event for the targeted user")
	}

	select {
	case <-bob.Events():
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestLiveHubBroadcastReachesEveryConnection(t *testing.T) {
	hub := NewLiveHub(testLogger())

	subs := []*LiveSubscriber{hub.Subscribe(1), hub.Subscribe(1), hub.Subscribe(2)}
	for _, sub := range subs {
		defer sub.Close()
	}

	hub.Broadcast(domain.LiveEvent{Type: domain.LiveEventTaskCreated, TaskID: 3})

	for _, sub := range subs {
		select {
		case event := <-sub.Events():
			assert.Equal(t, domain.LiveEventTaskCreated, event.Type)
		default:
			t.Fatal("broadcast missed a connection")
		}
	}
}

func TestLiveHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewLiveHub(testLogger())

	sub := hub.Subscribe(1)
	defer sub.Close()

	// Overfill the buffer; the hub must not block.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(1, domain.LiveEvent{Type: domain.LiveEventTaskUpdated})
	}

	received := 0
	for {
		select {
		case <-sub.Events():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestLiveHubCloseIsIdempotent(t *testing.T) {
	hub := NewLiveHub(testLogger())

	sub := hub.Subscribe(1)
	sub.Close()
	require.NotPanics(t, sub.Close)

	// Publishing after the last close must not panic or deliver.
	require.NotPanics(t, func() {
		hub.Publish(1, domain.LiveEvent{Type: domain.LiveEventTaskUpdated})
	})

	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestLiveHubShutdownStopsDelivery(t *testing.T) {
	hub := NewLiveHub(testLogger())

	sub := hub.Subscribe(1)
	defer sub.Close()

	hub.Shutdown()
	hub.Publish(1, domain.LiveEvent{Type: domain.LiveEventTaskUpdated})

	select {
	case <-sub.Events():
		t.Fatal("delivery after shutdown")
	default:
	}
}
