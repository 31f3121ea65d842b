package realtime

import (
	"testing"
	"time"
)

func TestHubPublishScopedByRoom(t *testing.T) {
	hub := NewHub()
	_, roomA, cancelA := hub.Subscribe("account-a", 8)
	defer cancelA()
	_, roomB, cancelB := hub.Subscribe("account-b", 8)
	defer cancelB()

	hub.Publish("account-a", Event{Type: TypeMessageCreated})

	select {
	case <-roomA:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected event for account-a subscriber")
	}

	select {
	case <-roomB:
		t.Fatalf("did not expect account-b subscriber to receive account-a event")
	case <-time.After(120 * time.Millisecond):
	}
}

func TestHubCancelUnsubscribe(t *testing.T) {
	hub := NewHub()
	_, stream, cancel := hub.Subscribe("account-a", 8)
	cancel()

	select {
	case _, ok := <-stream:
		if ok {
			t.Fatalf("expected stream to be closed after cancel")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timed out waiting for stream close")
	}
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	_, stream, cancel := hub.Subscribe("account-a", 1)
	defer cancel()

	hub.Publish("account-a", Event{Type: TypeMessageCreated})
	hub.Publish("account-a", Event{Type: TypeMessageCreated})
	hub.Publish("account-a", Event{Type: TypeMessageCreated})

	select {
	case <-stream:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected at least one event in buffer")
	}
}

func TestHubOrderPreservedPerPublisher(t *testing.T) {
	hub := NewHub()
	_, stream, cancel := hub.Subscribe("account-a", 8)
	defer cancel()

	hub.Publish("account-a", Event{Type: TypeMessageCreated, ConversationID: "1"})
	hub.Publish("account-a", Event{Type: TypeMessageCreated, ConversationID: "2"})
	hub.Publish("account-a", Event{Type: TypeMessageCreated, ConversationID: "3"})

	for _, want := range []string{"1", "2", "3"} {
		select {
		case got := <-stream:
			if got.ConversationID != want {
				t.Fatalf("expected conversation %s, got %s", want, got.ConversationID)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("timed out waiting for event %s", want)
		}
	}
}
