package realtime

import (
	"testing"
	"time"
)

func TestPublisherFansOutToParticipants(t *testing.T) {
	hub := NewHub()
	pub := NewPublisher(nil, hub)

	_, a, cancelA := hub.Subscribe("acct-a", 4)
	defer cancelA()
	_, b, cancelB := hub.Subscribe("acct-b", 4)
	defer cancelB()
	_, admin, cancelAdmin := hub.Subscribe(RoomAdmin, 4)
	defer cancelAdmin()

	pub.PublishToParticipants([]string{"acct-a", "acct-b", "acct-a"}, Event{Type: TypeMessageCreated})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case <-ch:
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("participant %s did not receive event", name)
		}
	}

	// messageCreated is not a staff type.
	select {
	case <-admin:
		t.Fatal("did not expect admin room to receive messageCreated")
	case <-time.After(120 * time.Millisecond):
	}
}

func TestPublisherMirrorsStaffTypesToAdminRoom(t *testing.T) {
	hub := NewHub()
	pub := NewPublisher(nil, hub)

	_, admin, cancel := hub.Subscribe(RoomAdmin, 4)
	defer cancel()

	pub.PublishToParticipants([]string{"acct-a"}, Event{Type: TypeApprovalNeeded, ConversationID: "c1"})

	select {
	case got := <-admin:
		if got.Type != TypeApprovalNeeded {
			t.Fatalf("expected approvalNeeded in admin room, got %s", got.Type)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("admin room did not receive approvalNeeded")
	}
}
