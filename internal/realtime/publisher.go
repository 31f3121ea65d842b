package realtime

import (
	"log/slog"
)

// Publisher fans events out to the rooms that must see them: every
// participant's identity room, plus the shared admin room for event types
// that need staff attention.
type Publisher struct {
	hub    *Hub
	logger *slog.Logger
}

// NewPublisher creates a publisher over the given hub.
func NewPublisher(log *slog.Logger, hub *Hub) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		hub:    hub,
		logger: log.With(slog.String("service", "realtime")),
	}
}

// PublishToParticipants delivers the event to each participant room and, for
// staff-relevant types, the admin room. Events from a single caller reach all
// subscribers in publish order; no ordering is guaranteed across callers.
func (p *Publisher) PublishToParticipants(participantIDs []string, event Event) {
	if p == nil || p.hub == nil {
		return
	}
	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p.hub.Publish(id, event)
	}
	if staffTypes[event.Type] {
		p.hub.Publish(RoomAdmin, event)
	}
}

// PublishToStaff delivers the event to the admin room only.
func (p *Publisher) PublishToStaff(event Event) {
	if p == nil || p.hub == nil {
		return
	}
	p.hub.Publish(RoomAdmin, event)
}
