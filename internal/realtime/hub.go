package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultBufferSize is the default per-subscriber channel buffer.
const DefaultBufferSize = 64

// Hub is an in-process pub/sub dispatcher for room-scoped events. Delivery is
// at-most-once per connected subscriber; disconnected parties catch up through
// the paged message history.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]map[string]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		streams: map[string]map[string]chan Event{},
	}
}

// Publish broadcasts one event to all subscribers of the room.
// Slow subscribers are dropped in a non-blocking way.
func (h *Hub) Publish(room string, event Event) {
	if h == nil {
		return
	}
	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.streams[room] {
		select {
		case ch <- event:
		default:
			// Drop if receiver is slow to avoid blocking the publish path.
		}
	}
}

// Subscribe registers one subscriber in a room.
// It returns a stream ID, read-only event channel, and a cancel function.
func (h *Hub) Subscribe(room string, buffer int) (string, <-chan Event, func()) {
	if h == nil {
		ch := make(chan Event)
		close(ch)
		return "", ch, func() {}
	}
	room = strings.TrimSpace(room)
	if room == "" {
		ch := make(chan Event)
		close(ch)
		return "", ch, func() {}
	}
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	streamID := uuid.NewString()
	ch := make(chan Event, buffer)

	h.mu.Lock()
	streams, ok := h.streams[room]
	if !ok {
		streams = map[string]chan Event{}
		h.streams[room] = streams
	}
	streams[streamID] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			streams := h.streams[room]
			if streams != nil {
				if current, ok := streams[streamID]; ok {
					delete(streams, streamID)
					close(current)
				}
				if len(streams) == 0 {
					delete(h.streams, room)
				}
			}
			h.mu.Unlock()
		})
	}

	return streamID, ch, cancel
}
