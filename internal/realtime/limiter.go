package realtime

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited signals that an identity exceeded its publish budget. The
// event is rejected and not broadcast; the caller should inform the sender.
var ErrRateLimited = errors.New("rate limited")

const limiterIdleTTL = 10 * time.Minute

// Limiter throttles events per identity: at most `events` within `window`.
// State is ephemeral and resets on restart; it softens abuse, it is not a
// security boundary.
type Limiter struct {
	mu      sync.Mutex
	events  int
	window  time.Duration
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a per-identity limiter allowing events per window
// (e.g. 10 per 60s).
func NewLimiter(events int, window time.Duration) *Limiter {
	if events <= 0 {
		events = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		events:  events,
		window:  window,
		entries: map[string]*limiterEntry{},
	}
}

// Allow reports whether the identity may publish one more event now.
func (l *Limiter) Allow(identity string) bool {
	if l == nil || identity == "" {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[identity]
	if !ok {
		entry = &limiterEntry{
			lim: rate.NewLimiter(rate.Limit(float64(l.events)/l.window.Seconds()), l.events),
		}
		l.entries[identity] = entry
		l.pruneLocked(now)
	}
	entry.lastSeen = now
	return entry.lim.Allow()
}

// pruneLocked evicts identities idle past the TTL. Called with the lock held,
// on the entry-creation path only, so steady-state traffic pays nothing.
func (l *Limiter) pruneLocked(now time.Time) {
	for id, entry := range l.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.entries, id)
		}
	}
}
