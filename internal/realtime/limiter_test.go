package realtime

import (
	"testing"
	"time"
)

func TestLimiterAllowsBudgetThenRejects(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !limiter.Allow("sender") {
			t.Fatalf("expected event %d within budget to be allowed", i+1)
		}
	}
	if limiter.Allow("sender") {
		t.Fatal("expected event beyond budget to be rejected")
	}
}

func TestLimiterKeysPerIdentity(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(1, time.Hour)
	if !limiter.Allow("a") {
		t.Fatal("expected first event for a")
	}
	if limiter.Allow("a") {
		t.Fatal("expected a to be throttled")
	}
	if !limiter.Allow("b") {
		t.Fatal("expected b to have its own budget")
	}
}

func TestLimiterEmptyIdentityBypasses(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(1, time.Hour)
	for i := 0; i < 5; i++ {
		if !limiter.Allow("") {
			t.Fatal("expected empty identity to bypass the limiter")
		}
	}
}
