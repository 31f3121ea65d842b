package message

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateContentTrims(t *testing.T) {
	t.Parallel()

	got, err := ValidateContent("  hello there \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("expected trimmed content, got %q", got)
	}
}

// An invalid body must fail before the gate or storage is touched: the
// service here has no pool and no queries, so any state access would panic.
func TestSendRejectsEmptyContentBeforeGate(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil)
	if _, _, err := svc.Send(context.Background(), "c", "s", "   \n\t"); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestSendRejectsOversizedContentBeforeGate(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil)
	content := strings.Repeat("x", MaxContentLength+1)
	if _, _, err := svc.Send(context.Background(), "c", "s", content); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("expected ErrContentTooLong, got %v", err)
	}
}
