package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDoSucceedsOnLaterAttempt(t *testing.T) {
	t.Parallel()

	attempts := 0
	result, err := Do(context.Background(), 3,
		func(ctx context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", fmt.Errorf("transient failure %d", attempts)
			}
			return "ok", nil
		},
		func(s string) bool { return s != "" },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("unexpected result: %q", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoExhaustsAllAttempts(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := Do(context.Background(), 3,
		func(ctx context.Context) (string, error) {
			attempts++
			return "", fmt.Errorf("always fails")
		},
		nil,
	)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoRejectsByPredicate(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := Do(context.Background(), 2,
		func(ctx context.Context) (string, error) {
			attempts++
			return "   ", nil
		},
		func(s string) bool { return false },
	)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Do(ctx, 3,
		func(ctx context.Context) (int, error) {
			attempts++
			return 0, nil
		},
		nil,
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no attempts, got %d", attempts)
	}
}
