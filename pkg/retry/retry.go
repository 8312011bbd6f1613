package retry

import (
	"context"
	"fmt"
)

// ErrExhausted is returned once every attempt has failed. The last
// attempt's error, if any, is wrapped alongside it.
var ErrExhausted = fmt.Errorf("all attempts exhausted")

// Do invokes op up to attempts times, back to back, returning the
// first result for which ok returns true. A nil ok accepts any result
// returned without error. Attempts stop early if ctx is cancelled.
func Do[T any](ctx context.Context, attempts int, op func(context.Context) (T, error), ok func(T) bool) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if ok == nil || ok(result) {
			return result, nil
		}
		lastErr = fmt.Errorf("attempt %d: result rejected", i+1)
	}

	if lastErr != nil {
		return zero, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
	}
	return zero, ErrExhausted
}
