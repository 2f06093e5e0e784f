package utils

import (
	"context"
	"time"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
)

// Result represents a generic result with error.
type Result[T any] struct {
	Value T
	Err   error
}

// ExecuteWithTimeout runs operation with a fresh deadline. If the timeout is
// reached, a round-timeout error is returned.
func ExecuteWithTimeout[T any](timeout time.Duration, operation func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return ExecuteWithContext(ctx, operation)
}

// ExecuteWithContext runs operation in its own goroutine so a cancelled or
// expired context can abandon it.
func ExecuteWithContext[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	var zero T

	// Buffered so a late result does not leak the goroutine.
	resultCh := make(chan Result[T], 1)

	go func() {
		value, err := operation()

		select {
		case resultCh <- Result[T]{Value: value, Err: err}:
		case <-ctx.Done():
		}
	}()

	select {
	case result := <-resultCh:
		return result.Value, result.Err

	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return zero, errors.Wrap(errors.DomainHarness, errors.CodeRoundTimeout,
				"Operation timed out", ctx.Err())
		}
		return zero, errors.Wrap(errors.DomainHarness, errors.CodeRunCancelled,
			"Operation was cancelled", ctx.Err())
	}
}
