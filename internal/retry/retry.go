// Package retry provides a generic call-with-retries executor with
// exponential backoff. It has no knowledge of what it retries; permanent
// failures are recognised through the error taxonomy's retriability
// predicate and escape the loop immediately.
package retry

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/learning-at-home/dalle/internal/errors"
)

// Options control the retry loop.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below one fall back to DefaultMaxAttempts.
	MaxAttempts int

	// InitialDelay is the sleep before the second attempt. Each further
	// attempt doubles it. Non-positive values fall back to
	// DefaultInitialDelay.
	InitialDelay time.Duration

	// sleep is a test seam; nil means a context-cancellable timer sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

const (
	// DefaultMaxAttempts bounds an operation's total attempt count.
	DefaultMaxAttempts = 10

	// DefaultInitialDelay is the base backoff delay.
	DefaultInitialDelay = time.Second
)

// CallWithRetries runs op up to MaxAttempts times. Errors that are not
// retriable per the error taxonomy propagate immediately. Transient
// failures sleep InitialDelay * 2^attempt between attempts (zero-based
// attempt index) and emit a warning naming the operation and the computed
// delay. After exhausting all attempts the last failure is returned.
func CallWithRetries[T any](
	ctx context.Context,
	logger *slog.Logger,
	name string,
	op func(ctx context.Context) (T, error),
	opts Options,
) (T, error) {
	if logger == nil {
		logger = slog.Default()
	}

	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}
	delay := opts.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}
	sleep := opts.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !apperrors.IsRetriable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		backoff := delay << attempt
		logger.WarnContext(ctx, "operation failed, retrying",
			"operation", name,
			"attempt", attempt+1,
			"max_attempts", attempts,
			"delay", backoff,
			"error", err,
		)
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return zero, sleepErr
		}
	}

	return zero, lastErr
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
