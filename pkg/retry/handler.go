package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/timeutil"
)

// Retry executes fn up to MaxAttempts times, applying exponential backoff
// with jitter between attempts. Only errors whose severity is
// recoverable trigger another attempt; fatal errors are returned as-is.
//
// The wait between attempts honours ctx cancellation.
func Retry[T any](ctx context.Context, retryParam RetryParam, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message: "max attempt cannot be 0",
			Cause:   ErrZeroAttempt,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	var lastErr failure.ClassifiedError
	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if err.Severity() != failure.SeverityRecoverable {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		delay := timeutil.ExponentialBackoffDelay(attempt, retryParam.Jitter, rng, retryParam.BackoffParam)
		if !sleep(ctx, delay) {
			return zero, &RetryError{
				Message: ctx.Err().Error(),
				Cause:   ErrCanceled,
				Last:    lastErr,
			}
		}
	}

	return zero, &RetryError{
		Message: fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:   ErrExhaustedAttempts,
		Last:    lastErr,
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
