package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
	"github.com/rohmanhakim/nps-crawler/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockError is a mock implementation of failure.ClassifiedError for testing
type mockError struct {
	msg      string
	severity failure.Severity
}

func (m *mockError) Error() string {
	return m.msg
}

func (m *mockError) Severity() failure.Severity {
	return m.severity
}

func fastParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	callCount := 0
	fn := func() (string, failure.ClassifiedError) {
		callCount++
		return "success", nil
	}

	result, err := retry.Retry(context.Background(), fastParam(3), fn)

	require.Nil(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, callCount)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	fn := func() (string, failure.ClassifiedError) {
		callCount++
		if callCount < 3 {
			return "", &mockError{msg: "transient", severity: failure.SeverityRecoverable}
		}
		return "success", nil
	}

	result, err := retry.Retry(context.Background(), fastParam(5), fn)

	require.Nil(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, callCount)
}

func TestRetry_FatalErrorReturnsImmediately(t *testing.T) {
	callCount := 0
	expected := &mockError{msg: "fatal", severity: failure.SeverityFatal}
	fn := func() (string, failure.ClassifiedError) {
		callCount++
		return "", expected
	}

	_, err := retry.Retry(context.Background(), fastParam(5), fn)

	require.NotNil(t, err)
	assert.Same(t, expected, err)
	assert.Equal(t, 1, callCount)
}

func TestRetry_ExhaustedAttempts(t *testing.T) {
	callCount := 0
	last := &mockError{msg: "still down", severity: failure.SeverityRecoverable}
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		return 0, last
	}

	_, err := retry.Retry(context.Background(), fastParam(3), fn)

	require.NotNil(t, err)
	assert.Equal(t, 3, callCount)

	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, retry.ErrExhaustedAttempts, retryErr.Cause)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
	assert.True(t, errors.Is(err, last))
}

func TestRetry_ZeroAttempts(t *testing.T) {
	called := false
	fn := func() (int, failure.ClassifiedError) {
		called = true
		return 1, nil
	}

	_, err := retry.Retry(context.Background(), fastParam(0), fn)

	require.NotNil(t, err)
	assert.False(t, called)
	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, retry.ErrZeroAttempt, retryErr.Cause)
}

func TestRetry_CanceledContextStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	param := retry.NewRetryParam(0, 1, 5, timeutil.NewBackoffParam(time.Hour, 2.0, time.Hour))
	callCount := 0
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		return 0, &mockError{msg: "transient", severity: failure.SeverityRecoverable}
	}

	_, err := retry.Retry(ctx, param, fn)

	require.NotNil(t, err)
	assert.Equal(t, 1, callCount)
	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, retry.ErrCanceled, retryErr.Cause)
}
