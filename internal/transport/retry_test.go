package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pr-reviewer/internal/transport"
)

func fastRetryConfig() transport.RetryConfig {
	return transport.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoffSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := transport.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffRetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := transport.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transport.FromStatusCode("github", 503, "flaky")
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := transport.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return transport.FromStatusCode("github", 401, "bad token")
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffExhaustsRetries(t *testing.T) {
	calls := 0
	err := transport.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return transport.FromStatusCode("github", 429, "limited")
	}, fastRetryConfig())

	require.Error(t, err)
	var apiErr *transport.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, transport.ErrTypeRateLimit, apiErr.Type)
	assert.Equal(t, 4, calls) // initial attempt + MaxRetries
}

func TestRetryWithBackoffHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transport.RetryWithBackoff(ctx, func(ctx context.Context) error {
		t.Fatal("operation should not run with cancelled context")
		return nil
	}, fastRetryConfig())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExponentialBackoffCappedAtMax(t *testing.T) {
	config := fastRetryConfig()
	for attempt := 0; attempt < 20; attempt++ {
		backoff := transport.ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, transport.ShouldRetry(nil))
	assert.False(t, transport.ShouldRetry(errors.New("plain")))
	assert.True(t, transport.ShouldRetry(transport.FromStatusCode("github", 503, "down")))
	assert.False(t, transport.ShouldRetry(transport.FromStatusCode("github", 404, "missing")))
}
