package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRetryWithBackoffReturnsLastError(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	calls := 0
	errs := []error{errors.New("first"), errors.New("second"), errors.New("third")}

	_, err := retryWithBackoff(context.Background(), fastRetry(3), zap.New(core), "test", func(context.Context) (int, error) {
		err := errs[calls]
		calls++
		return 0, err
	})

	require.Error(t, err)
	assert.Equal(t, "third", err.Error())
	assert.Equal(t, 3, calls)
	assert.Len(t, observed.All(), 2, "one warning per retried attempt")
}

func TestRetryWithBackoffSucceedsFirstTry(t *testing.T) {
	got, err := retryWithBackoff(context.Background(), fastRetry(3), zap.NewNop(), "test", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRetryWithBackoffHonoursDeadlineDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
	start := time.Now()
	_, err := retryWithBackoff(ctx, policy, zap.NewNop(), "test", func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRetryPolicyNormalized(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 0, BaseDelay: time.Second, MaxDelay: 0, Multiplier: 0}.normalized()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, float64(1), p.Multiplier)
	assert.Equal(t, time.Second, p.MaxDelay)
}
