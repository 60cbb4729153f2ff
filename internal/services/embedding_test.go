package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEmbeddingProvider struct {
	calls  int
	failN  int
	vector []float32
}

func (s *stubEmbeddingProvider) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.calls <= s.failN {
		return nil, errors.New("503 service unavailable")
	}
	return s.vector, nil
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestEmbedRetriesThenSucceeds(t *testing.T) {
	provider := &stubEmbeddingProvider{failN: 2, vector: []float32{0.1, 0.2, 0.3}}
	gw := NewEmbeddingGateway(provider, 3, fastRetry(3), zap.NewNop())

	vec := gw.Embed(context.Background(), "golang engineer")

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 3, provider.calls)
}

func TestEmbedExhaustedReturnsZeroVector(t *testing.T) {
	provider := &stubEmbeddingProvider{failN: 100}
	gw := NewEmbeddingGateway(provider, 4, fastRetry(3), zap.NewNop())

	vec := gw.Embed(context.Background(), "anything")

	require.Len(t, vec, 4)
	assert.True(t, isZeroVector(vec))
	assert.Equal(t, 3, provider.calls)
}

func TestEmbedResizesWrongDimension(t *testing.T) {
	provider := &stubEmbeddingProvider{vector: []float32{1, 2}}
	gw := NewEmbeddingGateway(provider, 4, fastRetry(1), zap.NewNop())

	assert.Equal(t, []float32{1, 2, 0, 0}, gw.Embed(context.Background(), "x"))
}

func TestEmbedStopsOnCancelledContext(t *testing.T) {
	provider := &stubEmbeddingProvider{failN: 100}
	gw := NewEmbeddingGateway(provider, 2, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vec := gw.Embed(ctx, "x")
	assert.Len(t, vec, 2)
	assert.Equal(t, 1, provider.calls)
}

func TestToIndexString(t *testing.T) {
	assert.Equal(t, "[]", ToIndexString(nil))
	assert.Equal(t, "[0.1,-2,0]", ToIndexString([]float32{0.1, -2, 0}))

	in := []float32{0.123456789, 1e-7, -3.4028235e38}
	out := ToIndexString(in)
	parts := strings.Split(strings.Trim(out, "[]"), ",")
	require.Len(t, parts, len(in))
	for i, p := range parts {
		parsed, err := strconv.ParseFloat(p, 32)
		require.NoError(t, err)
		assert.Equal(t, in[i], float32(parsed), "value %d must round-trip", i)
	}
}
