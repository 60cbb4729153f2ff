package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableRedisDegrades(t *testing.T) {
	ctx := context.Background()
	r := &Redis{}

	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var out map[string]string
	found, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.ReleaseIfOwner(ctx, "k", "v"))
	require.NoError(t, r.Close())

	ok, err := r.SetIfNotExists(ctx, "lock", "token", time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNilRedisIsUnavailable(t *testing.T) {
	var r *Redis
	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(context.Background()), ErrUnavailable)
}
