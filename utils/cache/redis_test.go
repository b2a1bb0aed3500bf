package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	return c, mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "greeting", "hello", time.Minute))

	value, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestJSONRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type stats struct {
		Total int64 `json:"total"`
	}

	require.NoError(t, c.SetJSON(ctx, "stats", stats{Total: 7}, time.Minute))

	var out stats
	require.NoError(t, c.GetJSON(ctx, "stats", &out))
	assert.Equal(t, int64(7), out.Total)
}

func TestExpiration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ephemeral", "x", time.Minute))

	exists, err := c.Exists(ctx, "ephemeral")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)

	exists, err = c.Exists(ctx, "ephemeral")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIncrement(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	n, err := c.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "doomed", "x", time.Minute))
	require.NoError(t, c.Delete(ctx, "doomed"))

	exists, err := c.Exists(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, exists)
}
