package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestStore_GetSet(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "studymate_data")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "studymate_data", []byte(`{"notes":[]}`)))
	got, err := store.Get(ctx, "studymate_data")
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[]}`, string(got))

	// stored without expiry under the prefix
	assert.True(t, mr.Exists(storePrefix+"studymate_data"))
	assert.Equal(t, time.Duration(0), mr.TTL(storePrefix+"studymate_data"))

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
	assert.NoError(t, client.Ping(ctx), "closing the store must not close the shared client")
}

func TestRateLimiter_Allow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, 2, 1)
	fixed := time.Date(2026, 1, 1, 10, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, reset, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, 2-i, remaining)
		assert.Equal(t, time.Date(2026, 1, 1, 10, 1, 0, 0, time.UTC), reset)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// other keys have their own budget
	allowed, _, _, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, allowed)

	// the next window starts fresh
	limiter.now = func() time.Time { return fixed.Add(time.Minute) }
	allowed, _, _, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, allowed)
}
