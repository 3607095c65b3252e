package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisProvider(t *testing.T) (*RedisProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p := NewRedisProvider(client)
	p.poll = 5 * time.Millisecond
	return p, mr
}

func TestRedisProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire sets a guarded key with TTL", func(t *testing.T) {
		p, mr := newRedisProvider(t)
		require.NoError(t, p.Acquire(ctx, "change-1"))

		assert.True(t, mr.Exists("reviewd:lock:change-1"))
		assert.Greater(t, mr.TTL("reviewd:lock:change-1"), time.Duration(0))

		p.Release("change-1")
		assert.False(t, mr.Exists("reviewd:lock:change-1"))
	})

	t.Run("contended acquire waits for release", func(t *testing.T) {
		p, _ := newRedisProvider(t)
		require.NoError(t, p.Acquire(ctx, "change-1"))

		second := NewRedisProvider(p.client)
		second.poll = 5 * time.Millisecond

		acquired := make(chan error, 1)
		go func() {
			acquired <- second.Acquire(ctx, "change-1")
		}()

		select {
		case <-acquired:
			t.Fatal("acquire succeeded while the lock was held")
		case <-time.After(30 * time.Millisecond):
		}

		p.Release("change-1")
		select {
		case err := <-acquired:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("acquire did not proceed after release")
		}
		second.Release("change-1")
	})

	t.Run("context cancellation unblocks a waiter", func(t *testing.T) {
		p, _ := newRedisProvider(t)
		require.NoError(t, p.Acquire(ctx, "change-1"))

		second := NewRedisProvider(p.client)
		second.poll = 5 * time.Millisecond

		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		err := second.Acquire(waitCtx, "change-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		p.Release("change-1")
	})

	t.Run("release only removes our own token", func(t *testing.T) {
		p, mr := newRedisProvider(t)
		require.NoError(t, p.Acquire(ctx, "change-1"))

		// Simulate TTL expiry followed by another holder taking the lock.
		mr.Del("reviewd:lock:change-1")
		require.NoError(t, mr.Set("reviewd:lock:change-1", "someone-else"))

		p.Release("change-1")
		got, err := mr.Get("reviewd:lock:change-1")
		require.NoError(t, err)
		assert.Equal(t, "someone-else", got)
	})

	t.Run("release without a held token is a no-op", func(t *testing.T) {
		p, _ := newRedisProvider(t)
		assert.NotPanics(t, func() { p.Release("change-1") })
	})
}
