package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis はテスト用のminiredisとクライアントを準備します。
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisLimiter_Allow(t *testing.T) {
	t.Run("allows up to the limit", func(t *testing.T) {
		_, client := setupTestRedis(t)
		l := NewRedisLimiter(client, "ratelimit:test", 3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, err := l.Allow(context.Background(), "ip:path")
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d should be allowed", i+1)
		}

		ok, err := l.Allow(context.Background(), "ip:path")
		require.NoError(t, err)
		assert.False(t, ok, "attempt over the limit should be denied")
	})

	t.Run("sets a window TTL on first increment", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		l := NewRedisLimiter(client, "ratelimit:test", 3, time.Minute)

		_, err := l.Allow(context.Background(), "ip:path")
		require.NoError(t, err)

		ttl := mr.TTL("ratelimit:test:ip:path")
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		l := NewRedisLimiter(client, "ratelimit:test", 1, time.Minute)

		ok, _ := l.Allow(context.Background(), "ip:path")
		assert.True(t, ok)
		ok, _ = l.Allow(context.Background(), "ip:path")
		assert.False(t, ok)

		mr.FastForward(time.Minute + time.Second)

		ok, err := l.Allow(context.Background(), "ip:path")
		require.NoError(t, err)
		assert.True(t, ok, "count should reset after the window")
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		_, client := setupTestRedis(t)
		l := NewRedisLimiter(client, "ratelimit:test", 1, time.Minute)

		ok, _ := l.Allow(context.Background(), "a")
		assert.True(t, ok)
		ok, _ = l.Allow(context.Background(), "a")
		assert.False(t, ok)

		ok, _ = l.Allow(context.Background(), "b")
		assert.True(t, ok)
	})

	t.Run("closed connection surfaces the error", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		l := NewRedisLimiter(client, "ratelimit:test", 1, time.Minute)

		mr.Close()

		_, err := l.Allow(context.Background(), "ip:path")
		assert.Error(t, err)
	})
}
