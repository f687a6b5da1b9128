package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/platform/ratelimit"
)

// 認証系エンドポイントのレートリミット設定。
const (
	authLimitPerWindow = 10
	authLimitWindow    = time.Minute
)

// NewAuthLimiter creates a Limiter for the auth endpoints.
// If Redis is available, it returns a Redis-backed implementation shared
// across instances. Otherwise, it falls back to an in-memory limiter.
func NewAuthLimiter(rdb *redis.Client) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, "ratelimit:auth", authLimitPerWindow, authLimitWindow)
	}
	return ratelimit.NewMemoryLimiter(authLimitPerWindow, authLimitWindow)
}
