package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisLimiter はLimiterのRedis実装です。INCRとウィンドウ長のTTLによる
// 固定ウィンドウ方式で、複数インスタンス間でカウントを共有します。
type redisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// Limiterを実装していることをコンパイル時に検証します。
var _ Limiter = (*redisLimiter)(nil)

// NewRedisLimiter は新しいRedisバックエンドのLimiterを生成します。
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *redisLimiter {
	return &redisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// limiterKey はキーのRedisキーを返します。
func (l *redisLimiter) limiterKey(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

// Allow はキーのカウンタを進め、上限超過を判定します。
// カウンタの初回インクリメント時にウィンドウ長のTTLを設定します。
func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rkey := l.limiterKey(key)

	count, err := l.client.Incr(ctx, rkey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, rkey, l.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(l.limit), nil
}
