// Package ratelimit は認証系エンドポイントの固定ウィンドウレートリミットを提供します。
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter は、キーごとの操作頻度を制限します。
type Limiter interface {
	// Allow はキーに対する1回の試行を記録し、ウィンドウ内の上限を
	// 超えていない場合にtrueを返します。
	Allow(ctx context.Context, key string) (bool, error)
}

// memoryLimiter はLimiterのインメモリ実装です。Redisが利用できない場合の
// フォールバックで、プロセスローカルにのみ作用します。
type memoryLimiter struct {
	limit  int           // ウィンドウあたりの上限
	window time.Duration // どの単位でリセットするか

	mu      sync.Mutex
	counts  map[string]int
	resetAt map[string]time.Time
}

// Limiterを実装していることをコンパイル時に検証します。
var _ Limiter = (*memoryLimiter)(nil)

// NewMemoryLimiter は新しいインメモリLimiterを生成します。
func NewMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		limit:   limit,
		window:  window,
		counts:  make(map[string]int),
		resetAt: make(map[string]time.Time),
	}
}

// Allow はキーのカウントを進め、上限超過を判定します。
func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	// ウィンドウを過ぎたらカウントリセット
	if reset, ok := l.resetAt[key]; !ok || now.After(reset) {
		l.counts[key] = 0
		l.resetAt[key] = now.Add(l.window)
	}

	l.counts[key]++
	return l.counts[key] <= l.limit, nil
}
