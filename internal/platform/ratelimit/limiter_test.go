package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func TestMemoryLimiter_Allow(t *testing.T) {
	t.Run("allows up to the limit", func(t *testing.T) {
		l := NewMemoryLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, err := l.Allow(context.Background(), "ip:path")
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d should be allowed", i+1)
		}

		ok, err := l.Allow(context.Background(), "ip:path")
		require.NoError(t, err)
		assert.False(t, ok, "attempt over the limit should be denied")
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		l := NewMemoryLimiter(1, time.Minute)

		ok, _ := l.Allow(context.Background(), "a")
		assert.True(t, ok)
		ok, _ = l.Allow(context.Background(), "a")
		assert.False(t, ok)

		// 別キーには影響しない
		ok, _ = l.Allow(context.Background(), "b")
		assert.True(t, ok)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		l := NewMemoryLimiter(1, 10*time.Millisecond)

		ok, _ := l.Allow(context.Background(), "a")
		assert.True(t, ok)
		ok, _ = l.Allow(context.Background(), "a")
		assert.False(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, _ = l.Allow(context.Background(), "a")
		assert.True(t, ok, "count should reset after the window")
	})
}

// errLimiter always fails, to exercise the middleware's fail-open path.
type errLimiter struct{}

func (errLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("backend down")
}

func newLimitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.POST("/login", Middleware(l), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func TestMiddleware(t *testing.T) {
	t.Run("denies with 429 over the limit", func(t *testing.T) {
		router := newLimitedRouter(NewMemoryLimiter(2, time.Minute))

		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req, _ := http.NewRequest(http.MethodPost, "/login", nil)
			last = httptest.NewRecorder()
			router.ServeHTTP(last, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, last.Code)
		assert.Contains(t, last.Body.String(), "Too many requests. Please try again later.")
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		router := newLimitedRouter(errLimiter{})

		req, _ := http.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
