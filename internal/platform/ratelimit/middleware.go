package ratelimit

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware はクライアントIPとパスの組でリクエスト頻度を制限するGinミドルウェアを返します。
// Limiter自体のエラーではリクエストを落とさず、通過させてログのみ残します。
func Middleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()

		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Error("rate limiter failure, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if !ok {
			slog.Warn("rate limit exceeded", "key", key)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
