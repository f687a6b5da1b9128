package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
)

// ContextUserKey is the gin context key the resolved user is stored under.
const ContextUserKey = "currentUser"

// TokenVerifier validates access tokens. Defined by the consumer (middleware);
// implemented by Generator.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (uint, error)
}

// UserFinder resolves the authenticated user from storage.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// AuthRequired returns a Gin middleware that restricts access to
// authenticated users. The access token is read from the accessToken cookie
// first, falling back to the Authorization: Bearer header. On success the
// resolved user is attached to the request context for downstream handlers.
func AuthRequired(tokens TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
			return
		}

		userID, err := tokens.VerifyAccessToken(tokenStr)
		if err != nil {
			// 失効と署名不正を区別して返す。クライアントはこれでリフレッシュ可否を判断する。
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			// セッション途中でアカウントが消えたケース。Cookieを破棄させる。
			ClearAuthCookies(c)
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User does not exist"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// tokenFromRequest はCookie優先、Bearerヘッダーへフォールバックでトークンを取り出します。
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// CurrentUser returns the user attached by AuthRequired, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok
}
