package jwtmw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// mockUserFinder is a mock implementation of the UserFinder interface.
type mockUserFinder struct {
	FindByIDFunc func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

// newProtectedRouter wires AuthRequired in front of a handler that echoes the
// resolved user's ID.
func newProtectedRouter(tokens TokenVerifier, users UserFinder) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthRequired(tokens, users), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "user missing from context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return r
}

func newTestGenerator() *Generator {
	return NewGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body gin.H
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthRequired_MissingToken(t *testing.T) {
	router := newProtectedRouter(newTestGenerator(), &mockUserFinder{})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized request", messageOf(t, w))
}

func TestAuthRequired_CookieToken(t *testing.T) {
	gen := newTestGenerator()
	access, _, err := gen.GeneratePair(7)
	require.NoError(t, err)

	users := &mockUserFinder{
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			return &entity.User{ID: id, Username: "alice"}, nil
		},
	}
	router := newProtectedRouter(gen, users)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: access})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuthRequired_BearerFallback(t *testing.T) {
	gen := newTestGenerator()
	access, _, err := gen.GeneratePair(7)
	require.NoError(t, err)

	users := &mockUserFinder{
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			return &entity.User{ID: id}, nil
		},
	}
	router := newProtectedRouter(gen, users)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired_CookieTakesPrecedenceOverHeader(t *testing.T) {
	gen := newTestGenerator()
	access, _, err := gen.GeneratePair(7)
	require.NoError(t, err)

	users := &mockUserFinder{
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			return &entity.User{ID: id}, nil
		},
	}
	router := newProtectedRouter(gen, users)

	// 不正なヘッダーがあっても、有効なCookieがあれば通る
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: access})
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	router := newProtectedRouter(newTestGenerator(), &mockUserFinder{})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", messageOf(t, w))
}

func TestAuthRequired_ExpiredToken(t *testing.T) {
	// 失効済みトークンを発行する
	expiredGen := NewGenerator("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	access, _, err := expiredGen.GeneratePair(7)
	require.NoError(t, err)

	router := newProtectedRouter(newTestGenerator(), &mockUserFinder{})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 失効は署名不正と区別して返す
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", messageOf(t, w))
}

func TestAuthRequired_UserDeletedMidSession(t *testing.T) {
	gen := newTestGenerator()
	access, _, err := gen.GeneratePair(7)
	require.NoError(t, err)

	router := newProtectedRouter(gen, &mockUserFinder{}) // FindByID → not found

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User does not exist", messageOf(t, w))

	// 両Cookieが破棄される
	cookies := w.Result().Cookies()
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
		assert.Less(t, c.MaxAge, 0, "cookie %s should be expired", c.Name)
	}
	assert.True(t, names[AccessTokenCookie])
	assert.True(t, names[RefreshTokenCookie])
}

func TestAuthRequired_StoreFailure(t *testing.T) {
	gen := newTestGenerator()
	access, _, err := gen.GeneratePair(7)
	require.NoError(t, err)

	users := &mockUserFinder{
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			return nil, errors.New("connection reset")
		},
	}
	router := newProtectedRouter(gen, users)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Result().Cookies(), "cookies should be cleared on unexpected failure")
}
