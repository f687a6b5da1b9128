package router

import (
	accounthandler "account_backend/internal/feature/account/transport/handler"
	"account_backend/internal/platform/http/handler"

	"github.com/gin-gonic/gin"
)

// NewRouter はAPIルートを構築します。
// authRequiredは保護ルートに適用する認証ゲート、authLimitは
// 認証系エンドポイント（login / forgot password）のレートリミットです。
func NewRouter(account *accounthandler.AccountHandler, authRequired, authLimit gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	api := r.Group("/api/v1")

	// 認証不要
	api.POST("/register", account.Register)
	api.POST("/login", authLimit, account.Login)
	api.POST("/refresh-token", account.RefreshToken)
	api.GET("/verify/email/:token", account.VerifyEmail)
	api.POST("/forgot/password", authLimit, account.ForgotPassword)
	api.PUT("/reset/password/:token", account.ResetPassword)

	// 認証必須のルート
	auth := api.Group("/")
	auth.Use(authRequired)
	{
		auth.POST("/logout", account.Logout)
		auth.GET("/me", account.Me)
		auth.PUT("/me/update", account.UpdateProfile)
		auth.PUT("/password/update", account.UpdatePassword)
	}

	return r
}
