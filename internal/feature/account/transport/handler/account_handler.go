// Package handler はaccountフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/transport/http/dto"
	"account_backend/internal/feature/account/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// AccountUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AccountUsecase interface {
	// Register は新規ユーザーを未検証状態で作成し、検証メールを送信します。
	Register(ctx context.Context, name, username, email, password string) (*entity.User, error)
	// VerifyEmail は検証リンク中のトークンを消費してユーザーを検証済みにします。
	VerifyEmail(ctx context.Context, rawToken string) error
	// Login はユーザーを認証し、アクセス／リフレッシュトークンの組を発行します。
	Login(ctx context.Context, email, password string) (*entity.User, string, string, error)
	// Logout は保存中のリフレッシュトークンをクリアします。
	Logout(ctx context.Context, userID uint) error
	// Refresh はリフレッシュトークンを検証し、新しいトークンの組へローテーションします。
	Refresh(ctx context.Context, presented string) (string, string, error)
	// ChangePassword は現在のパスワードを検証した上で新しいパスワードを保存します。
	ChangePassword(ctx context.Context, userID uint, current, newPassword, confirm string) error
	// ForgotPassword はリセットトークンを発行し、リセットリンクをメールで送信します。
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword はリセットトークンを消費して新しいパスワードを保存します。
	ResetPassword(ctx context.Context, rawToken, password, confirm string) error
	// Get は自身のユーザーレコードを取得します。
	Get(ctx context.Context, userID uint) (*entity.User, error)
	// UpdateProfile はプロフィールを上書きします。メール変更時は再検証が走ります。
	UpdateProfile(ctx context.Context, userID uint, name, username, email, password string) (*entity.User, error)
}

// AccountHandler はアカウント操作のHTTPリクエストを処理します。
// AccountUsecaseインターフェースに依存し、JSONリクエスト/レスポンスとCookieを処理します。
type AccountHandler struct {
	account AccountUsecase
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
func NewAccountHandler(account AccountUsecase) *AccountHandler {
	return &AccountHandler{account: account}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー・重複時は400を返却
// - 成功時は作成されたユーザー付きで201を返却
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	user, err := h.account.Register(c.Request.Context(), req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
		case errors.Is(err, domain.ErrUsernameAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		default:
			slog.Error("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	slog.Info("user registered", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully. Please verify your email.",
		"user":    user,
	})
}

// VerifyEmail は検証リンクのGETエンドポイントを処理します。
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	rawToken := c.Param("token")

	if err := h.account.VerifyEmail(c.Request.Context(), rawToken); err != nil {
		if errors.Is(err, usecase.ErrInvalidVerificationToken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired verification link"})
			return
		}
		slog.Error("email verification failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully, you can now log in."})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 成功時はトークンの組をCookieとJSONボディの両方で返します。
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, access, refresh, err := h.account.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, usecase.ErrVerificationResent):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Verification link expired. A new link has been sent to your email."})
		case errors.Is(err, usecase.ErrNotVerified):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email not verified. Please check your inbox."})
		case errors.Is(err, domain.ErrInvalidCredentials):
			// メール不存在とパスワード不一致で形を変えない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		default:
			slog.Error("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	jwtmw.SetAuthCookies(c, access, refresh)
	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Logged in successfully",
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Logout は認証済みユーザーのログアウトを処理します。
// リフレッシュトークンをクリアし、両Cookieを破棄します。
func (h *AccountHandler) Logout(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
		return
	}

	if err := h.account.Logout(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.Error("logout failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	jwtmw.ClearAuthCookies(c)
	slog.Info("user logout successful", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// RefreshToken はCookieのリフレッシュトークンから新しいトークンの組を発行します。
// リフレッシュトークンはCookieからのみ受け付けます（ヘッダー不可）。
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(jwtmw.RefreshTokenCookie)
	if err != nil || presented == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	access, refresh, err := h.account.Refresh(c.Request.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRefreshTokenInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired refresh token"})
		case errors.Is(err, usecase.ErrRefreshTokenUnknownUser):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
		case errors.Is(err, usecase.ErrRefreshTokenStale):
			slog.Warn("stale refresh token presented", "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Refresh token expired or used"})
		default:
			slog.Error("token refresh failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	jwtmw.SetAuthCookies(c, access, refresh)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Access token refreshed",
		"accessToken": access,
	})
}

// UpdatePassword は認証済みユーザーのパスワード変更を処理します。
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
		return
	}

	var req dto.UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	err := h.account.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, usecase.ErrInvalidCurrentPassword):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid current password"})
		case errors.Is(err, usecase.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": "New password and confirm password do not match"})
		default:
			slog.Error("password update failed", "error", err, "user_id", user.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	slog.Info("password updated", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

// ForgotPassword はパスワードリセットメールの送信を処理します。
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}

	if err := h.account.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email format"})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		default:
			slog.Error("forgot password failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset email sent to " + req.Email + ". Please check your inbox.",
	})
}

// ResetPassword はリセットリンク経由のパスワード再設定を処理します。
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	rawToken := c.Param("token")

	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password and confirm password are required"})
		return
	}

	err := h.account.ResetPassword(c.Request.Context(), rawToken, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match"})
		case errors.Is(err, usecase.ErrInvalidResetToken):
			c.JSON(http.StatusNotFound, gin.H{"message": "Invalid or expired token"})
		default:
			slog.Error("password reset failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// Me は認証済みユーザー自身のレコードを返します。
func (h *AccountHandler) Me(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
		return
	}

	fresh, err := h.account.Get(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("profile fetch failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, fresh)
}

// UpdateProfile は認証済みユーザーのプロフィール更新を処理します。
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized request"})
		return
	}

	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	updated, err := h.account.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
		case errors.Is(err, domain.ErrUsernameAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		default:
			slog.Error("profile update failed", "error", err, "user_id", user.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	slog.Info("profile updated", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "updatedUser": updated})
}
