// Package usecase はaccountフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/shared/color"
	"account_backend/internal/shared/token"
)

const (
	// oneTimeTokenTTL はメール検証・パスワードリセットトークンの有効期間です。
	oneTimeTokenTTL = 10 * time.Minute
)

// emailPattern はメールアドレスの形式チェックに使用します。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスまたはユーザー名が既に存在する場合、エラーを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByVerificationToken はメール検証トークンのダイジェストが一致し、
	// かつ有効期限が切れていないユーザーを取得します。
	FindByVerificationToken(ctx context.Context, digest string, now time.Time) (*entity.User, error)

	// FindByResetToken はパスワードリセットトークンのダイジェストが一致し、
	// かつ有効期限が厳密に未来であるユーザーを取得します。
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*entity.User, error)

	// Update はユーザーレコード全体を保存します。
	Update(ctx context.Context, user *entity.User) error

	// RotateRefreshToken は保存中のリフレッシュトークンがcurrentと一致する場合のみ
	// nextへ原子的に置き換えます。一致しない場合はErrRefreshTokenStaleを返します。
	RotateRefreshToken(ctx context.Context, id uint, current, next string) error
}

// TokenIssuer はアクセス／リフレッシュトークンの発行と検証を抽象化します。
// インターフェースはコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// GeneratePair は指定ユーザーの署名済みアクセス／リフレッシュトークンの組を生成します。
	GeneratePair(userID uint) (accessToken, refreshToken string, err error)

	// VerifyRefreshToken はリフレッシュトークンの署名と有効期限を検証し、
	// ペイロードに埋め込まれたユーザーIDを返します。
	VerifyRefreshToken(tokenStr string) (uint, error)
}

// MailSender はメール送信トランスポートを抽象化します。
type MailSender interface {
	// Send は指定の宛先へ件名・本文のメールを送信します。
	Send(ctx context.Context, to, subject, body string) error
}

// accountUsecase はアカウント管理のビジネスロジックを実装します。
type accountUsecase struct {
	users     UserRepository
	tokens    TokenIssuer
	mail      MailSender
	clientURL string
}

// NewAccountUsecase はaccountUsecaseの新しいインスタンスを生成します。
// clientURLは検証・リセットリンクの組み立てに使用する公開ベースURLです。
func NewAccountUsecase(users UserRepository, tokens TokenIssuer, mail MailSender, clientURL string) *accountUsecase {
	return &accountUsecase{
		users:     users,
		tokens:    tokens,
		mail:      mail,
		clientURL: clientURL,
	}
}

// Register は新規ユーザーを未検証状態で作成し、検証メールとウェルカムメールを送信します。
// メール送信はレスポンス前に同期的に行われ、失敗した場合はユーザー行が既に
// コミットされたままエラーを返します（補償ロールバックなし）。
func (u *accountUsecase) Register(ctx context.Context, name, username, email, password string) (*entity.User, error) {
	// 重複チェック（メールアドレス、ユーザー名の順）
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 検証トークンは平文をリンクにのみ使用し、ダイジェストだけを保存する
	raw, digest, err := token.New()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(oneTimeTokenTTL)

	user := &entity.User{
		Name:                    name,
		Username:                username,
		Email:                   email,
		Password:                string(hashed),
		IsVerified:              false,
		VerificationToken:       digest,
		VerificationTokenExpiry: &expiry,
		Color:                   color.Random(),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := u.mail.Send(ctx, email, "Verify your email address", verificationMailBody(name, u.verificationURL(raw))); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}
	if err := u.mail.Send(ctx, email, "Welcome aboard", welcomeMailBody(name)); err != nil {
		return nil, fmt.Errorf("failed to send welcome email: %w", err)
	}

	return user, nil
}

// VerifyEmail は検証リンク中の平文トークンを受け取り、対応するユーザーを検証済みにします。
// 消費されたトークンはクリアされ、再利用できません。
func (u *accountUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	user, err := u.users.FindByVerificationToken(ctx, token.Hash(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationTokenExpiry = nil
	return u.users.Update(ctx, user)
}

// Login はユーザーを認証し、成功時にアクセス／リフレッシュトークンの組を発行します。
// 未検証ユーザーのログインは拒否され、検証リンクが失効している場合は
// 新しいリンクを一通だけ発行・送信した上でErrVerificationResentを返します。
// タイミング攻撃を防止するため、パスワード未設定でもbcrypt比較を実行します。
func (u *accountUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", err
	}

	if !user.IsVerified {
		if !user.HasLiveVerificationToken(time.Now()) {
			if err := u.resendVerification(ctx, user); err != nil {
				return nil, "", "", err
			}
			return nil, "", "", ErrVerificationResent
		}
		return nil, "", "", ErrNotVerified
	}

	// パスワード未設定ユーザーのタイミング攻撃緩和用ダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if user.Password != "" {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if user.Password == "" || compareErr != nil {
		return nil, "", "", domain.ErrInvalidCredentials
	}

	access, refresh, err := u.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.RefreshToken = refresh
	if err := u.users.Update(ctx, user); err != nil {
		return nil, "", "", err
	}

	return user, access, refresh, nil
}

// resendVerification は新しい検証トークンを発行して保存し、再送メールを送信します。
func (u *accountUsecase) resendVerification(ctx context.Context, user *entity.User) error {
	raw, digest, err := token.New()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(oneTimeTokenTTL)

	user.VerificationToken = digest
	user.VerificationTokenExpiry = &expiry
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	if err := u.mail.Send(ctx, user.Email, "Resend: Verify your email address", resendMailBody(user.Name, u.verificationURL(raw))); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// Logout はユーザーレコード上のリフレッシュトークンをクリアします。
// 発行済みのアクセストークンは自然失効まで有効なままです。
func (u *accountUsecase) Logout(ctx context.Context, userID uint) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.RefreshToken = ""
	return u.users.Update(ctx, user)
}

// Refresh は提示されたリフレッシュトークンを検証し、新しいトークンの組へ
// 原子的にローテーションします。保存値と一致しないトークンは
// 既にローテーション済みか失効済みとして拒否されます。
func (u *accountUsecase) Refresh(ctx context.Context, presented string) (string, string, error) {
	userID, err := u.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return "", "", ErrRefreshTokenInvalid
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", "", ErrRefreshTokenUnknownUser
		}
		return "", "", err
	}
	if user.RefreshToken != presented {
		return "", "", ErrRefreshTokenStale
	}

	access, refresh, err := u.tokens.GeneratePair(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	// 条件付き更新でローテーション。並行リクエストに敗れた場合はstale扱い。
	if err := u.users.RotateRefreshToken(ctx, user.ID, presented, refresh); err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// ChangePassword は現在のパスワードを検証した上で新しいパスワードを保存します。
// パスワード変更に伴い保存中のリフレッシュトークンは失効します。
func (u *accountUsecase) ChangePassword(ctx context.Context, userID uint, current, newPassword, confirm string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrInvalidCurrentPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	user.RefreshToken = ""
	return u.users.Update(ctx, user)
}

// ForgotPassword はリセットトークンを発行・保存し、リセットリンクをメールで送信します。
func (u *accountUsecase) ForgotPassword(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, digest, err := token.New()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(oneTimeTokenTTL)

	user.ResetPasswordToken = digest
	user.ResetPasswordTokenExpiry = &expiry
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset/password/%s", u.clientURL, raw)
	if err := u.mail.Send(ctx, user.Email, "Password Recovery", resetMailBody(resetURL)); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword はリセットリンク中の平文トークンを検証し、新しいパスワードを保存します。
// 消費されたトークンと保存中のリフレッシュトークンはクリアされます。
func (u *accountUsecase) ResetPassword(ctx context.Context, rawToken, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}

	user, err := u.users.FindByResetToken(ctx, token.Hash(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	user.ResetPasswordToken = ""
	user.ResetPasswordTokenExpiry = nil
	user.RefreshToken = ""
	return u.users.Update(ctx, user)
}

// Get は自身のユーザーレコードを取得します。
func (u *accountUsecase) Get(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateProfile は名前・ユーザー名・メールアドレス・パスワードを上書きします。
// 空文字のフィールドは未指定として無視されます。メールアドレスが変更された場合、
// アカウントは未検証に戻り、新しい検証メールが送信されます。
func (u *accountUsecase) UpdateProfile(ctx context.Context, userID uint, name, username, email, password string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	emailChanged := email != "" && email != user.Email
	if emailChanged {
		if _, err := u.users.FindByEmail(ctx, email); err == nil {
			return nil, domain.ErrEmailAlreadyExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if username != "" && username != user.Username {
		if _, err := u.users.FindByUsername(ctx, username); err == nil {
			return nil, domain.ErrUsernameAlreadyExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Username = username
	}
	if name != "" {
		user.Name = name
	}
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	var rawVerification string
	if emailChanged {
		// 新しいアドレスは未検証。検証トークンを発行し直す。
		raw, digest, err := token.New()
		if err != nil {
			return nil, err
		}
		expiry := time.Now().Add(oneTimeTokenTTL)
		rawVerification = raw
		user.IsVerified = false
		user.VerificationToken = digest
		user.VerificationTokenExpiry = &expiry
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if emailChanged {
		if err := u.mail.Send(ctx, user.Email, "Verify your email address", verificationMailBody(user.Name, u.verificationURL(rawVerification))); err != nil {
			return nil, fmt.Errorf("failed to send verification email: %w", err)
		}
	}

	return user, nil
}

// verificationURL は検証リンクを組み立てます。
func (u *accountUsecase) verificationURL(rawToken string) string {
	return fmt.Sprintf("%s/verify/email/%s", u.clientURL, rawToken)
}
