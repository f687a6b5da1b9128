// Package adapters はaccountフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// userMySQL はUserRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type userMySQL struct {
	db *gorm.DB
}

// userMySQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMySQL)(nil)

// NewUserMySQL は指定されたgorm.DB接続でuserMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserMySQL(db *gorm.DB) *userMySQL {
	return &userMySQL{db: db}
}

// Create はユーザーをデータベースに追加します。
// ユニークキー重複の場合、対象カラムに応じたドメインエラーを返します。
func (r *userMySQL) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		// MySQLエラー1062: ユニークキーの重複エントリ
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			if strings.Contains(mysqlErr.Message, "username") {
				return domain.ErrUsernameAlreadyExists
			}
			return domain.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userMySQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userMySQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *userMySQL) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByVerificationToken は検証トークンのダイジェストが一致し、
// 有効期限が切れていない（expiry >= now）ユーザーを取得します。
func (r *userMySQL) FindByVerificationToken(ctx context.Context, digest string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, "verification_token = ? AND verification_token_expiry >= ?", digest, now)
}

// FindByResetToken はリセットトークンのダイジェストが一致し、
// 有効期限が厳密に未来（expiry > now）のユーザーを取得します。
func (r *userMySQL) FindByResetToken(ctx context.Context, digest string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, "reset_password_token = ? AND reset_password_token_expiry > ?", digest, now)
}

// findOne は条件に一致する最初のユーザーを取得する共通ヘルパーです。
func (r *userMySQL) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update はユーザーレコード全体を保存します。
func (r *userMySQL) Update(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// RotateRefreshToken は保存中のリフレッシュトークンがcurrentと一致する場合のみ
// nextへ置き換えます。条件付きUPDATEにより、読み取りと書き込みの間で別リクエストが
// ローテーションを済ませていた場合はusecase.ErrRefreshTokenStaleを返します。
func (r *userMySQL) RotateRefreshToken(ctx context.Context, id uint, current, next string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrRefreshTokenStale
	}
	return nil
}
