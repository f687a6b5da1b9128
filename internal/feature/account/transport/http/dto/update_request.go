package dto

// UpdateProfileReq は/me/updateエンドポイントのリクエストボディを表します。
// 全フィールド任意。空のフィールドは未指定として扱われます。
type UpdateProfileReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}
