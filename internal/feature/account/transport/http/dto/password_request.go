package dto

// UpdatePasswordReq represents the request body for the authenticated
// password change endpoint.
type UpdatePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ForgotPasswordReq represents the request body for /forgot/password.
// Format validation happens in the usecase so the response message can
// distinguish a missing email from a malformed one.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordReq represents the request body for /reset/password/:token.
type ResetPasswordReq struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
