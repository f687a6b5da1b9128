package usecase

import "errors"

var (
	// ErrInvalidVerificationToken is returned when a verification token does not
	// match any user or its validity window has passed.
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")

	// ErrInvalidResetToken is returned when a password reset token does not
	// match any user or its validity window has passed.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrNotVerified is returned on login while the email address is still
	// unverified and the current verification link is still live.
	ErrNotVerified = errors.New("email not verified")

	// ErrVerificationResent is returned on login when the verification link had
	// expired and a fresh one was issued and emailed.
	ErrVerificationResent = errors.New("verification link expired, a new one was sent")

	// ErrInvalidEmail is returned when an email address fails format validation.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation do not match.
	ErrPasswordMismatch = errors.New("password and confirmation do not match")

	// ErrInvalidCurrentPassword is returned when the presented current password
	// does not verify against the stored hash.
	ErrInvalidCurrentPassword = errors.New("invalid current password")

	// ErrRefreshTokenInvalid is returned when a refresh token fails signature
	// or expiry verification.
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

	// ErrRefreshTokenUnknownUser is returned when a refresh token verifies but
	// references a user that no longer exists.
	ErrRefreshTokenUnknownUser = errors.New("refresh token references unknown user")

	// ErrRefreshTokenStale is returned when a presented refresh token does not
	// equal the value stored on the user record, i.e. it was already rotated
	// or revoked.
	ErrRefreshTokenStale = errors.New("refresh token expired or used")
)
