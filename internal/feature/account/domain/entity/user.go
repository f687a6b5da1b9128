// Package entity defines the domain entities for the account feature.
package entity

import "time"

// User represents a registered account in the system.
// It carries the credentials, verification state and the single currently
// valid refresh token for that account.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Name is the user's display name.
	Name string `gorm:"size:255;not null" json:"name"`

	// Username is the unique handle chosen at registration.
	Username string `gorm:"uniqueIndex;size:255;not null" json:"username"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Password is the bcrypt hash of the user's password.
	// Empty for accounts that have no password credential.
	Password string `gorm:"size:255" json:"-"`

	// IsVerified reports whether the email address has been confirmed.
	// Login is refused while this is false.
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`

	// VerificationToken is the SHA-256 digest of the outstanding email
	// verification token. At most one live token exists per user; issuing
	// a new one overwrites the previous digest.
	VerificationToken       string     `gorm:"size:64" json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`

	// ResetPasswordToken is the SHA-256 digest of the outstanding password
	// reset token, same overwrite semantics as VerificationToken.
	ResetPasswordToken       string     `gorm:"size:64" json:"-"`
	ResetPasswordTokenExpiry *time.Time `json:"-"`

	// RefreshToken is the single refresh token currently accepted for this
	// user. A presented refresh token that does not equal this value has
	// been rotated or revoked.
	RefreshToken string `gorm:"size:512" json:"-"`

	// Color is the display color assigned once at creation.
	Color string `gorm:"size:7" json:"color"`

	// LastLoginAt is the time of the most recent successful login.
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLiveVerificationToken reports whether the stored verification token is
// still within its validity window.
func (u *User) HasLiveVerificationToken(now time.Time) bool {
	return u.VerificationToken != "" &&
		u.VerificationTokenExpiry != nil &&
		now.Before(*u.VerificationTokenExpiry)
}
