// Package domain defines domain-level errors for the account feature.
package domain

import "errors"

// Domain errors for account operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUsernameAlreadyExists indicates that a user with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrInvalidCredentials indicates that the provided credentials are incorrect.
	// It deliberately does not distinguish a wrong password from a missing password credential.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
