// Package jwtmw provides JWT issuance, verification and the request
// authentication middleware.
package jwtmw

import (
	"os"
	"time"
)

// Token lifetimes. The access token is short-lived; revocation happens
// through the refresh token stored on the user record.
const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 24 * time.Hour
)

// Config holds the signing secrets for the two token kinds.
type Config struct {
	AccessSecret  string // secret for access tokens
	RefreshSecret string // secret for refresh tokens
}

// LoadConfig loads JWT configuration from environment variables.
func LoadConfig() Config {
	return Config{
		AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
	}
}
