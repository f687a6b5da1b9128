package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned when a token is malformed or its signature
	// does not verify. Distinct from ErrTokenExpired so the client knows
	// whether a refresh attempt is worthwhile.
	ErrTokenInvalid = errors.New("invalid token")
)

// Generator issues and verifies the access/refresh token pair.
// The two token kinds are signed with separate secrets so a leaked access
// secret cannot mint refresh tokens.
type Generator struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewGenerator creates a new JWT generator with the provided secrets and lifetimes.
func NewGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GeneratePair creates a signed access/refresh token pair for the given user.
func (g *Generator) GeneratePair(userID uint) (string, string, error) {
	access, err := sign(userID, g.accessSecret, g.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := sign(userID, g.refreshSecret, g.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// VerifyAccessToken validates an access token and returns the embedded user ID.
func (g *Generator) VerifyAccessToken(tokenStr string) (uint, error) {
	return verify(tokenStr, g.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns the embedded user ID.
func (g *Generator) VerifyRefreshToken(tokenStr string) (uint, error) {
	return verify(tokenStr, g.refreshSecret)
}

// sign creates a signed HS256 token with standard claims.
func sign(userID uint, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// verify parses a token, checks its signature and expiry, and extracts the
// user ID from the sub claim.
func verify(tokenStr string, secret []byte) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
	if !ok {
		return 0, ErrTokenInvalid
	}
	return uint(sub), nil
}
