package jwtmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie names used for token transport.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Cookie lifetimes in seconds, matching the token lifetimes.
const (
	accessCookieMaxAge  = 30 * 60
	refreshCookieMaxAge = 24 * 60 * 60
)

// SetAuthCookies sets both token cookies: HTTP-only, secure, SameSite=Strict,
// scoped to the whole site.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, accessToken, accessCookieMaxAge, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, refreshCookieMaxAge, "/", "", true, true)
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", true, true)
}
