package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/service"
)

// CtxUserID is the gin context key carrying the authenticated user id.
const CtxUserID = "user_id"

// AuthCookie is where the browser keeps the jwt.
const AuthCookie = "auth_token"

// LoginPath receives redirected unauthenticated requests.
const LoginPath = "/auth/login/"

func tokenFrom(c *gin.Context) string {
	if raw, err := c.Cookie(AuthCookie); err == nil && raw != "" {
		return raw
	}
	h := c.GetHeader("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

// RequireAuth redirects anonymous requests to the login page with the
// original path preserved in `next`, mirroring browser-app behavior.
func RequireAuth(accounts service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw != "" {
			if userID, err := accounts.ParseToken(raw); err == nil {
				c.Set(CtxUserID, userID)
				c.Next()
				return
			}
		}
		next := url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, LoginPath+"?next="+next)
		c.Abort()
	}
}

// OptionalAuth resolves the user when a valid token is present but
// never blocks; public pages use it to personalize (e.g. the
// "following" flag on profiles).
func OptionalAuth(accounts service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFrom(c); raw != "" {
			if userID, err := accounts.ParseToken(raw); err == nil {
				c.Set(CtxUserID, userID)
			}
		}
		c.Next()
	}
}

// UserID reads the authenticated user id, empty for anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
