package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"klondike-go/internal/auth"
	"klondike-go/internal/config"
)

// Context keys set by RequireAuth and OptionalAuth.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
)

// RequireAuth rejects requests without a valid session token.
func RequireAuth(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, cfg) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalAuth records the caller's identity when a valid token is present
// and lets anonymous requests through.
func OptionalAuth(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, cfg)
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg config.Config) bool {
	token := auth.TokenFromRequest(c.Request, false)
	if token == "" {
		return false
	}
	claims, err := auth.ParseAndValidateToken(token, cfg)
	if err != nil {
		return false
	}
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	return true
}
