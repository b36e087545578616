package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"klondike-go/internal/config"
)

// CORS enables credentialed cross-origin requests from WS_ALLOWED_ORIGINS and,
// in development, from any loopback port.
func CORS(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" || !allowedOrigin(cfg, origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

var loopbackPrefixes = []string{
	"http://localhost:", "http://127.0.0.1:", "http://[::1]:",
	"https://localhost:", "https://127.0.0.1:", "https://[::1]:",
}

func allowedOrigin(cfg config.Config, origin string) bool {
	if slices.Contains(cfg.WSAllowedOrigins, origin) {
		return true
	}
	if !cfg.IsDevelopment() {
		return false
	}
	for _, p := range loopbackPrefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}
