package handlers

import (
	"github.com/gin-gonic/gin"

	"klondike-go/internal/middleware"
)

func userIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func usernameFromContext(c *gin.Context) string {
	return c.GetString(middleware.CtxUsername)
}
