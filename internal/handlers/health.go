package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HealthHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.DB.PingContext(c.Request.Context()); err != nil {
			d.logger().Error("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
