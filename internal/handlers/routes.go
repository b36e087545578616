package handlers

import (
	"github.com/gin-gonic/gin"

	"klondike-go/internal/middleware"
)

// RegisterRoutes wires the health check and the /v1 API onto r.
func RegisterRoutes(r gin.IRouter, d *Deps) {
	r.GET("/healthz", HealthHandler(d))

	v1 := r.Group("/v1")
	requireAuth := middleware.RequireAuth(d.Config)

	v1.POST("/user", CreateUserHandler(d))
	v1.GET("/user/:username", GetUserHandler(d))
	v1.HEAD("/user/:username", UserExistsHandler(d))

	v1.POST("/session", LoginHandler(d))
	v1.DELETE("/session", LogoutHandler(d))

	v1.POST("/game", requireAuth, CreateGameHandler(d))
	v1.GET("/game/:id", GetGameHandler(d))
	v1.PUT("/game/:id", requireAuth, MoveHandler(d))
	v1.GET("/game/:id/moves", GameMovesHandler(d))

	// Auth for the upgrade happens inside the handler so query tokens can be honoured.
	v1.GET("/ws", WebSocketHandler(d))
}
