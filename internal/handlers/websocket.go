package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"klondike-go/internal/auth"
	"klondike-go/internal/config"
	"klondike-go/internal/models"
	"klondike-go/internal/solitaire"
	ws "klondike-go/pkg/websocket"
)

const wsMoveTimeout = 10 * time.Second

func newUpgrader(cfg config.Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return checkOrigin(cfg, strings.TrimSpace(r.Header.Get("Origin")))
		},
	}
}

func checkOrigin(cfg config.Config, origin string) bool {
	if origin == "" {
		// Non-browser clients send no Origin.
		return true
	}
	if slices.Contains(cfg.WSAllowedOrigins, origin) {
		return true
	}
	if !cfg.IsDevelopment() {
		return false
	}
	return cfg.DevWebSocketsAllowAll || isLocalhostOrigin(origin)
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// WebSocketHandler upgrades the owner of ?game=<id> and subscribes them to
// that game's updates. Clients may also submit moves over the socket.
func WebSocketHandler(d *Deps) gin.HandlerFunc {
	upgrader := newUpgrader(d.Config)
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request, d.Config.WSAllowQueryTokens)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := auth.ParseAndValidateToken(token, d.Config)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Preconditions run before the upgrade so failures are still plain HTTP.
		gameID := strings.TrimSpace(c.Query("game"))
		if gameID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "game is required"})
			return
		}
		g, err := models.GetGameByID(c.Request.Context(), d.DB, gameID)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		if g.OwnerID != claims.UserID {
			writeAPIError(c, d.logger(), models.ErrNotGameOwner)
			return
		}
		hub, ok := d.hub()
		if !ok {
			d.logger().Error("websocket hub unavailable", "user_id", claims.UserID, "game_id", gameID)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime unavailable"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			d.logger().Warn("websocket upgrade failed",
				"remote", c.ClientIP(), "origin", c.Request.Header.Get("Origin"), "err", err)
			return
		}

		client := ws.NewClient(conn, hub, ws.GameRoom(g.ID), claims.UserID, claims.Username)
		if !hub.Register(client) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "shutting down"),
				time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump(func(msg []byte) {
			handleWSMessage(d, hub, client, g.ID, msg)
		})

		hub.SendTo(client, "connected", gameView(g, nil))
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func handleWSMessage(d *Deps, hub *ws.Hub, client *ws.Client, gameID string, msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		hub.SendTo(client, "error", gin.H{"error": "invalid json"})
		return
	}

	switch in.Type {
	case "move":
		var m solitaire.Move
		if err := json.Unmarshal(in.Payload, &m); err != nil {
			hub.SendTo(client, "error", gin.H{"error": solitaire.ErrMalformedMove.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), wsMoveTimeout)
		defer cancel()

		g, err := ApplyMove(ctx, d, gameID, client.UserID, client.Username, m)
		if err != nil {
			_, text, ok := publicError(err)
			if !ok {
				d.logger().Error("websocket move failed", "game_id", gameID, "user_id", client.UserID, "err", err)
			}
			hub.SendTo(client, "error", gin.H{"error": text})
			return
		}
		hub.SendTo(client, "move_ok", gameView(g, nil))
	default:
		hub.SendTo(client, "error", gin.H{"error": "unknown message type"})
	}
}
