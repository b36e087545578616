package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"klondike-go/internal/models"
	"klondike-go/internal/solitaire"
)

type createGameRequest struct {
	Game  string          `json:"game"`
	Color string          `json:"color"`
	Draw  json.RawMessage `json:"draw"`
}

// parseDrawCount accepts "Draw 1", "Draw 3", 1 or 3. Anything else means 1.
func parseDrawCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == 3 {
			return 3
		}
		return 1
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "draw 3", "3":
			return 3
		}
	}
	return 1
}

// CreateGameHandler deals a new game for the caller.
func CreateGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req createGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		kind := strings.ToLower(strings.TrimSpace(req.Game))
		color := strings.ToLower(strings.TrimSpace(req.Color))
		if kind == "" || color == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "game and color are required"})
			return
		}
		if kind != models.DefaultGameKind {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported game: " + kind})
			return
		}

		g, err := CreateGame(c.Request.Context(), d, userID, kind, color, parseDrawCount(req.Draw))
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": g.ID})
	}
}

// GetGameHandler returns the game with its layout; ?moves adds the history.
func GetGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		g, err := models.GetGameByID(ctx, d.DB, id)
		if errors.Is(err, models.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown game: " + id})
			return
		}
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}

		var history []models.GameMove
		if _, want := c.GetQuery("moves"); want {
			if history, err = models.ListMovesByGame(ctx, d.DB, g.ID); err != nil {
				writeAPIError(c, d.logger(), err)
				return
			}
		}
		c.JSON(http.StatusOK, gameView(g, history))
	}
}

// MoveHandler applies one move for the game's owner and returns the new layout.
func MoveHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var m solitaire.Move
		if err := c.ShouldBindJSON(&m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": solitaire.ErrMalformedMove.Error()})
			return
		}

		g, err := ApplyMove(c.Request.Context(), d, c.Param("id"), userID, usernameFromContext(c), m)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		c.JSON(http.StatusOK, gameView(g, nil))
	}
}

// GameMovesHandler lists the move history of a game.
func GameMovesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		if _, err := models.GetGameByID(ctx, d.DB, id); err != nil {
			if errors.Is(err, models.ErrGameNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown game: " + id})
				return
			}
			writeAPIError(c, d.logger(), err)
			return
		}
		moves, err := models.ListMovesByGame(ctx, d.DB, id)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"moves": moves})
	}
}
