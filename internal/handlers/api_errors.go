package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"klondike-go/internal/models"
	"klondike-go/internal/solitaire"
)

// publicError maps err to a status code and a message that is safe to show
// clients. ok is false for unexpected errors, which callers should log.
func publicError(err error) (status int, msg string, ok bool) {
	if reason, isMove := solitaire.IsInvalidMove(err); isMove {
		return http.StatusBadRequest, reason, true
	}
	switch {
	case errors.Is(err, solitaire.ErrMalformedMove):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, models.ErrInvalidJSON):
		return http.StatusBadRequest, "invalid json", true
	case errors.Is(err, models.ErrGameNotFound):
		return http.StatusNotFound, "Unknown Game", true
	case errors.Is(err, models.ErrNotGameOwner):
		return http.StatusNotFound, "Unauthorized User", true
	case errors.Is(err, models.ErrGameCompleted):
		return http.StatusNotFound, "Game Completed", true
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found", true
	case errors.Is(err, models.ErrUsernameTaken):
		return http.StatusConflict, "username already taken", true
	case errors.Is(err, models.ErrGameStateConflict):
		return http.StatusConflict, "game state conflict; reload and retry", true
	case errors.Is(err, models.ErrGameStateMissing):
		return http.StatusConflict, "game state unavailable", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

func writeAPIError(c *gin.Context, logger *log.Logger, err error) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	status, msg, ok := publicError(err)
	if !ok {
		logger.Error("internal error", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
