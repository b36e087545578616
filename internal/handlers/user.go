package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"klondike-go/internal/auth"
	"klondike-go/internal/models"
)

type createUserRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	PrimaryEmail string `json:"primary_email"`
}

type userResponse struct {
	Username     string `json:"username"`
	PrimaryEmail string `json:"primary_email"`
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateUserHandler registers a player.
func CreateUserHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		username := normalizeUsername(req.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 32 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-32 characters"})
			return
		}
		email := strings.TrimSpace(req.PrimaryEmail)
		if email != "" && !strings.Contains(email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid primary_email"})
			return
		}

		// Passwords are not trimmed: surrounding spaces are valid characters.
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			if auth.IsPasswordValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			writeAPIError(c, d.logger(), err)
			return
		}

		u, err := models.CreateUser(c.Request.Context(), d.DB, username, email, hash)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		d.logger().Info("user created", "user_id", u.ID, "username", u.Username)
		c.JSON(http.StatusCreated, userResponse{Username: u.Username, PrimaryEmail: u.PrimaryEmail})
	}
}

// GetUserHandler returns a player's profile and game summaries.
func GetUserHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		username := normalizeUsername(c.Param("username"))
		u, err := models.GetUserByUsername(ctx, d.DB, username)
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown user: " + username})
			return
		}
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}

		games, err := models.ListGamesByOwner(ctx, d.DB, u.ID)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		profiles := make([]models.GameProfile, 0, len(games))
		for i := range games {
			profiles = append(profiles, games[i].Profile())
		}
		c.JSON(http.StatusOK, gin.H{
			"username":      u.Username,
			"primary_email": u.PrimaryEmail,
			"games":         profiles,
		})
	}
}

// UserExistsHandler answers HEAD requests: 200 when the username is taken, 404 otherwise.
func UserExistsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := models.GetUserByUsername(c.Request.Context(), d.DB, normalizeUsername(c.Param("username")))
		switch {
		case err == nil:
			c.Status(http.StatusOK)
		case errors.Is(err, models.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			d.logger().Error("user lookup failed", "err", err)
			c.Status(http.StatusInternalServerError)
		}
	}
}
