package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"klondike-go/internal/auth"
	"klondike-go/internal/models"
)

type sessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username     string `json:"username"`
	PrimaryEmail string `json:"primary_email"`
	Token        string `json:"token"`
}

// LoginHandler checks credentials and starts a cookie session.
func LoginHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		username := normalizeUsername(req.Username)
		if username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}

		u, err := models.GetUserByUsername(c.Request.Context(), d.DB, username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err := auth.ComparePasswordHash(u.PasswordHash, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Username, d.Config)
		if err != nil {
			writeAPIError(c, d.logger(), err)
			return
		}
		setSessionCookie(c, d, token, int(d.Config.JWTTTL.Seconds()))
		c.JSON(http.StatusOK, sessionResponse{Username: u.Username, PrimaryEmail: u.PrimaryEmail, Token: token})
	}
}

// LogoutHandler clears the session cookie. It answers 204 when a valid session
// was present and 200 otherwise.
func LogoutHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		hadSession := false
		if v, err := c.Cookie(auth.AuthCookieName); err == nil && v != "" {
			_, err := auth.ParseAndValidateToken(v, d.Config)
			hadSession = err == nil
		}
		setSessionCookie(c, d, "", -1)
		if hadSession {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusOK)
	}
}

func setSessionCookie(c *gin.Context, d *Deps, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AuthCookieName, value, maxAge, "/", "", !d.Config.IsDevelopment(), true)
}
