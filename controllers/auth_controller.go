package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/services"
	"go.uber.org/zap"
)

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login - checks credentials and issues a session
// token, returned in the body and as an HTTP-only cookie
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	cfg := config.GetConfig()
	sessions, err := services.NewSessionService(cfg)
	if err != nil {
		handleError(c, err)
		return
	}
	session, err := sessions.Issue(user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.SessionCookie, session.Token, int(sessions.TTL().Seconds()), "/", "", cfg.IsProduction(), true)
	zap.L().Info("user logged in", zap.String("username", user.Username))

	respond(c, http.StatusOK, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       user,
	})
}

// Logout handles POST /api/v1/auth/logout - clears the session cookie
func Logout(c *gin.Context) {
	cfg := config.GetConfig()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.SessionCookie, "", -1, "/", "", cfg.IsProduction(), true)
	respond(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/v1/auth/me - returns the signed-in user
func Me(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}
	respond(c, http.StatusOK, user)
}
