package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/services"
)

// ResetPasswordRequest represents the request body for an admin password reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ListUsers handles GET /api/v1/users - lists staff accounts (admin only)
func ListUsers(c *gin.Context) {
	users, err := services.NewUserService(config.GetDB()).List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// CreateUser handles POST /api/v1/users - registers a staff account (admin only)
func CreateUser(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Register(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// GetUser handles GET /api/v1/users/:id
func GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := services.NewUserService(config.GetDB()).Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// ResetUserPassword handles POST /api/v1/users/:id/password
func ResetUserPassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := services.NewUserService(config.GetDB()).ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Password updated"})
}

// ActivateUser handles POST /api/v1/users/:id/activate
func ActivateUser(c *gin.Context) {
	setUserActive(c, true)
}

// DeactivateUser handles POST /api/v1/users/:id/deactivate. Admins cannot lock themselves out.
func DeactivateUser(c *gin.Context) {
	setUserActive(c, false)
}

func setUserActive(c *gin.Context, active bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !active {
		if current, err := middleware.GetCurrentUser(c); err == nil && current.ID == id {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "You cannot deactivate your own account")
			return
		}
	}

	user, err := services.NewUserService(config.GetDB()).SetActive(c.Request.Context(), id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}
