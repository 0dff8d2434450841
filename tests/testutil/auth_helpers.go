package testutil

import (
	"strconv"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/models"
)

// MockValidatedClaims creates session claims as EnsureValidSession would store them
func MockValidatedClaims(user *models.User, issuer string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: strconv.FormatUint(uint64(user.ID), 10),
		},
		CustomClaims: &middleware.SessionClaims{
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		},
	}
}

// SetMockAuthContext marks the context as signed in as user
func SetMockAuthContext(c *gin.Context, user *models.User) {
	claims := MockValidatedClaims(user, "printshop-api")
	c.Set("user_id", claims.RegisteredClaims.Subject)
	c.Set("validated_claims", claims)
	c.Set("current_user", user)
}

// MockAuth is a handler that signs every request in as user
func MockAuth(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, user)
		c.Next()
	}
}
