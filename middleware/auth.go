package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionClaims contains the custom data carried by a session token.
type SessionClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"admin"`
}

// Validate satisfies validator.CustomClaims; a session must name its user.
func (c *SessionClaims) Validate(ctx context.Context) error {
	if c.Username == "" {
		return errors.New("session has no username")
	}
	return nil
}

// EnsureValidSession checks the HS256 session token from the session cookie or
// the Authorization header and stores the subject as user_id.
func EnsureValidSession(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.SessionSecret)
	jwtValidator, err := validator.New(
		func(context.Context) (interface{}, error) { return secret, nil },
		validator.HS256,
		cfg.SessionIssuer,
		[]string{config.SessionAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &SessionClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		zap.L().Fatal("failed to set up the session validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		code, message := "INVALID_SESSION", "Session is invalid or expired"
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			code, message = "UNAUTHORIZED", "Authentication required"
		} else {
			zap.L().Debug("rejected session", zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		body := fmt.Sprintf(`{"success":false,"error":{"code":%q,"message":%q}}`, code, message)
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			zap.L().Warn("failed to write error response", zap.Error(writeErr))
		}
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.CookieTokenExtractor(cfg.SessionCookie),
			jwtmiddleware.AuthHeaderTokenExtractor,
		)),
	)

	return func(c *gin.Context) {
		valid := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			valid = true
			c.Request = r
			c.Set("user_id", token.RegisteredClaims.Subject)
			c.Set("validated_claims", token)

			c.Next()
		}

		mw.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		// the error handler has already written the response
		if !valid {
			c.Abort()
		}
	}
}

// LoadCurrentUser resolves user_id to an active account and stores it as current_user.
func LoadCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		id, err := strconv.ParseUint(userID, 10, 64)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "INVALID_SESSION", "Session is invalid or expired")
			return
		}

		var user models.User
		if err := config.GetDB().WithContext(c.Request.Context()).First(&user, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(c, http.StatusUnauthorized, "INVALID_SESSION", "Session user no longer exists")
				return
			}
			zap.L().Error("failed to load session user", zap.Uint64("user_id", id), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
			return
		}
		if !user.IsActive {
			abortWithError(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is deactivated")
			return
		}

		c.Set("current_user", &user)
		c.Next()
	}
}

// RequireAdmin rejects users without administrator access
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !user.IsAdmin {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			return
		}
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetClaims extracts the validated session claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetCurrentUser returns the account loaded by LoadCurrentUser
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	v, exists := c.Get("current_user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}
	return user, nil
}

// Actor names the signed-in user for audit history, or "system"
func Actor(c *gin.Context) string {
	if user, err := GetCurrentUser(c); err == nil {
		return user.Username
	}
	return "system"
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
