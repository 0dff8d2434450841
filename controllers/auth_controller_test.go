package controllers

import (
	"net/http"
	"testing"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	e := setupEnv(t, false)
	e.router.POST("/login", Login)

	w := e.do(http.MethodPost, "/login", map[string]string{"username": "operator", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeData(t, w, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "operator", data.User.Username)
	assert.NotContains(t, w.Body.String(), "password_hash")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, config.GetConfig().SessionCookie, cookies[0].Name)
	assert.Equal(t, data.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	sessions, err := services.NewSessionService(config.GetConfig())
	require.NoError(t, err)
	claims, err := sessions.Parse(data.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
}

func TestLoginRejections(t *testing.T) {
	e := setupEnv(t, false)
	e.router.POST("/login", Login)

	disabled, err := services.NewUserService(e.db).Register(t.Context(), services.RegisterInput{
		Username: "former", Email: "former@printshop.test", Password: "password1",
	})
	require.NoError(t, err)
	_, err = services.NewUserService(e.db).SetActive(t.Context(), disabled.ID, false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     map[string]string
		status   int
		wantCode string
	}{
		{"missing password", map[string]string{"username": "operator"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrong password", map[string]string{"username": "operator", "password": "nope12345"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown user", map[string]string{"username": "ghost", "password": "password1"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"deactivated", map[string]string{"username": "former", "password": "password1"}, http.StatusForbidden, "ACCOUNT_DISABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLogoutAndMe(t *testing.T) {
	e := setupEnv(t, true)
	e.router.POST("/logout", Logout)
	e.router.GET("/me", Me)

	w := e.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	w = e.do(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decodeData(t, w, &me)
	assert.Equal(t, e.user.ID, me.ID)
	assert.True(t, me.IsAdmin)
}
