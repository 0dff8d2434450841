package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	e := setupEnv(t, false)
	e.router.GET("/health", HealthCheck)

	w := e.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Print Shop API is running"}`, w.Body.String())
}

func TestDatabaseStatus(t *testing.T) {
	e := setupEnv(t, false)
	e.router.GET("/database/status", DatabaseStatus)

	w := e.do(http.MethodGet, "/database/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool     `json:"success"`
		Driver  string   `json:"driver"`
		Tables  []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "sqlite", body.Driver)
	assert.Contains(t, body.Tables, "orders")
	assert.Contains(t, body.Tables, "job_events")

	config.SetDB(nil)
	w = e.do(http.MethodGet, "/database/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATABASE_ERROR", errorCode(t, w))
}
