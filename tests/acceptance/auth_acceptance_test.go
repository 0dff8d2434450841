package acceptance

import (
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// AuthAcceptanceTestSuite checks the session lifecycle as a browser sees it
type AuthAcceptanceTestSuite struct {
	serverSuite
}

// TestHealthEndpoint tests the public health endpoint
func (suite *AuthAcceptanceTestSuite) TestHealthEndpoint() {
	response := suite.decode(suite.makeRequest(http.MethodGet, "/api/v1/health", nil))
	assert.True(suite.T(), response["success"].(bool))
	assert.Equal(suite.T(), "Print Shop API is running", response["message"])
}

// TestCookieSessionWorkflow logs in, uses the cookie, then logs out
func (suite *AuthAcceptanceTestSuite) TestCookieSessionWorkflow() {
	// Step 1: protected endpoints reject anonymous callers
	resp := suite.makeRequest(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Step 2: after login the jar carries the session cookie
	suite.login("frontdesk")
	me := suite.data(suite.makeRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(suite.T(), "frontdesk", me["username"])
	assert.Equal(suite.T(), false, me["is_admin"])

	// Step 3: logout expires the cookie and the next call is anonymous again
	resp = suite.makeRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = suite.makeRequest(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestErrorResponseFormat validates consistent error response format
func (suite *AuthAcceptanceTestSuite) TestErrorResponseFormat() {
	testCases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"Anonymous", http.MethodGet, "/api/v1/orders", nil, http.StatusUnauthorized},
		{"Bad login", http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "frontdesk", "password": "nope12345"}, http.StatusUnauthorized},
		{"Unknown route", http.MethodGet, "/api/v1/unknown", nil, http.StatusNotFound},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			resp := suite.makeRequest(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

			response := suite.decode(resp)
			assert.False(t, response["success"].(bool))
			errorObj := response["error"].(map[string]interface{})
			assert.NotEmpty(t, errorObj["code"])
			assert.NotEmpty(t, errorObj["message"])
		})
	}
}

// TestCORSPreflight checks that the configured front end may call with credentials
func (suite *AuthAcceptanceTestSuite) TestCORSPreflight() {
	req, err := http.NewRequest(http.MethodOptions, suite.server.URL+"/api/v1/orders", nil)
	suite.Require().NoError(err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	assert.Less(suite.T(), resp.StatusCode, 300)
	assert.Equal(suite.T(), "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(suite.T(), "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

// TestMetricsExposed checks the prometheus endpoint is served alongside the API
func (suite *AuthAcceptanceTestSuite) TestMetricsExposed() {
	suite.decode(suite.makeRequest(http.MethodGet, "/api/v1/health", nil))

	resp := suite.makeRequest(http.MethodGet, "/metrics", nil)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	assert.Contains(suite.T(), string(body), "printshop_http_requests_total")
}

// TestAuthAcceptanceTestSuite runs the acceptance test suite
func TestAuthAcceptanceTestSuite(t *testing.T) {
	if os.Getenv("SKIP_ACCEPTANCE_TESTS") == "true" {
		t.Skip("Skipping acceptance tests")
	}
	suite.Run(t, new(AuthAcceptanceTestSuite))
}
