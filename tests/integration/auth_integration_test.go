package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

// AuthIntegrationTestSuite covers sign-in, sessions and role checks
type AuthIntegrationTestSuite struct {
	apiSuite
}

func (s *AuthIntegrationTestSuite) TestLogin_InvalidCredentials() {
	w := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "pressman",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("INVALID_CREDENTIALS", s.errorCode(w))
	s.Empty(w.Result().Cookies())
}

func (s *AuthIntegrationTestSuite) TestSessionCookieWorkflow() {
	// Step 1: log in and keep the cookie
	w := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "pressman",
		"password": "password1",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == s.cfg.SessionCookie {
			session = c
		}
	}
	s.Require().NotNil(session)

	// Step 2: the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("pressman", s.data(w)["username"])

	// Step 3: logout expires the cookie
	w = s.request(http.MethodPost, "/api/v1/auth/logout", "", nil)
	s.Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	s.Require().NotEmpty(cookies)
	s.Equal(s.cfg.SessionCookie, cookies[0].Name)
	s.Less(cookies[0].MaxAge, 0)
}

func (s *AuthIntegrationTestSuite) TestDeactivatedUserLosesAccess() {
	w := s.request(http.MethodGet, "/api/v1/dashboard", s.staffToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/deactivate", s.staff.ID), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// the outstanding token is still signed but the account is disabled
	w = s.request(http.MethodGet, "/api/v1/dashboard", s.staffToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("ACCOUNT_DISABLED", s.errorCode(w))

	w = s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "pressman",
		"password": "password1",
	})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/activate", s.staff.ID), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.request(http.MethodGet, "/api/v1/dashboard", s.staffToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *AuthIntegrationTestSuite) TestUserManagement() {
	// Step 1: staff cannot manage accounts
	w := s.request(http.MethodPost, "/api/v1/users", s.staffToken, map[string]interface{}{
		"username": "binder",
		"email":    "binder@printshop.test",
		"password": "bindery99",
	})
	s.Equal(http.StatusForbidden, w.Code)

	// Step 2: the admin creates an account
	w = s.request(http.MethodPost, "/api/v1/users", s.adminToken, map[string]interface{}{
		"username":   "binder",
		"email":      "binder@printshop.test",
		"password":   "bindery99",
		"first_name": "Bea",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	user := s.data(w)
	s.NotContains(user, "password_hash")

	// Step 3: the new account can sign in, then a reset password replaces the old one
	s.login("binder", "bindery99")
	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/password", id(user, "id")), s.adminToken, map[string]interface{}{
		"password": "newpass123",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.login("binder", "newpass123")

	w = s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "binder",
		"password": "bindery99",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

// TestAuthIntegrationSuite runs the test suite
func TestAuthIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationTestSuite))
}
