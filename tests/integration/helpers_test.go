package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/router"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// apiSuite runs every request through the production router with real sessions
type apiSuite struct {
	suite.Suite
	router  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	storage *services.MockArtworkStorage

	admin      *models.User
	staff      *models.User
	adminToken string
	staffToken string
}

// SetupSuite runs once before all tests
func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("GO_ENV", "test")
	testutil.RequireTestEnvironment(s.T())
}

// SetupTest gives every test a fresh database, storage and pair of signed-in users
func (s *apiSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cfg = testutil.TestConfig()
	s.cfg.MaxUploadBytes = 64 << 10
	config.SetConfig(s.cfg)
	services.SetSequencer(services.DBSequencer{})

	s.storage = services.NewMockArtworkStorage()
	s.storage.SetAsMockForTesting()

	s.router = router.SetupRouter(s.cfg, nil)

	s.admin = testutil.CreateUser(s.T(), s.db, "manager", true)
	s.staff = testutil.CreateUser(s.T(), s.db, "pressman", false)
	s.adminToken = s.login("manager", "password1")
	s.staffToken = s.login("pressman", "password1")
}

// TearDownTest runs after each test
func (s *apiSuite) TearDownTest() {
	config.SetConfig(nil)
	services.SetArtworkStorage(nil)
}

func (s *apiSuite) login(username, password string) string {
	w := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": username,
		"password": password,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	data := s.data(w)
	return data["token"].(string)
}

// request sends body as JSON with an optional bearer token
func (s *apiSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// upload sends fields and an optional file as multipart/form-data
func (s *apiSuite) upload(method, path, token string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) response(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// data returns the envelope's data object after checking success
func (s *apiSuite) data(w *httptest.ResponseRecorder) map[string]interface{} {
	response := s.response(w)
	s.Require().True(response["success"].(bool), w.Body.String())
	return response["data"].(map[string]interface{})
}

func (s *apiSuite) list(w *httptest.ResponseRecorder) []interface{} {
	response := s.response(w)
	s.Require().True(response["success"].(bool), w.Body.String())
	return response["data"].([]interface{})
}

func (s *apiSuite) errorCode(w *httptest.ResponseRecorder) string {
	response := s.response(w)
	s.Require().False(response["success"].(bool), w.Body.String())
	return response["error"].(map[string]interface{})["code"].(string)
}

// id reads a numeric id field from a decoded object
func id(obj map[string]interface{}, key string) uint {
	return uint(obj[key].(float64))
}
