package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/router"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// serverSuite serves the full API over a real listener and talks to it with a
// cookie-carrying HTTP client, the way a browser front end would.
type serverSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	db     *gorm.DB
	cfg    *config.Config
}

// SetupSuite runs once before all tests
func (s *serverSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("GO_ENV", "test")
	testutil.RequireTestEnvironment(s.T())
}

// SetupTest starts a fresh server with disk artwork storage and signs in as staff
func (s *serverSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cfg = testutil.TestConfig()
	s.cfg.StorageBackend = "local"
	s.cfg.UploadDir = s.T().TempDir()
	config.SetConfig(s.cfg)
	services.SetSequencer(services.DBSequencer{})
	_, err := services.InitArtworkStorage(context.Background(), s.cfg)
	s.Require().NoError(err)

	s.server = httptest.NewServer(router.SetupRouter(s.cfg, metrics.New("printshop")))

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{Jar: jar}

	testutil.CreateUser(s.T(), s.db, "frontdesk", false)
	testutil.CreateUser(s.T(), s.db, "owner", true)
}

// TearDownTest runs after each test
func (s *serverSuite) TearDownTest() {
	s.server.Close()
	config.SetConfig(nil)
	services.SetArtworkStorage(nil)
}

// makeRequest sends body as JSON; the client's cookie jar carries the session
func (s *serverSuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *serverSuite) uploadFile(method, path string, fields map[string]string, filename string, content []byte) *http.Response {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req, err := http.NewRequest(method, s.server.URL+path, &body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *serverSuite) login(username string) {
	resp := s.makeRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": "password1",
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

// decode reads and closes the body
func (s *serverSuite) decode(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(body, &response), string(body))
	return response
}

func (s *serverSuite) data(resp *http.Response) map[string]interface{} {
	response := s.decode(resp)
	s.Require().True(response["success"].(bool), response)
	return response["data"].(map[string]interface{})
}

func (s *serverSuite) create(path string, body interface{}) uint {
	resp := s.makeRequest(http.MethodPost, path, body)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return uint(s.data(resp)["id"].(float64))
}
