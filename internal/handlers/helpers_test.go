package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/gl_engine/internal/handlers"
	"github.com/SscSPs/gl_engine/internal/middleware"
)

const (
	testCompanyID = "company-1"
	testUserID    = "user-1"
	testSecret    = "test-secret-key-that-is-long-enough"
)

// handlerSuite carries the router and token shared by the handler suites.
type handlerSuite struct {
	suite.Suite
	router  *gin.Engine
	company *gin.RouterGroup
	token   string
}

func (s *handlerSuite) setupRouter() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(handlers.RegisterValidators())

	s.router = gin.New()
	s.router.Use(middleware.AuthMiddleware(testSecret))
	s.company = s.router.Group("/api/v1/companies/:company_id")
	s.token = generateTestToken(s.T(), testUserID)
}

func generateTestToken(t interface{ Fatalf(string, ...any) }, userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func (s *handlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, "/api/v1/companies/"+testCompanyID+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *handlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
