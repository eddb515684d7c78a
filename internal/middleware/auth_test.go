package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(tokens *auth.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, strconv.Itoa(int(AccountID(c)))+" "+AccountEmail(c))
	}
	r.GET("/whoami", JWTAuth(tokens), whoami)
	r.GET("/socket", SocketAuth(tokens), whoami)
	return r
}

func TestJWTAuth(t *testing.T) {
	tokens := auth.NewTokens("secret", "test", time.Hour)
	token, err := tokens.Generate(42, "jane@example.com")
	require.NoError(t, err)
	r := setupRouter(tokens)

	tests := []struct {
		name   string
		path   string
		setup  func(req *http.Request)
		status int
	}{
		{"bearer header", "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", "/whoami", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "token", Value: token}) }, http.StatusOK},
		{"query on api route", "/whoami", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusUnauthorized},
		{"query on socket", "/socket", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"header on socket", "/socket", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"missing", "/whoami", func(req *http.Request) {}, http.StatusUnauthorized},
		{"missing on socket", "/socket", func(req *http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"garbage", "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "42 jane@example.com", w.Body.String())
			}
		})
	}
}

func TestJWTAuth_ForeignSecret(t *testing.T) {
	other, err := auth.NewTokens("other", "test", time.Hour).Generate(42, "jane@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	w := httptest.NewRecorder()
	setupRouter(auth.NewTokens("secret", "test", time.Hour)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session has expired")
}
