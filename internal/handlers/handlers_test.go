package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/justsurfingit/job-application-tracker/internal/config"
	"github.com/justsurfingit/job-application-tracker/internal/database"
	"github.com/justsurfingit/job-application-tracker/internal/live"
	"github.com/justsurfingit/job-application-tracker/internal/services"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type testEnv struct {
	router   *gin.Engine
	token    string
	owner    uint
	apps     *services.ApplicationService
	accounts *services.AccountService
	hub      *live.Hub
}

func newTestEnv(t *testing.T, scanner *services.ScanService) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(config.Database{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)

	tokens := auth.NewTokens("test-secret", "test", time.Hour)
	hub := live.NewHub()
	accounts := services.NewAccountService(db, tokens)
	apps := services.NewApplicationService(db, hub)

	acct, token, err := accounts.SignUp(context.Background(), "jane@example.com", "hunter22", "Jane")
	require.NoError(t, err)

	return &testEnv{
		router: NewRouter(Deps{
			Tokens:       tokens,
			Accounts:     accounts,
			Applications: apps,
			Scanner:      scanner,
			Hub:          hub,
		}),
		token:    token,
		owner:    acct.ID,
		apps:     apps,
		accounts: accounts,
		hub:      hub,
	}
}

// do sends an authenticated JSON request.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.send(t, method, path, body, e.token)
}

func (e *testEnv) send(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type stubLLM struct {
	reply string
}

func (s stubLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.reply}}}, nil
}

func (s stubLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return s.reply, nil
}
