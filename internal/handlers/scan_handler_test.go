package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postingServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<h1>Backend Engineer at Acme</h1>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func scannerReplying(reply string) *services.ScanService {
	return services.NewScanService(&services.LLMService{Client: stubLLM{reply: reply}}, time.Second)
}

func TestScan(t *testing.T) {
	srv := postingServer(t)
	env := newTestEnv(t, scannerReplying(`{"company":"Acme","role":"Backend Engineer","location":""}`))

	w := env.do(t, http.MethodPost, "/api/v1/scan", dtos.ScanRequest{URL: srv.URL + "/jobs/1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dtos.ScanResponse](t, w)
	assert.Equal(t, "Acme", resp.Company)
	assert.Equal(t, "Backend Engineer", resp.Role)
	assert.Equal(t, []string{"company", "role"}, resp.Filled)

	w = env.do(t, http.MethodPost, "/api/v1/scan", dtos.ScanRequest{URL: "acme.example/jobs"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please provide a valid URL.")

	w = env.do(t, http.MethodPost, "/api/v1/scan", dtos.ScanRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScan_NothingFound(t *testing.T) {
	srv := postingServer(t)
	env := newTestEnv(t, scannerReplying(`{"company":"","role":"","location":""}`))

	w := env.do(t, http.MethodPost, "/api/v1/scan", dtos.ScanRequest{URL: srv.URL})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Could not automatically determine job details.")
}

func TestScan_Disabled(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/scan", dtos.ScanRequest{URL: "https://acme.example/jobs/1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestScanLocation(t *testing.T) {
	srv := postingServer(t)
	env := newTestEnv(t, scannerReplying(`{"location":"Remote"}`))

	w := env.do(t, http.MethodPost, "/api/v1/scan/location", dtos.ScanRequest{URL: srv.URL})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dtos.ScanResponse](t, w)
	assert.Equal(t, "Remote", resp.Location)
	assert.Equal(t, []string{"location"}, resp.Filled)
}
