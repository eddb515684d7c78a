package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postingServer(t *testing.T, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScan_InvalidURL(t *testing.T) {
	llm := replyWith(`{"company":"Acme"}`)
	svc := NewScanService(&LLMService{Client: llm}, time.Second)

	for _, raw := range []string{"", "acme.example/jobs", "ftp://acme.example/jobs", "not a url"} {
		_, err := svc.Scan(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidScanURL, raw)
	}
	assert.Zero(t, llm.calls())
	assert.Equal(t, "Please provide a valid URL.", ScanMessage(ErrInvalidScanURL))
}

func TestScan_Unavailable(t *testing.T) {
	var svc *ScanService
	_, err := svc.Scan(context.Background(), "https://acme.example/jobs/1")
	assert.ErrorIs(t, err, ErrExtractionUnavailable)

	_, err = NewScanService(nil, time.Second).ScanLocation(context.Background(), "https://acme.example/jobs/1")
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
}

func TestScan_FillsFoundFields(t *testing.T) {
	srv := postingServer(t, "<h1>Backend Engineer</h1><p>Acme is hiring in Berlin</p>")
	llm := replyWith("```json\n{\"company\": \"Acme\", \"role\": \"Backend Engineer\", \"location\": \"\"}\n```")
	svc := NewScanService(&LLMService{Client: llm}, time.Second)
	svc.HTTP = srv.Client()

	res, err := svc.Scan(context.Background(), srv.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.Company)
	assert.Equal(t, "Backend Engineer", res.Role)
	assert.Empty(t, res.Location)
	assert.Equal(t, []string{"company", "role"}, res.Filled)

	require.Equal(t, 1, llm.calls())
	assert.Contains(t, llm.prompts[0], "Acme is hiring in Berlin")
}

func TestScan_FetchFailureStillAsksModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	llm := replyWith(`{"company":"Acme","role":"","location":"Remote"}`)
	svc := NewScanService(&LLMService{Client: llm}, time.Second)

	res, err := svc.Scan(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "location"}, res.Filled)
	assert.Contains(t, llm.prompts[0], "use the URL only")
}

func TestScan_DoesNotFetchPrivateAddresses(t *testing.T) {
	srv := postingServer(t, "AWS_SECRET_ACCESS_KEY=internal-only-secret")
	llm := replyWith(`{"company":"Acme","role":"","location":""}`)
	svc := NewScanService(&LLMService{Client: llm}, time.Second)

	_, err := svc.Scan(context.Background(), srv.URL+"/latest/meta-data/iam")
	require.NoError(t, err)
	require.Equal(t, 1, llm.calls())
	assert.NotContains(t, llm.prompts[0], "internal-only-secret")
	assert.Contains(t, llm.prompts[0], "use the URL only")
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr   string
		public bool
	}{
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"192.168.0.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"93.184.216.34", true},
		{"2606:2800:220:1::1", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.public, isPublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
	assert.ErrorIs(t, checkPublicAddress("127.0.0.1:8080"), errNonPublicAddress)
	assert.NoError(t, checkPublicAddress("93.184.216.34:443"))
}

func TestScan_NothingExtracted(t *testing.T) {
	srv := postingServer(t, "nothing here")
	svc := NewScanService(&LLMService{Client: replyWith(`{"company":"","role":" ","location":""}`)}, time.Second)

	_, err := svc.Scan(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNothingExtracted)
	assert.Equal(t, "Could not automatically determine job details.", ScanMessage(err))
}

func TestScan_ModelFailure(t *testing.T) {
	srv := postingServer(t, "posting")
	llm := &fakeLLM{respond: func(string) (string, error) { return "", errors.New("quota exceeded") }}
	svc := NewScanService(&LLMService{Client: llm}, time.Second)

	_, err := svc.Scan(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Equal(t, 1, llm.calls())
	assert.Equal(t, "An error occurred while scanning the job description.", ScanMessage(err))

	_, err = NewScanService(&LLMService{Client: replyWith("I cannot help with that")}, time.Second).Scan(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestScanLocation(t *testing.T) {
	srv := postingServer(t, "Work from anywhere")
	llm := replyWith(`{"location":"Remote"}`)
	svc := NewScanService(&LLMService{Client: llm}, time.Second)

	res, err := svc.ScanLocation(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Remote", res.Location)
	assert.Equal(t, []string{"location"}, res.Filled)
	assert.True(t, strings.Contains(llm.prompts[0], "location"))

	_, err = NewScanService(&LLMService{Client: replyWith(`{"location":""}`)}, time.Second).ScanLocation(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNothingExtracted)
}
