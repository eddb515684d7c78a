package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
)

const (
	// maxPageBytes bounds how much of a posting is downloaded.
	maxPageBytes = 1 << 20
	maxRedirects = 5
)

var (
	ErrInvalidScanURL        = errors.New("invalid job posting URL")
	ErrNothingExtracted      = errors.New("no job details found")
	ErrExtractionFailed      = errors.New("job scan failed")
	ErrExtractionUnavailable = errors.New("job scanning is not configured")

	errNonPublicAddress = errors.New("refusing to fetch a non-public address")
)

// ScanMessage is the notification text shown for a failed scan.
func ScanMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidScanURL):
		return "Please provide a valid URL."
	case errors.Is(err, ErrNothingExtracted):
		return "Could not automatically determine job details."
	case errors.Is(err, ErrExtractionUnavailable):
		return "Job scanning is not available right now."
	}
	return "An error occurred while scanning the job description."
}

// ScanResult carries the fields the model found and names them in Filled so
// the caller can confirm exactly what was applied.
type ScanResult struct {
	Company  string
	Role     string
	Location string
	Filled   []string
}

type ScanService struct {
	LLM  *LLMService
	HTTP *http.Client
}

func NewScanService(llm *LLMService, fetchTimeout time.Duration) *ScanService {
	return &ScanService{
		LLM:  llm,
		HTTP: newPublicClient(fetchTimeout),
	}
}

// newPublicClient only dials public unicast addresses. The check runs on the
// resolved IP of every connection, redirects included, and no proxy is used
// so the dialed address is the posting's own.
func newPublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: timeout,
		Control: func(network, address string, _ syscall.RawConn) error {
			return checkPublicAddress(address)
		},
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: timeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
			}
			if ip, err := netip.ParseAddr(req.URL.Hostname()); err == nil && !isPublicAddr(ip) {
				return fmt.Errorf("%w: redirect to %s", errNonPublicAddress, ip)
			}
			return nil
		},
	}
}

func checkPublicAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublicAddr(ip) {
		return fmt.Errorf("%w: %s", errNonPublicAddress, ip)
	}
	return nil
}

func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast()
}

// Scan proposes company, role and location for a posting. One attempt is
// made; a partial answer is still a success.
func (s *ScanService) Scan(ctx context.Context, rawURL string) (ScanResult, error) {
	if err := s.check(rawURL); err != nil {
		return ScanResult{}, err
	}
	rawURL = strings.TrimSpace(rawURL)

	details, err := s.LLM.ExtractJobDetails(ctx, rawURL, s.fetch(ctx, rawURL))
	if err != nil {
		log.Printf("[Scan] ❌ extraction failed for %s: %v", rawURL, err)
		return ScanResult{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	res := ScanResult{Company: details.Company, Role: details.Role, Location: details.Location}
	if res.Company != "" {
		res.Filled = append(res.Filled, "company")
	}
	if res.Role != "" {
		res.Filled = append(res.Filled, "role")
	}
	if res.Location != "" {
		res.Filled = append(res.Filled, "location")
	}
	if len(res.Filled) == 0 {
		return ScanResult{}, ErrNothingExtracted
	}
	log.Printf("[Scan] ✅ %s -> filled %v", rawURL, res.Filled)
	return res, nil
}

// ScanLocation only asks for the location.
func (s *ScanService) ScanLocation(ctx context.Context, rawURL string) (ScanResult, error) {
	if err := s.check(rawURL); err != nil {
		return ScanResult{}, err
	}
	rawURL = strings.TrimSpace(rawURL)

	loc, err := s.LLM.ExtractLocation(ctx, rawURL, s.fetch(ctx, rawURL))
	if err != nil {
		log.Printf("[Scan] ❌ location extraction failed for %s: %v", rawURL, err)
		return ScanResult{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if loc == "" {
		return ScanResult{}, ErrNothingExtracted
	}
	return ScanResult{Location: loc, Filled: []string{"location"}}, nil
}

func (s *ScanService) check(rawURL string) error {
	if s == nil || s.LLM == nil {
		return ErrExtractionUnavailable
	}
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http") || !lifecycle.IsWebURL(rawURL) {
		return ErrInvalidScanURL
	}
	return nil
}

// fetch downloads the posting so the model sees its text. Failures are not
// fatal; the prompt falls back to the bare URL.
func (s *ScanService) fetch(ctx context.Context, rawURL string) string {
	if s.HTTP == nil {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "text/html,text/plain")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		log.Printf("[Scan] ⚠️ could not fetch %s: %v", rawURL, err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("[Scan] ⚠️ %s answered HTTP %d", rawURL, resp.StatusCode)
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ""
	}
	return string(b)
}
