package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// maxPromptContent caps how much page or email text goes into one prompt.
const maxPromptContent = 20000

const (
	VerdictNoChange = "NO_CHANGE"
	VerdictUnknown  = "UNKNOWN"
)

var ErrEmptyCompletion = errors.New("model returned no JSON object")

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini with the given key and model.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

// JobDetails is what the model could read off a posting. Empty means unknown.
type JobDetails struct {
	Company  string `json:"company"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

const jobDetailsPrompt = `You are an assistant that extracts job details from a job posting.

Analyze the job posting below and extract:
- company: the company name
- role: the role or job title
- location: where the job is based. If the job is remote, use exactly "Remote".

If you cannot determine a value, use an empty string. Do not guess.
Reply with a single JSON object with the keys "company", "role" and "location" and nothing else.

Job posting URL: %s

### PAGE CONTENT:
%s
`

const locationPrompt = `You are an assistant that extracts the location from a job posting.

Analyze the job posting below and extract where the job is based.
If the job is remote, use exactly "Remote". If you cannot determine it, use an empty string.
Reply with a single JSON object with the key "location" and nothing else.

Job posting URL: %s

### PAGE CONTENT:
%s
`

// ExtractJobDetails asks the model for company, role and location. pageText
// may be empty, in which case the model only sees the URL.
func (s *LLMService) ExtractJobDetails(ctx context.Context, pageURL, pageText string) (JobDetails, error) {
	var out JobDetails
	prompt := fmt.Sprintf(jobDetailsPrompt, pageURL, contentOrNone(pageText))
	if err := s.generateJSON(ctx, prompt, &out); err != nil {
		return JobDetails{}, err
	}
	out.Company = strings.TrimSpace(out.Company)
	out.Role = strings.TrimSpace(out.Role)
	out.Location = strings.TrimSpace(out.Location)
	return out, nil
}

// ExtractLocation is the location-only variant of ExtractJobDetails.
func (s *LLMService) ExtractLocation(ctx context.Context, pageURL, pageText string) (string, error) {
	var out struct {
		Location string `json:"location"`
	}
	prompt := fmt.Sprintf(locationPrompt, pageURL, contentOrNone(pageText))
	if err := s.generateJSON(ctx, prompt, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Location), nil
}

// EmailVerdict is the model's reading of a recruiter email.
type EmailVerdict struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

const emailStatusPrompt = `You track job applications. An email arrived about an application to %s.

Decide which stage the application is now in. Answer with one of these exact values:
%s
or "NO_CHANGE" if the email does not move the application, or "UNKNOWN" if you cannot tell.

Reply with a single JSON object: {"status": "...", "summary": "one sentence"}.

Subject: %s

### EMAIL BODY:
%s
`

// ClassifyEmail maps an email to a pipeline stage. Statuses outside the
// closed set are reported as VerdictUnknown.
func (s *LLMService) ClassifyEmail(ctx context.Context, company, subject, body string) (EmailVerdict, error) {
	names := make([]string, 0, 10)
	for _, st := range lifecycle.Statuses() {
		names = append(names, strconv.Quote(string(st)))
	}
	prompt := fmt.Sprintf(emailStatusPrompt, company, strings.Join(names, ", "), subject, truncate(body))

	var v EmailVerdict
	if err := s.generateJSON(ctx, prompt, &v); err != nil {
		return EmailVerdict{}, err
	}
	v.Status = strings.TrimSpace(v.Status)
	if v.Status != VerdictNoChange {
		if _, err := lifecycle.ParseStatus(v.Status); err != nil {
			v.Status = VerdictUnknown
		}
	}
	return v, nil
}

const identifyPrompt = `An email arrived about one of these job applications:
%s
Subject: %s

### EMAIL BODY:
%s

Reply with a single JSON object {"index": N} where N is the number of the matching application, or -1 if none matches.
`

// IdentifyApplication picks which of roles an email is about, or -1.
func (s *LLMService) IdentifyApplication(ctx context.Context, roles []string, subject, body string) int {
	var list strings.Builder
	for i, r := range roles {
		fmt.Fprintf(&list, "%d. %s\n", i, r)
	}
	var out struct {
		Index int `json:"index"`
	}
	if err := s.generateJSON(ctx, fmt.Sprintf(identifyPrompt, list.String(), subject, truncate(body)), &out); err != nil {
		return -1
	}
	if out.Index < 0 || out.Index >= len(roles) {
		return -1
	}
	return out.Index
}

func (s *LLMService) generateJSON(ctx context.Context, prompt string, v any) error {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithJSONMode(), llms.WithTemperature(0))
	if err != nil {
		return err
	}
	return decodeCompletion(resp, v)
}

// decodeCompletion parses the first JSON object in a completion, tolerating
// markdown fences and chatter around it.
func decodeCompletion(resp string, v any) error {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start < 0 || end < start {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(resp[start:end+1]), v); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

func truncate(s string) string {
	if len(s) > maxPromptContent {
		return s[:maxPromptContent]
	}
	return s
}

func contentOrNone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(page could not be fetched; use the URL only)"
	}
	return truncate(s)
}
