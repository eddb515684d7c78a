package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/config"
	"github.com/justsurfingit/job-application-tracker/internal/database"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.Database{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	return db
}

// fakeLLM answers prompts with respond and remembers what it was asked.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt strings.Builder
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt.String())
	f.mu.Unlock()

	out, err := f.respond(prompt.String())
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: out}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func replyWith(s string) *fakeLLM {
	return &fakeLLM{respond: func(string) (string, error) { return s, nil }}
}

type recordingNotifier struct {
	mu     sync.Mutex
	owners []uint
}

func (n *recordingNotifier) Publish(owner uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owners = append(n.owners, owner)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.owners)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func draft(company, role string) lifecycle.Draft {
	return lifecycle.Draft{
		Company:     company,
		Role:        role,
		Location:    "Berlin",
		DateApplied: day(2024, time.March, 1),
	}
}
