package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
)

// minCompanyName skips names so short they match almost any email ("X", "Go").
const minCompanyName = 3

type MatcherService struct {
	Applications *ApplicationService
}

func NewMatcherService(apps *ApplicationService) *MatcherService {
	return &MatcherService{Applications: apps}
}

// FindApplications returns the open applications whose company an email
// appears to come from, checked by subject, sender display name and sender
// domain. The company name is empty when nothing matched.
func (s *MatcherService) FindApplications(ctx context.Context, owner uint, subject, rawSender string) (string, []lifecycle.Application, error) {
	apps, err := s.Applications.List(ctx, owner)
	if err != nil {
		return "", nil, err
	}

	// "Stripe Recruiting <jobs@stripe.com>" -> name="stripe recruiting", addr="jobs@stripe.com"
	senderName, senderAddr := "", strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(parsed.Name)
		senderAddr = strings.ToLower(parsed.Address)
	}
	domain := ""
	if parts := strings.Split(senderAddr, "@"); len(parts) == 2 {
		domain = parts[1]
	}
	subjectLower := strings.ToLower(subject)

	company := ""
	var matched []lifecycle.Application
	for _, a := range apps {
		if a.Closed() {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(a.Company))
		if len(name) < minCompanyName {
			continue
		}
		if company != "" && name != strings.ToLower(company) {
			continue
		}
		if strings.Contains(subjectLower, name) ||
			(senderName != "" && strings.Contains(senderName, name)) ||
			(domain != "" && strings.Contains(domain, compact(name))) {
			company = a.Company
			matched = append(matched, a)
		}
	}
	return company, matched, nil
}

// compact drops spaces so "Acme Corp" can match "acmecorp.com".
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
