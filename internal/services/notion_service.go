package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	gnt "github.com/dstotijn/go-notion"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
)

var ErrNotionDisabled = errors.New("notion export is not configured")

// notionAPI is the part of the go-notion client the exporter uses.
type notionAPI interface {
	QueryDatabase(ctx context.Context, id string, query *gnt.DatabaseQuery) (gnt.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, params gnt.CreatePageParams) (gnt.Page, error)
}

// NotionService mirrors applications into a Notion database, one page each.
type NotionService struct {
	api          notionAPI
	databaseID   string
	Applications *ApplicationService
}

// NewNotionService returns nil when token or database id is missing, which
// callers treat as export being switched off.
func NewNotionService(token, databaseID string, apps *ApplicationService) *NotionService {
	if token == "" || databaseID == "" {
		return nil
	}
	return &NotionService{
		api:          gnt.NewClient(token),
		databaseID:   strings.ReplaceAll(databaseID, "-", ""),
		Applications: apps,
	}
}

// Ping runs a one-row query to check the database is reachable.
func (s *NotionService) Ping(ctx context.Context) error {
	if s == nil {
		return ErrNotionDisabled
	}
	_, err := s.api.QueryDatabase(ctx, s.databaseID, &gnt.DatabaseQuery{PageSize: 1})
	return err
}

// ExportApplication creates the Notion page for an application and records
// its id. Exporting again returns the page created the first time.
func (s *NotionService) ExportApplication(ctx context.Context, owner uint, id string) (string, error) {
	if s == nil {
		return "", ErrNotionDisabled
	}
	row, err := s.Applications.find(s.Applications.DB.WithContext(ctx), owner, id)
	if err != nil {
		return "", err
	}
	if row.NotionPageID != "" {
		return row.NotionPageID, nil
	}

	props := buildPageProperties(row.ToDomain())
	page, err := s.api.CreatePage(ctx, gnt.CreatePageParams{
		ParentType:             gnt.ParentTypeDatabase,
		ParentID:               s.databaseID,
		DatabasePageProperties: &props,
	})
	if err != nil {
		return "", fmt.Errorf("create notion page: %w", err)
	}

	if err := s.Applications.setNotionPage(ctx, owner, id, page.ID); err != nil {
		return "", err
	}
	log.Printf("📝 Exported %s @ %s to Notion page %s", row.Role, row.Company, page.ID)
	return page.ID, nil
}

func richText(s string) []gnt.RichText {
	if s == "" {
		return nil
	}
	return []gnt.RichText{{Text: &gnt.Text{Content: s}}}
}

func buildPageProperties(a lifecycle.Application) gnt.DatabasePageProperties {
	props := gnt.DatabasePageProperties{
		"Position": gnt.DatabasePageProperty{Title: richText(a.Role)},
		"Company":  gnt.DatabasePageProperty{RichText: richText(a.Company)},
		"Stage":    gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: string(a.Status)}},
		"Applied": gnt.DatabasePageProperty{
			Date: &gnt.Date{Start: gnt.NewDateTime(a.DateApplied, false)},
		},
	}
	if a.Location != "" {
		props["Location"] = gnt.DatabasePageProperty{RichText: richText(a.Location)}
	}
	if a.JobDescriptionURL != "" {
		u := a.JobDescriptionURL
		props["Job Posting"] = gnt.DatabasePageProperty{URL: &u}
	}
	if a.Notes != "" {
		props["Notes"] = gnt.DatabasePageProperty{RichText: richText(a.Notes)}
	}
	if a.Closed() {
		props["Outcome"] = gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: string(lifecycle.BucketArchived)}}
	}
	return props
}
