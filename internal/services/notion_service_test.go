package services

import (
	"context"
	"errors"
	"testing"
	"time"

	gnt "github.com/dstotijn/go-notion"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotion struct {
	created  []gnt.CreatePageParams
	queryErr error
	pageID   string
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, id string, query *gnt.DatabaseQuery) (gnt.DatabaseQueryResponse, error) {
	return gnt.DatabaseQueryResponse{}, f.queryErr
}

func (f *fakeNotion) CreatePage(ctx context.Context, params gnt.CreatePageParams) (gnt.Page, error) {
	f.created = append(f.created, params)
	return gnt.Page{ID: f.pageID}, nil
}

func TestNewNotionService_Disabled(t *testing.T) {
	assert.Nil(t, NewNotionService("", "db", nil))
	assert.Nil(t, NewNotionService("secret", "", nil))

	var svc *NotionService
	assert.ErrorIs(t, svc.Ping(context.Background()), ErrNotionDisabled)
	_, err := svc.ExportApplication(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrNotionDisabled)

	enabled := NewNotionService("secret", "1a2b-3c4d", nil)
	require.NotNil(t, enabled)
	assert.Equal(t, "1a2b3c4d", enabled.databaseID)
}

func TestNotion_Ping(t *testing.T) {
	fake := &fakeNotion{}
	svc := &NotionService{api: fake, databaseID: "db"}
	assert.NoError(t, svc.Ping(context.Background()))

	fake.queryErr = errors.New("unauthorized")
	assert.Error(t, svc.Ping(context.Background()))
}

func TestNotion_ExportApplication(t *testing.T) {
	apps, _ := newApplicationService(t)
	ctx := context.Background()
	fake := &fakeNotion{pageID: "page-1"}
	svc := &NotionService{api: fake, databaseID: "db", Applications: apps}

	d := draft("Acme", "Backend Engineer")
	d.JobDescriptionURL = "https://acme.example/jobs/1"
	app, err := apps.Create(ctx, 1, d)
	require.NoError(t, err)

	pageID, err := svc.ExportApplication(ctx, 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "page-1", pageID)
	require.Len(t, fake.created, 1)
	assert.Equal(t, gnt.ParentTypeDatabase, fake.created[0].ParentType)
	assert.Equal(t, "db", fake.created[0].ParentID)

	// exporting again reuses the page
	pageID, err = svc.ExportApplication(ctx, 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "page-1", pageID)
	assert.Len(t, fake.created, 1)

	events, err := apps.Events(ctx, 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventNotionExport, events[len(events)-1].EventType)

	_, err = svc.ExportApplication(ctx, 2, app.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestBuildPageProperties(t *testing.T) {
	a := lifecycle.Application{
		Company:     "Acme",
		Role:        "Backend Engineer",
		DateApplied: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Status:      lifecycle.StatusNoOffer,
		Archived:    true,
		Notes:       "N/A",
	}
	props := buildPageProperties(a)

	require.Len(t, props["Position"].Title, 1)
	assert.Equal(t, "Backend Engineer", props["Position"].Title[0].Text.Content)
	assert.Equal(t, "No Offer", props["Stage"].Select.Name)
	assert.Equal(t, "archived", props["Outcome"].Select.Name)
	assert.NotContains(t, props, "Location")
	assert.NotContains(t, props, "Job Posting")
}
