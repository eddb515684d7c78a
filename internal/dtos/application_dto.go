package dtos

import (
	"strings"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/models"
)

// DateLayout is the wire format of date_applied.
const DateLayout = "2006-01-02"

// ApplicationRequest is the body of both create and edit.
type ApplicationRequest struct {
	Company           string `json:"company"`
	Role              string `json:"role"`
	Location          string `json:"location"`
	JobDescriptionURL string `json:"job_description_url"`
	DateApplied       string `json:"date_applied"` // YYYY-MM-DD
}

// Draft converts the request. A date that is not YYYY-MM-DD is reported as
// a field error.
func (r ApplicationRequest) Draft() (lifecycle.Draft, error) {
	d := lifecycle.Draft{
		Company:           r.Company,
		Role:              r.Role,
		Location:          r.Location,
		JobDescriptionURL: r.JobDescriptionURL,
	}
	if s := strings.TrimSpace(r.DateApplied); s != "" {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return d, &lifecycle.ValidationError{Fields: map[string]string{"date_applied": "must be a YYYY-MM-DD date"}}
		}
		d.DateApplied = t
	}
	return d, nil
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ArchiveRequest struct {
	Notes string `json:"notes"`
}

type ScanRequest struct {
	URL string `json:"url" binding:"required"`
}

type ScanResponse struct {
	Company  string   `json:"company,omitempty"`
	Role     string   `json:"role,omitempty"`
	Location string   `json:"location,omitempty"`
	Filled   []string `json:"filled"`
}

type ApplicationResponse struct {
	ID                string `json:"id"`
	Company           string `json:"company"`
	Role              string `json:"role"`
	Location          string `json:"location"`
	JobDescriptionURL string `json:"job_description_url,omitempty"`
	DateApplied       string `json:"date_applied"`
	Status            string `json:"status"`
	Archived          bool   `json:"archived"`
	Notes             string `json:"notes,omitempty"`
	Bucket            string `json:"bucket"`
}

func NewApplicationResponse(a lifecycle.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                a.ID,
		Company:           a.Company,
		Role:              a.Role,
		Location:          a.Location,
		JobDescriptionURL: a.JobDescriptionURL,
		DateApplied:       a.DateApplied.Format(DateLayout),
		Status:            string(a.Status),
		Archived:          a.Archived,
		Notes:             a.Notes,
		Bucket:            string(lifecycle.BucketOf(a)),
	}
}

func NewApplicationList(apps []lifecycle.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, NewApplicationResponse(a))
	}
	return out
}

// BoardResponse is the three-tab view of an account's applications.
type BoardResponse struct {
	Applied  []ApplicationResponse `json:"applied"`
	Active   []ApplicationResponse `json:"active"`
	Archived []ApplicationResponse `json:"archived"`
	Sort     string                `json:"sort"`
	Dir      string                `json:"dir"`
}

func NewBoardResponse(b lifecycle.Buckets, key lifecycle.SortKey, dir lifecycle.Direction) BoardResponse {
	sortName := string(key)
	if key == lifecycle.SortNone {
		sortName = "none"
	}
	return BoardResponse{
		Applied:  NewApplicationList(b.Applied),
		Active:   NewApplicationList(b.Active),
		Archived: NewApplicationList(b.Archived),
		Sort:     sortName,
		Dir:      string(dir),
	}
}

type EventResponse struct {
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEventList(events []models.ApplicationEvent) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{Type: e.EventType, Details: e.Details, CreatedAt: e.CreatedAt})
	}
	return out
}
