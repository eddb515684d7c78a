package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"gorm.io/gorm"
)

type Account struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`
	AvatarURL    string `json:"avatar_url"`
}

type JobApplication struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Every query filters on OwnerID; it never changes after create.
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	Company           string    `gorm:"not null" json:"company"`
	Role              string    `gorm:"not null" json:"role"`
	Location          string    `gorm:"not null" json:"location"`
	JobDescriptionURL string    `json:"job_description_url"`
	DateApplied       time.Time `gorm:"not null" json:"date_applied"`
	Status            string    `gorm:"not null;default:'Applied'" json:"status"`
	Archived          bool      `gorm:"not null;default:false" json:"archived"`
	Notes             string    `gorm:"type:text" json:"notes"`
	NotionPageID      string    `json:"notion_page_id,omitempty"`
}

// BeforeCreate assigns the opaque id.
func (j *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// ToDomain converts the stored row. Unknown status strings are passed
// through; the classifier files them under Active.
func (j JobApplication) ToDomain() lifecycle.Application {
	return lifecycle.Application{
		ID:                j.ID,
		OwnerID:           j.OwnerID,
		Company:           j.Company,
		Role:              j.Role,
		Location:          j.Location,
		JobDescriptionURL: j.JobDescriptionURL,
		DateApplied:       lifecycle.CalendarDate(j.DateApplied.UTC()),
		Status:            lifecycle.ApplicationStatus(j.Status),
		Archived:          j.Archived,
		Notes:             j.Notes,
	}
}

// FromDomain copies the lifecycle fields of a onto j.
func (j *JobApplication) FromDomain(a lifecycle.Application) {
	j.ID = a.ID
	j.OwnerID = a.OwnerID
	j.Company = a.Company
	j.Role = a.Role
	j.Location = a.Location
	j.JobDescriptionURL = a.JobDescriptionURL
	j.DateApplied = lifecycle.CalendarDate(a.DateApplied)
	j.Status = string(a.Status)
	j.Archived = a.Archived
	j.Notes = a.Notes
}

const (
	EventCreated      = "CREATED"
	EventEdited       = "EDITED"
	EventStatusChange = "STATUS_CHANGE"
	EventArchived     = "ARCHIVED"
	EventEmailUpdate  = "EMAIL_UPDATE"
	EventNotionExport = "NOTION_EXPORT"
)

type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID string    `gorm:"index;size:36" json:"application_id"`
	EventType     string    `json:"event_type"`
	Details       string    `gorm:"type:text" json:"details"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// InboxState is the Gmail history bookmark for one account.
type InboxState struct {
	AccountID     uint `gorm:"primaryKey"`
	UpdatedAt     time.Time
	LastHistoryID uint64
}

// All lists the models for AutoMigrate.
func All() []any {
	return []any{&Account{}, &JobApplication{}, &ApplicationEvent{}, &ProcessedEmail{}, &InboxState{}}
}
