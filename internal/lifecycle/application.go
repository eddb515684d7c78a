package lifecycle

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// NotesPlaceholder is stored when an application is archived without notes.
const NotesPlaceholder = "N/A"

var validate = newValidator()

// Application is a single job application owned by one account.
type Application struct {
	ID                string
	OwnerID           uint
	Company           string
	Role              string
	Location          string
	JobDescriptionURL string
	DateApplied       time.Time
	Status            ApplicationStatus
	Archived          bool
	Notes             string
}

// Closed reports whether the application belongs in the archive.
func (a Application) Closed() bool {
	return a.Archived || a.Status.IsTerminal()
}

// Draft holds the user-editable fields of an application. Create and edit
// share it so both paths validate the same way.
type Draft struct {
	Company           string    `validate:"required"`
	Role              string    `validate:"required"`
	Location          string    `validate:"required"`
	JobDescriptionURL string    `validate:"omitempty,weburl"`
	DateApplied       time.Time `validate:"required"`
}

// ValidationError lists the offending fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Normalize trims text fields and truncates the date to a calendar day.
func (d Draft) Normalize() Draft {
	d.Company = strings.TrimSpace(d.Company)
	d.Role = strings.TrimSpace(d.Role)
	d.Location = strings.TrimSpace(d.Location)
	d.JobDescriptionURL = strings.TrimSpace(d.JobDescriptionURL)
	if !d.DateApplied.IsZero() {
		d.DateApplied = CalendarDate(d.DateApplied)
	}
	return d
}

// Validate checks the normalized draft.
func (d Draft) Validate() error {
	d = d.Normalize()
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fieldName(fe.Field())] = fieldMessage(fe.Tag())
	}
	return ve
}

// CalendarDate drops the time of day, keeping the date as seen in t's zone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New creates an application from a draft. The status always starts at
// Applied.
func New(id string, owner uint, d Draft) (Application, error) {
	if err := d.Validate(); err != nil {
		return Application{}, err
	}
	d = d.Normalize()
	return Application{
		ID:                id,
		OwnerID:           owner,
		Company:           d.Company,
		Role:              d.Role,
		Location:          d.Location,
		JobDescriptionURL: d.JobDescriptionURL,
		DateApplied:       d.DateApplied,
		Status:            StatusApplied,
	}, nil
}

// Edit replaces the user-editable fields and leaves lifecycle state alone.
func Edit(a Application, d Draft) (Application, error) {
	if err := d.Validate(); err != nil {
		return a, err
	}
	d = d.Normalize()
	a.Company = d.Company
	a.Role = d.Role
	a.Location = d.Location
	a.JobDescriptionURL = d.JobDescriptionURL
	a.DateApplied = d.DateApplied
	return a, nil
}

// Transition moves a to any status of the closed set. Reaching a terminal
// status archives the application; leaving one does not unarchive it.
func Transition(a Application, s ApplicationStatus) (Application, error) {
	if !s.Valid() {
		return a, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	a.Status = s
	if s.IsTerminal() {
		a.Archived = true
		if strings.TrimSpace(a.Notes) == "" {
			a.Notes = NotesPlaceholder
		}
	}
	return a, nil
}

// Archive closes a and records notes. Blank notes become NotesPlaceholder.
func Archive(a Application, notes string) Application {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = NotesPlaceholder
	}
	a.Archived = true
	a.Notes = notes
	return a
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return IsWebURL(fl.Field().String())
	})
	return v
}

// IsWebURL reports whether raw is an absolute http or https URL with a host.
func IsWebURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func fieldName(f string) string {
	switch f {
	case "JobDescriptionURL":
		return "job_description_url"
	case "DateApplied":
		return "date_applied"
	}
	return strings.ToLower(f)
}

func fieldMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "weburl":
		return "must be a valid URL"
	}
	return "is invalid"
}
