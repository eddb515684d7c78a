package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"gorm.io/gorm"
)

var ErrApplicationNotFound = errors.New("application not found")

// Notifier is told which account's applications just changed.
type Notifier interface {
	Publish(owner uint)
}

type ApplicationService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewApplicationService(db *gorm.DB, n Notifier) *ApplicationService {
	return &ApplicationService{DB: db, Notifier: n}
}

// Create stores a new application for owner. Drafts that fail validation
// never reach the database.
func (s *ApplicationService) Create(ctx context.Context, owner uint, d lifecycle.Draft) (lifecycle.Application, error) {
	app, err := lifecycle.New(uuid.NewString(), owner, d)
	if err != nil {
		return lifecycle.Application{}, err
	}

	var row models.JobApplication
	row.FromDomain(app)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: row.ID,
			EventType:     models.EventCreated,
			Details:       fmt.Sprintf("%s at %s", row.Role, row.Company),
		}).Error
	})
	if err != nil {
		return lifecycle.Application{}, fmt.Errorf("create application: %w", err)
	}
	s.notify(owner)
	return row.ToDomain(), nil
}

// List returns every application owned by owner, oldest first.
func (s *ApplicationService) List(ctx context.Context, owner uint) ([]lifecycle.Application, error) {
	var rows []models.JobApplication
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps := make([]lifecycle.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.ToDomain())
	}
	return apps, nil
}

// Get returns one application. Ids owned by someone else are not found.
func (s *ApplicationService) Get(ctx context.Context, owner uint, id string) (lifecycle.Application, error) {
	row, err := s.find(s.DB.WithContext(ctx), owner, id)
	if err != nil {
		return lifecycle.Application{}, err
	}
	return row.ToDomain(), nil
}

// Update replaces the editable fields of an application.
func (s *ApplicationService) Update(ctx context.Context, owner uint, id string, d lifecycle.Draft) (lifecycle.Application, error) {
	if err := d.Validate(); err != nil {
		return lifecycle.Application{}, err
	}
	return s.mutate(ctx, owner, id, func(a lifecycle.Application) (lifecycle.Application, *models.ApplicationEvent, error) {
		edited, err := lifecycle.Edit(a, d)
		if err != nil {
			return a, nil, err
		}
		return edited, &models.ApplicationEvent{EventType: models.EventEdited, Details: "Fields edited"}, nil
	})
}

// UpdateStatus moves an application to status, which must be one of the
// closed set.
func (s *ApplicationService) UpdateStatus(ctx context.Context, owner uint, id string, status string) (lifecycle.Application, error) {
	st, err := lifecycle.ParseStatus(status)
	if err != nil {
		return lifecycle.Application{}, err
	}
	return s.mutate(ctx, owner, id, func(a lifecycle.Application) (lifecycle.Application, *models.ApplicationEvent, error) {
		next, err := lifecycle.Transition(a, st)
		if err != nil {
			return a, nil, err
		}
		return next, &models.ApplicationEvent{
			EventType: models.EventStatusChange,
			Details:   fmt.Sprintf("Status changed from %s to %s", a.Status, st),
		}, nil
	})
}

// Archive closes an application. Repeating it overwrites the notes.
func (s *ApplicationService) Archive(ctx context.Context, owner uint, id string, notes string) (lifecycle.Application, error) {
	return s.mutate(ctx, owner, id, func(a lifecycle.Application) (lifecycle.Application, *models.ApplicationEvent, error) {
		next := lifecycle.Archive(a, notes)
		return next, &models.ApplicationEvent{EventType: models.EventArchived, Details: next.Notes}, nil
	})
}

// Board classifies owner's applications and orders each bucket.
func (s *ApplicationService) Board(ctx context.Context, owner uint, key lifecycle.SortKey, dir lifecycle.Direction) (lifecycle.Buckets, error) {
	apps, err := s.List(ctx, owner)
	if err != nil {
		return lifecycle.Buckets{}, err
	}
	return lifecycle.Classify(apps).Sorted(key, dir), nil
}

// Stats computes the dashboard for owner.
func (s *ApplicationService) Stats(ctx context.Context, owner uint) (lifecycle.Stats, error) {
	apps, err := s.List(ctx, owner)
	if err != nil {
		return lifecycle.Stats{}, err
	}
	return lifecycle.Summarize(apps), nil
}

// Events returns the audit trail of one application, oldest first.
func (s *ApplicationService) Events(ctx context.Context, owner uint, id string) ([]models.ApplicationEvent, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.find(db, owner, id); err != nil {
		return nil, err
	}
	var events []models.ApplicationEvent
	if err := db.Where("application_id = ?", id).Order("id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

type mutation func(lifecycle.Application) (lifecycle.Application, *models.ApplicationEvent, error)

func (s *ApplicationService) mutate(ctx context.Context, owner uint, id string, fn mutation) (lifecycle.Application, error) {
	var out lifecycle.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.find(tx, owner, id)
		if err != nil {
			return err
		}
		next, event, err := fn(row.ToDomain())
		if err != nil {
			return err
		}
		row.FromDomain(next)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		if event != nil {
			event.ApplicationID = row.ID
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		out = row.ToDomain()
		return nil
	})
	if err != nil {
		return lifecycle.Application{}, err
	}
	s.notify(owner)
	return out, nil
}

func (s *ApplicationService) find(db *gorm.DB, owner uint, id string) (models.JobApplication, error) {
	var row models.JobApplication
	err := db.Where("id = ? AND owner_id = ?", id, owner).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrApplicationNotFound
	}
	if err != nil {
		return row, fmt.Errorf("load application: %w", err)
	}
	return row, nil
}

// setNotionPage records the page an application was exported to.
func (s *ApplicationService) setNotionPage(ctx context.Context, owner uint, id, pageID string) error {
	res := s.DB.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id = ? AND owner_id = ?", id, owner).
		Updates(map[string]interface{}{"notion_page_id": pageID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return s.DB.WithContext(ctx).Create(&models.ApplicationEvent{
		ApplicationID: id,
		EventType:     models.EventNotionExport,
		Details:       "Exported to Notion page " + pageID,
	}).Error
}

func (s *ApplicationService) notify(owner uint) {
	if s.Notifier != nil {
		s.Notifier.Publish(owner)
	}
}
