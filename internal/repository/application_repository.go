package repository

import (
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApplicationRepository is a GORM implementation of ApplicationRepository
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Upsert inserts an application or rewrites the existing row for the pair
func (r *GormApplicationRepository) Upsert(app *models.Application) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "volunteer_id"}, {Name: "opportunity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "message", "applied_at", "response_at", "updated_at",
			}),
		}).
		Create(app).Error
}

// FindByID finds an application by ID with optional preloading
func (r *GormApplicationRepository) FindByID(id uint64, preload ...string) (*models.Application, error) {
	var app models.Application
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&app, id).Error; err != nil {
		return nil, err
	}

	return &app, nil
}

// FindOwned finds an application whose opportunity belongs to the organization
func (r *GormApplicationRepository) FindOwned(id, organizationID uint64) (*models.Application, error) {
	var app models.Application
	err := r.db.
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("applications.id = ? AND opportunities.organization_id = ?", id, organizationID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByVolunteerAndOpportunity finds the application for the pair
func (r *GormApplicationRepository) FindByVolunteerAndOpportunity(volunteerID, opportunityID uint64) (*models.Application, error) {
	var app models.Application
	err := r.db.
		Where("volunteer_id = ? AND opportunity_id = ?", volunteerID, opportunityID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByOpportunity lists applications on an opportunity
func (r *GormApplicationRepository) ListByOpportunity(opportunityID uint64, statuses ...models.ApplicationStatus) ([]models.Application, error) {
	var apps []models.Application
	query := r.db.Where("opportunity_id = ?", opportunityID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Preload("Volunteer").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// ListByVolunteer lists a volunteer's applications
func (r *GormApplicationRepository) ListByVolunteer(volunteerID uint64) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.
		Where("volunteer_id = ?", volunteerID).
		Preload("Opportunity").
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListOwnedByIDs returns the subset of the given applications whose
// opportunity belongs to the organization
func (r *GormApplicationRepository) ListOwnedByIDs(ids []uint64, organizationID uint64) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("applications.id IN ? AND opportunities.organization_id = ?", ids, organizationID).
		Preload("Volunteer").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// CountByStatus counts an opportunity's applications in a status
func (r *GormApplicationRepository) CountByStatus(opportunityID uint64, status models.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("opportunity_id = ? AND status = ?", opportunityID, status).
		Count(&count).Error
	return count, err
}

// Update persists changes to an application
func (r *GormApplicationRepository) Update(app *models.Application) error {
	return r.db.Save(app).Error
}

// BulkUpdateStatus sets the status and response time on the given rows
func (r *GormApplicationRepository) BulkUpdateStatus(ids []uint64, status models.ApplicationStatus, responseAt time.Time) (int64, error) {
	result := r.db.Model(&models.Application{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":      status,
			"response_at": responseAt,
		})
	return result.RowsAffected, result.Error
}
