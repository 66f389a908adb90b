package repository

import (
	"github.com/volunhub/volunteer-api/internal/database"
	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
)

// GormOpportunityRepository is a GORM implementation of OpportunityRepository
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// Create creates a new opportunity
func (r *GormOpportunityRepository) Create(opp *models.Opportunity) error {
	return r.db.Create(opp).Error
}

// FindByID finds an opportunity by ID with optional preloading
func (r *GormOpportunityRepository) FindByID(id uint64, preload ...string) (*models.Opportunity, error) {
	var opp models.Opportunity
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&opp, id).Error; err != nil {
		return nil, err
	}

	return &opp, nil
}

// FindOwned finds an opportunity scoped to its owning organization
func (r *GormOpportunityRepository) FindOwned(id, organizationID uint64, preload ...string) (*models.Opportunity, error) {
	var opp models.Opportunity
	query := r.db.Where("organization_id = ?", organizationID)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&opp, id).Error; err != nil {
		return nil, err
	}

	return &opp, nil
}

// FindOwnedForUpdate finds an owned opportunity under a row lock
func (r *GormOpportunityRepository) FindOwnedForUpdate(id, organizationID uint64) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := forUpdate(r.db).
		Where("organization_id = ?", organizationID).
		First(&opp, id).Error; err != nil {
		return nil, err
	}
	return &opp, nil
}

// Update persists changes to an opportunity
func (r *GormOpportunityRepository) Update(opp *models.Opportunity) error {
	return r.db.Save(opp).Error
}

// List retrieves opportunities with filtering and pagination
func (r *GormOpportunityRepository) List(filter OpportunityFilter) ([]models.Opportunity, int64, error) {
	var opps []models.Opportunity

	query := r.db.Model(&models.Opportunity{})

	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.State != "" {
		query = query.Where("LOWER(state) = LOWER(?)", filter.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("opportunities.created_at DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Preload("Organization").Find(&opps).Error; err != nil {
		return nil, 0, err
	}

	return opps, total, nil
}

// ListForSweep returns an organization's opportunities in a sweepable status
func (r *GormOpportunityRepository) ListForSweep(organizationID uint64) ([]models.Opportunity, error) {
	var opps []models.Opportunity
	err := r.db.
		Where("organization_id = ?", organizationID).
		Where("status IN ?", []models.OpportunityStatus{
			models.StatusOpen, models.StatusClosed, models.StatusOngoing,
		}).
		Where("start_date IS NOT NULL").
		Preload("Organization").
		Find(&opps).Error
	if err != nil {
		return nil, err
	}
	return opps, nil
}

// HardDelete physically removes the opportunity and every dependent row
func (r *GormOpportunityRepository) HardDelete(opp *models.Opportunity) ([]string, error) {
	var imagePaths []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OpportunityImage{}).
			Where("opportunity_id = ?", opp.ID).
			Pluck("file_path", &imagePaths).Error; err != nil {
			return err
		}

		if err := tx.Where("opportunity_id = ?", opp.ID).
			Delete(&models.OpportunityImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("opportunity_id = ?", opp.ID).
			Delete(&models.OpportunityContact{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM opportunity_skills WHERE opportunity_id = ?", opp.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM opportunity_interests WHERE opportunity_id = ?", opp.ID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("opportunity_id = ?", opp.ID).
			Delete(&models.Application{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Opportunity{}, opp.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return imagePaths, nil
}

// SoftDelete marks the opportunity deleted without removing rows
func (r *GormOpportunityRepository) SoftDelete(opp *models.Opportunity) error {
	opp.Status = models.StatusDeleted
	if err := r.db.Save(opp).Error; err != nil {
		return err
	}
	return r.db.Delete(opp).Error
}
