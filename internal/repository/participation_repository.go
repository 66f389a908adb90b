package repository

import (
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormParticipationRepository is a GORM implementation of ParticipationRepository
type GormParticipationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository creates a new ParticipationRepository
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &GormParticipationRepository{db: db}
}

// Create creates a participation row
func (r *GormParticipationRepository) Create(p *models.Participation) error {
	return r.db.Create(p).Error
}

// CreatePendingBulk inserts pending rows for the given volunteers, skipping
// pairs that already have one
func (r *GormParticipationRepository) CreatePendingBulk(opportunityID uint64, volunteerIDs []uint64) error {
	if len(volunteerIDs) == 0 {
		return nil
	}

	rows := make([]models.Participation, len(volunteerIDs))
	for i, volunteerID := range volunteerIDs {
		rows[i] = models.Participation{
			VolunteerID:   volunteerID,
			OpportunityID: opportunityID,
			Status:        models.ParticipationPending,
		}
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "volunteer_id"}, {Name: "opportunity_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// Find finds the participation row for a (volunteer, opportunity) pair
func (r *GormParticipationRepository) Find(opportunityID, volunteerID uint64) (*models.Participation, error) {
	var p models.Participation
	err := r.db.
		Where("opportunity_id = ? AND volunteer_id = ?", opportunityID, volunteerID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOpportunity lists participation rows, optionally by status
func (r *GormParticipationRepository) ListByOpportunity(opportunityID uint64, statuses ...models.ParticipationStatus) ([]models.Participation, error) {
	var rows []models.Participation
	query := r.db.Where("opportunity_id = ?", opportunityID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Preload("Volunteer").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count counts all participation rows for an opportunity
func (r *GormParticipationRepository) Count(opportunityID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("opportunity_id = ?", opportunityID).
		Count(&count).Error
	return count, err
}

// CountByStatus counts an opportunity's participation rows in a status
func (r *GormParticipationRepository) CountByStatus(opportunityID uint64, status models.ParticipationStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("opportunity_id = ? AND status = ?", opportunityID, status).
		Count(&count).Error
	return count, err
}

// CountAttendedByVolunteer counts a volunteer's attended participations
func (r *GormParticipationRepository) CountAttendedByVolunteer(volunteerID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("volunteer_id = ? AND status = ?", volunteerID, models.ParticipationAttended).
		Count(&count).Error
	return count, err
}

// Update persists changes to a participation row
func (r *GormParticipationRepository) Update(p *models.Participation) error {
	return r.db.Save(p).Error
}

// MarkPendingAttended flips every pending row on the opportunity to attended
func (r *GormParticipationRepository) MarkPendingAttended(opportunityID uint64, hours float64, now time.Time) (int64, error) {
	result := r.db.Model(&models.Participation{}).
		Where("opportunity_id = ? AND status = ?", opportunityID, models.ParticipationPending).
		Updates(map[string]interface{}{
			"status":          models.ParticipationAttended,
			"hours_worked":    hours,
			"participated_at": now,
		})
	return result.RowsAffected, result.Error
}
