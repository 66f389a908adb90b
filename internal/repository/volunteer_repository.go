package repository

import (
	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
)

// GormVolunteerRepository is a GORM implementation of VolunteerRepository
type GormVolunteerRepository struct {
	db *gorm.DB
}

// NewVolunteerRepository creates a new VolunteerRepository
func NewVolunteerRepository(db *gorm.DB) VolunteerRepository {
	return &GormVolunteerRepository{db: db}
}

// FindByID finds a volunteer by ID with optional preloading
func (r *GormVolunteerRepository) FindByID(id uint64, preload ...string) (*models.Volunteer, error) {
	var v models.Volunteer
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&v, id).Error; err != nil {
		return nil, err
	}

	return &v, nil
}

// FindByUserID finds the volunteer profile belonging to a user
func (r *GormVolunteerRepository) FindByUserID(userID uint64) (*models.Volunteer, error) {
	var v models.Volunteer
	if err := r.db.Where("user_id = ?", userID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// Update persists profile changes
func (r *GormVolunteerRepository) Update(v *models.Volunteer) error {
	return r.db.Save(v).Error
}

// ReplaceSkills replaces the volunteer's skill associations
func (r *GormVolunteerRepository) ReplaceSkills(v *models.Volunteer, skills []models.Skill) error {
	return r.db.Model(v).Association("Skills").Replace(skills)
}

// ReplaceInterests replaces the volunteer's interest associations
func (r *GormVolunteerRepository) ReplaceInterests(v *models.Volunteer, interests []models.Interest) error {
	return r.db.Model(v).Association("Interests").Replace(interests)
}
