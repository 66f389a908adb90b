package repository

import (
	"errors"
	"fmt"

	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating the role profile fails inside the signup transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithProfile creates a user and their role profile atomically.
// Exactly one of volunteer/org must be non-nil, matching the user's role.
func (r *GormUserRepository) CreateWithProfile(user *models.User, volunteer *models.Volunteer, org *models.Organization) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		switch user.Role {
		case models.RoleVolunteer:
			volunteer.UserID = user.ID
			if err := tx.Create(volunteer).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateProfile, err)
			}
		case models.RoleOrganization:
			org.UserID = user.ID
			if err := tx.Create(org).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateProfile, err)
			}
		}

		return nil
	})
}

// FindByID finds a user by ID with their role profile preloaded
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Volunteer").Preload("Organization").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
