package models

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// Application links one volunteer to one opportunity. One row per
// (volunteer, opportunity) pair; re-applying after a withdrawal or rejection
// rewrites the existing row back to pending.
type Application struct {
	ID            uint64            `gorm:"primarykey" json:"id"`
	VolunteerID   uint64            `gorm:"not null;uniqueIndex:idx_applications_volunteer_opportunity" json:"volunteer_id"`
	OpportunityID uint64            `gorm:"not null;uniqueIndex:idx_applications_volunteer_opportunity" json:"opportunity_id"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Message       string            `gorm:"type:text" json:"message"`
	AppliedAt     time.Time         `json:"applied_at"`
	ResponseAt    *time.Time        `json:"response_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Volunteer   Volunteer   `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Opportunity Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
}
