package models

import (
	"time"
)

type ReviewerType string

const (
	ReviewerVolunteer    ReviewerType = "volunteer"
	ReviewerOrganization ReviewerType = "organization"
)

// Review is one directional rating scoped to one opportunity. The composite
// unique index gives upsert semantics: a second submission for the same
// (reviewer, opportunity, reviewee) updates the row instead of appending.
type Review struct {
	ID            uint64       `gorm:"primarykey" json:"id"`
	ReviewerType  ReviewerType `gorm:"type:varchar(20);not null;uniqueIndex:idx_reviews_natural_key" json:"reviewer_type"`
	ReviewerID    uint64       `gorm:"not null;uniqueIndex:idx_reviews_natural_key" json:"reviewer_id"`
	OpportunityID uint64       `gorm:"not null;uniqueIndex:idx_reviews_natural_key" json:"opportunity_id"`
	RevieweeType  ReviewerType `gorm:"type:varchar(20);not null;uniqueIndex:idx_reviews_natural_key" json:"reviewee_type"`
	RevieweeID    uint64       `gorm:"not null;uniqueIndex:idx_reviews_natural_key;index" json:"reviewee_id"`
	Rating        int          `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment       string       `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Relations
	Opportunity Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
}
