package models

import (
	"time"

	"gorm.io/gorm"
)

type ParticipationStatus string

const (
	ParticipationPending    ParticipationStatus = "pending"
	ParticipationAttended   ParticipationStatus = "attended"
	ParticipationAbsent     ParticipationStatus = "absent"
	ParticipationIncomplete ParticipationStatus = "incomplete"
)

type AbsenceReason string

const (
	ReasonSick           AbsenceReason = "sick"
	ReasonAccident       AbsenceReason = "accident"
	ReasonEmergency      AbsenceReason = "emergency"
	ReasonFamily         AbsenceReason = "family"
	ReasonTransportation AbsenceReason = "transportation"
	ReasonWeather        AbsenceReason = "weather"
	ReasonLeftEarly      AbsenceReason = "left_early"
	ReasonPersonal       AbsenceReason = "personal"
	ReasonOther          AbsenceReason = "other"
)

// ValidAbsenceReason reports whether r is one of the fixed absence reasons.
func ValidAbsenceReason(r AbsenceReason) bool {
	switch r {
	case ReasonSick, ReasonAccident, ReasonEmergency, ReasonFamily,
		ReasonTransportation, ReasonWeather, ReasonLeftEarly, ReasonPersonal, ReasonOther:
		return true
	}
	return false
}

// Participation records whether and how a volunteer actually engaged once
// accepted. One row per (volunteer, opportunity); mutated only by the owning
// organization until the attendance grace period expires.
type Participation struct {
	ID            uint64              `gorm:"primarykey" json:"id"`
	VolunteerID   uint64              `gorm:"not null;uniqueIndex:idx_participations_volunteer_opportunity" json:"volunteer_id"`
	OpportunityID uint64              `gorm:"not null;uniqueIndex:idx_participations_volunteer_opportunity" json:"opportunity_id"`
	Status        ParticipationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	HoursWorked   *float64            `json:"hours_worked"`
	Reason        AbsenceReason       `gorm:"type:varchar(20)" json:"reason,omitempty"`
	Feedback      string              `gorm:"type:text" json:"feedback"`
	ParticipatedAt *time.Time         `json:"participated_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relations
	Volunteer   Volunteer   `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Opportunity Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
}

// Terminal reports whether the participation has reached a final state.
func (p *Participation) Terminal() bool {
	return p.Status == ParticipationAttended ||
		p.Status == ParticipationAbsent ||
		p.Status == ParticipationIncomplete
}
