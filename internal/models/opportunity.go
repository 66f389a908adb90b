package models

import (
	"time"

	"gorm.io/gorm"
)

type OpportunityStatus string

const (
	StatusDraft     OpportunityStatus = "draft"
	StatusOpen      OpportunityStatus = "open"
	StatusClosed    OpportunityStatus = "closed"
	StatusOngoing   OpportunityStatus = "ongoing"
	StatusCompleted OpportunityStatus = "completed"
	StatusCanceled  OpportunityStatus = "canceled"
	StatusSuspended OpportunityStatus = "suspended"
	StatusDeleted   OpportunityStatus = "deleted"
)

type Opportunity struct {
	ID                 uint64            `gorm:"primarykey" json:"id"`
	OrganizationID     uint64            `gorm:"not null;index" json:"organization_id"`
	Title              string            `gorm:"type:varchar(255);not null" json:"title"`
	Description        string            `gorm:"type:text" json:"description"`
	Status             OpportunityStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	NumberOfVolunteers *int              `json:"number_of_volunteers"`
	City               string            `gorm:"type:varchar(100)" json:"city"`
	State              string            `gorm:"type:varchar(100)" json:"state"`
	Location           string            `gorm:"type:varchar(255)" json:"location"`

	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	StartTime           string     `gorm:"type:varchar(5)" json:"start_time"` // "15:04"
	EndTime             string     `gorm:"type:varchar(5)" json:"end_time"`
	ApplicationDeadline *time.Time `json:"application_deadline"`

	PublishedAt *time.Time `json:"published_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization   Organization         `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Skills         []Skill              `gorm:"many2many:opportunity_skills" json:"skills,omitempty"`
	Interests      []Interest           `gorm:"many2many:opportunity_interests" json:"interests,omitempty"`
	Images         []OpportunityImage   `gorm:"foreignKey:OpportunityID" json:"images,omitempty"`
	Contacts       []OpportunityContact `gorm:"foreignKey:OpportunityID" json:"contacts,omitempty"`
	Applications   []Application        `gorm:"foreignKey:OpportunityID" json:"applications,omitempty"`
	Participations []Participation      `gorm:"foreignKey:OpportunityID" json:"participations,omitempty"`
}

type OpportunityImage struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	OpportunityID uint64    `gorm:"not null;index" json:"opportunity_id"`
	FilePath      string    `gorm:"type:varchar(255);not null" json:"file_path"`
	CreatedAt     time.Time `json:"created_at"`
}

type OpportunityContact struct {
	ID            uint64 `gorm:"primarykey" json:"id"`
	OpportunityID uint64 `gorm:"not null;index" json:"opportunity_id"`
	Name          string `gorm:"type:varchar(255)" json:"name"`
	Email         string `gorm:"type:varchar(255)" json:"email"`
	Phone         string `gorm:"type:varchar(50)" json:"phone"`
}

// IsTimeFlexible reports whether the opportunity has no fixed schedule at all.
// Time-flexible opportunities never lock their attendance window.
func (o *Opportunity) IsTimeFlexible() bool {
	return o.StartDate == nil && o.EndDate == nil
}

// EndReference returns the date attendance locking is measured from: the end
// date, or the start date for single-day opportunities. Nil when time-flexible.
func (o *Opportunity) EndReference() *time.Time {
	if o.EndDate != nil {
		return o.EndDate
	}
	return o.StartDate
}

// StartMoment returns the instant the opportunity starts: the start date at
// its start time, or at midnight when no time is set. Nil without a start date.
func (o *Opportunity) StartMoment() *time.Time {
	if o.StartDate == nil {
		return nil
	}
	m := atTime(*o.StartDate, o.StartTime, 0, 0)
	return &m
}

// EndMoment returns the instant the opportunity ends: the end reference date
// at its end time, or at the end of that day when no time is set. Nil when
// time-flexible.
func (o *Opportunity) EndMoment() *time.Time {
	ref := o.EndReference()
	if ref == nil {
		return nil
	}
	m := atTime(*ref, o.EndTime, 23, 59)
	return &m
}

func atTime(day time.Time, clock string, defaultHour, defaultMinute int) time.Time {
	hour, minute := defaultHour, defaultMinute
	if t, err := time.Parse("15:04", clock); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// TotalPossibleHours computes the maximum hours a volunteer can log, from the
// daily start/end time span. Returns defaultHours when no times are set.
func (o *Opportunity) TotalPossibleHours(defaultHours float64) float64 {
	start, err1 := time.Parse("15:04", o.StartTime)
	end, err2 := time.Parse("15:04", o.EndTime)
	if err1 != nil || err2 != nil {
		return defaultHours
	}

	span := end.Sub(start)
	if span <= 0 {
		// Overnight shift
		span += 24 * time.Hour
	}
	return span.Hours()
}
