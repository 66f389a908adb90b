package models

import (
	"time"

	"gorm.io/gorm"
)

type Availability string

const (
	AvailabilityFlexible Availability = "flexible"
	AvailabilityWeekends Availability = "weekends"
	AvailabilityPartTime Availability = "part-time"
	AvailabilityWeekdays Availability = "weekdays"
)

type Volunteer struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	UserID       uint64         `gorm:"uniqueIndex;not null" json:"user_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	City         string         `gorm:"type:varchar(100)" json:"city"`
	State        string         `gorm:"type:varchar(100)" json:"state"`
	Availability Availability   `gorm:"type:varchar(20)" json:"availability"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skills    []Skill    `gorm:"many2many:volunteer_skills" json:"skills,omitempty"`
	Interests []Interest `gorm:"many2many:volunteer_interests" json:"interests,omitempty"`
}
