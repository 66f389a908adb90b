package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	UserID      uint64         `gorm:"uniqueIndex;not null" json:"user_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	City        string         `gorm:"type:varchar(100)" json:"city"`
	State       string         `gorm:"type:varchar(100)" json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User          User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Opportunities []Opportunity `gorm:"foreignKey:OrganizationID" json:"opportunities,omitempty"`
}
