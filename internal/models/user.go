package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleVolunteer    UserRole = "volunteer"
	RoleOrganization UserRole = "organization"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Volunteer    *Volunteer    `gorm:"foreignKey:UserID" json:"volunteer,omitempty"`
	Organization *Organization `gorm:"foreignKey:UserID" json:"organization,omitempty"`
}
