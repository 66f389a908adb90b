package models

import (
	"time"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a persisted user-facing message. Rows are written best-effort
// after a domain transaction commits and are never required for correctness.
type Notification struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;index" json:"user_id"`
	RoleTarget  UserRole         `gorm:"type:varchar(20)" json:"role_target"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	Type        NotificationType `gorm:"type:varchar(20);not null;default:'info'" json:"type"`
	ActionPath  string           `gorm:"type:varchar(255)" json:"action_path"`
	ContextType string           `gorm:"type:varchar(50)" json:"context_type"`
	ContextID   uint64           `json:"context_id"`
	ActorID     uint64           `json:"actor_id"`
	Read        bool             `gorm:"column:is_read;not null;default:false;index" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
