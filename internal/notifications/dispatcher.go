// Package notifications delivers user-facing messages after domain
// transactions commit. Delivery is best-effort: a failed dispatch is logged
// and swallowed, never surfaced to the triggering action.
package notifications

import (
	"log"

	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
	"gorm.io/gorm"
)

// Message is one pending notification. UserID is the recipient's user id,
// not a profile id.
type Message struct {
	UserID      uint64
	RoleTarget  models.UserRole
	Title       string
	Body        string
	Type        models.NotificationType
	ActionPath  string
	ContextType string
	ContextID   uint64
	ActorID     uint64
}

// Dispatcher fans out messages. Implementations must tolerate redundant
// dispatches of the same logical event.
type Dispatcher interface {
	Dispatch(messages ...Message)
}

// DBDispatcher persists notifications as rows the inbox endpoints serve.
type DBDispatcher struct {
	repo repository.NotificationRepository
}

// NewDBDispatcher creates a Dispatcher backed by the notifications table.
func NewDBDispatcher(db *gorm.DB) *DBDispatcher {
	return &DBDispatcher{repo: repository.NewNotificationRepository(db)}
}

// Dispatch writes the messages. Errors are logged, never returned: the domain
// change that triggered the messages has already committed.
func (d *DBDispatcher) Dispatch(messages ...Message) {
	if len(messages) == 0 {
		return
	}

	rows := make([]models.Notification, len(messages))
	for i, m := range messages {
		rows[i] = models.Notification{
			UserID:      m.UserID,
			RoleTarget:  m.RoleTarget,
			Title:       m.Title,
			Message:     m.Body,
			Type:        m.Type,
			ActionPath:  m.ActionPath,
			ContextType: m.ContextType,
			ContextID:   m.ContextID,
			ActorID:     m.ActorID,
		}
	}

	if err := d.repo.CreateBatch(rows); err != nil {
		log.Printf("notification dispatch failed for %d message(s): %v", len(messages), err)
	}
}
