package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/middleware"
	"github.com/volunhub/volunteer-api/internal/repository"
	"github.com/volunhub/volunteer-api/internal/utils"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// ListNotifications returns the current user's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	repo := repository.NewNotificationRepository(database.GetDB())
	notifications, total, err := repo.ListByUser(userID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	unread, err := repo.CountUnread(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to count unread notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MarkNotificationRead marks one of the current user's notifications as read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	notificationID, err := parseID(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	repo := repository.NewNotificationRepository(database.GetDB())
	if err := repo.MarkRead(notificationID, userID); err != nil {
		apierrors.NotFound(c, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
