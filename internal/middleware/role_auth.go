package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
)

// RequireOrganization loads the acting user's organization profile into the
// context. Requests from accounts without one are rejected.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().Where("user_id = ?", userID).First(&org).Error; err != nil {
			apierrors.Forbidden(c, "Organization account required")
			c.Abort()
			return
		}

		c.Set("organization", org)
		c.Next()
	}
}

// RequireVolunteer loads the acting user's volunteer profile into the context.
func RequireVolunteer() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		volRepo := repository.NewVolunteerRepository(database.GetDB())
		volunteer, err := volRepo.FindByUserID(userID)
		if err != nil {
			apierrors.Forbidden(c, "Volunteer account required")
			c.Abort()
			return
		}

		c.Set("volunteer", *volunteer)
		c.Next()
	}
}

// GetOrganization retrieves the organization loaded by RequireOrganization
func GetOrganization(c *gin.Context) (models.Organization, bool) {
	v, exists := c.Get("organization")
	if !exists {
		return models.Organization{}, false
	}
	org, ok := v.(models.Organization)
	return org, ok
}

// GetVolunteer retrieves the volunteer loaded by RequireVolunteer
func GetVolunteer(c *gin.Context) (models.Volunteer, bool) {
	v, exists := c.Get("volunteer")
	if !exists {
		return models.Volunteer{}, false
	}
	volunteer, ok := v.(models.Volunteer)
	return volunteer, ok
}
