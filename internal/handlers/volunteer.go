package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/middleware"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
)

type VolunteerHandler struct{}

func NewVolunteerHandler() *VolunteerHandler {
	return &VolunteerHandler{}
}

// GetMyProfile returns the acting volunteer's profile with skills and interests
func (h *VolunteerHandler) GetMyProfile(c *gin.Context) {
	volunteer, ok := middleware.GetVolunteer(c)
	if !ok {
		apierrors.Forbidden(c, "Volunteer account required")
		return
	}

	volRepo := repository.NewVolunteerRepository(database.GetDB())
	profile, err := volRepo.FindByID(volunteer.ID, "Skills", "Interests")
	if err != nil {
		apierrors.NotFound(c, "Volunteer profile not found")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile updates the acting volunteer's profile fields and replaces
// their skill and interest associations when provided
func (h *VolunteerHandler) UpdateMyProfile(c *gin.Context) {
	volunteer, ok := middleware.GetVolunteer(c)
	if !ok {
		apierrors.Forbidden(c, "Volunteer account required")
		return
	}

	type UpdateProfileRequest struct {
		Name         string   `json:"name"`
		City         string   `json:"city"`
		State        string   `json:"state"`
		Availability string   `json:"availability"`
		Skills       []string `json:"skills"`
		Interests    []string `json:"interests"`
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	switch models.Availability(req.Availability) {
	case "", models.AvailabilityFlexible, models.AvailabilityWeekends,
		models.AvailabilityPartTime, models.AvailabilityWeekdays:
	default:
		apierrors.BadRequest(c, "Unknown availability")
		return
	}

	volRepo := repository.NewVolunteerRepository(database.GetDB())

	if req.Name != "" {
		volunteer.Name = req.Name
	}
	volunteer.City = req.City
	volunteer.State = req.State
	if req.Availability != "" {
		volunteer.Availability = models.Availability(req.Availability)
	}
	if err := volRepo.Update(&volunteer); err != nil {
		apierrors.InternalError(c, "Failed to update profile")
		return
	}

	if req.Skills != nil {
		if err := volRepo.ReplaceSkills(&volunteer, findOrCreateSkills(req.Skills)); err != nil {
			apierrors.InternalError(c, "Failed to update skills")
			return
		}
	}
	if req.Interests != nil {
		if err := volRepo.ReplaceInterests(&volunteer, findOrCreateInterests(req.Interests)); err != nil {
			apierrors.InternalError(c, "Failed to update interests")
			return
		}
	}

	profile, err := volRepo.FindByID(volunteer.ID, "Skills", "Interests")
	if err != nil {
		apierrors.InternalError(c, "Failed to reload profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}
