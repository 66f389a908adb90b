package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	"github.com/volunhub/volunteer-api/internal/dto"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/middleware"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
	"github.com/volunhub/volunteer-api/internal/services"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Apply submits the acting volunteer's application to an opportunity
func (h *ApplicationHandler) Apply(c *gin.Context) {
	volunteer, ok := middleware.GetVolunteer(c)
	if !ok {
		apierrors.Forbidden(c, "Volunteer account required")
		return
	}

	oppID, err := parseID(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid opportunity ID")
		return
	}

	type ApplyRequest struct {
		Message string `json:"message"`
	}
	var req ApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	app, err := h.applicationService.Apply(services.ApplyInput{
		VolunteerID:   volunteer.ID,
		OpportunityID: oppID,
		Message:       req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			apierrors.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrApplicationsClosed):
			apierrors.Conflict(c, err.Error())
		case errors.Is(err, services.ErrAlreadyApplied):
			apierrors.Conflict(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to submit application")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicationDTO(*app))
}

// Withdraw retracts the acting volunteer's own application
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	volunteer, ok := middleware.GetVolunteer(c)
	if !ok {
		apierrors.Forbidden(c, "Volunteer account required")
		return
	}

	appID, err := parseID(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid application ID")
		return
	}

	app, err := h.applicationService.Withdraw(appID, volunteer.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			apierrors.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrInvalidAction):
			apierrors.Conflict(c, "Application can no longer be withdrawn")
		default:
			apierrors.InternalError(c, "Failed to withdraw application")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToApplicationDTO(*app))
}

// ListMyApplications returns the acting volunteer's applications
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	volunteer, ok := middleware.GetVolunteer(c)
	if !ok {
		apierrors.Forbidden(c, "Volunteer account required")
		return
	}

	appRepo := repository.NewApplicationRepository(database.GetDB())
	apps, err := appRepo.ListByVolunteer(volunteer.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch applications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": toApplicationDTOs(apps)})
}

// ListOpportunityApplications returns the applications on an owned
// opportunity, optionally filtered by status
func (h *ApplicationHandler) ListOpportunityApplications(c *gin.Context) {
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	var statuses []models.ApplicationStatus
	if status := c.Query("status"); status != "" {
		statuses = append(statuses, models.ApplicationStatus(status))
	}

	appRepo := repository.NewApplicationRepository(database.GetDB())
	apps, err := appRepo.ListByOpportunity(opp.ID, statuses...)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch applications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": toApplicationDTOs(apps)})
}

// Decide applies an accept, shortlist or reject decision to one application
func (h *ApplicationHandler) Decide(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}

	appID, err := parseID(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid application ID")
		return
	}

	type DecisionRequest struct {
		Action string `json:"action" binding:"required"`
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	action, err := services.ParseDecisionAction(req.Action)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	app, err := h.applicationService.Decide(services.DecideInput{
		ApplicationID:  appID,
		OrganizationID: org.ID,
		Action:         action,
	})
	if err != nil {
		h.respondDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApplicationDTO(*app))
}

// BulkDecide applies one decision to a batch of applications
func (h *ApplicationHandler) BulkDecide(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}

	type BulkDecisionRequest struct {
		ApplicationIDs []uint64 `json:"application_ids" binding:"required"`
		Action         string   `json:"action" binding:"required"`
	}
	var req BulkDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	action, err := services.ParseDecisionAction(req.Action)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.applicationService.BulkDecide(services.BulkDecideInput{
		ApplicationIDs: req.ApplicationIDs,
		OrganizationID: org.ID,
		Action:         action,
	})
	if err != nil {
		h.respondDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *ApplicationHandler) respondDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		apierrors.NotFound(c, "Application not found")
	case errors.Is(err, services.ErrNoApplicationIDs):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCapacityExceeded):
		apierrors.CapacityExceeded(c, "")
	case errors.Is(err, services.ErrInvalidAction):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to apply decision")
	}
}

func toApplicationDTOs(apps []models.Application) []dto.ApplicationDTO {
	dtos := make([]dto.ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dtos = append(dtos, dto.ToApplicationDTO(app))
	}
	return dtos
}
