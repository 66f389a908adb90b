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

type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type attendanceRequest struct {
	Status      string   `json:"status" binding:"required"`
	HoursWorked *float64 `json:"hours_worked"`
	Reason      string   `json:"reason"`
	Feedback    string   `json:"feedback"`
}

// UpdateAttendance records one volunteer's attendance on an owned opportunity
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	volunteerID, err := parseID(c.Param("volunteer_id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid volunteer ID")
		return
	}

	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	participation, err := h.attendanceService.Update(services.AttendanceInput{
		OpportunityID:  opp.ID,
		OrganizationID: org.ID,
		VolunteerID:    volunteerID,
		Status:         models.ParticipationStatus(req.Status),
		HoursWorked:    req.HoursWorked,
		Reason:         models.AbsenceReason(req.Reason),
		Feedback:       req.Feedback,
	})
	if err != nil {
		h.respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipationDTO(*participation))
}

// BulkUpdateAttendance applies one attendance record to many volunteers.
// Rows are written independently; the response tallies successes and failures.
func (h *AttendanceHandler) BulkUpdateAttendance(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	type BulkRequest struct {
		VolunteerIDs []uint64 `json:"volunteer_ids" binding:"required"`
		attendanceRequest
	}
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.attendanceService.BulkUpdate(services.BulkAttendanceInput{
		OpportunityID:  opp.ID,
		OrganizationID: org.ID,
		VolunteerIDs:   req.VolunteerIDs,
		Status:         models.ParticipationStatus(req.Status),
		HoursWorked:    req.HoursWorked,
		Reason:         models.AbsenceReason(req.Reason),
		Feedback:       req.Feedback,
	})
	if err != nil {
		h.respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkAllAttended flips every pending participation on the opportunity to
// attended with the given hours
func (h *AttendanceHandler) MarkAllAttended(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	type MarkAllRequest struct {
		HoursWorked float64 `json:"hours_worked" binding:"required"`
	}
	var req MarkAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.attendanceService.MarkAllPendingAttended(opp.ID, org.ID, req.HoursWorked)
	if err != nil {
		h.respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// ListAttendance returns the participation rows on an owned opportunity
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	var statuses []models.ParticipationStatus
	if status := c.Query("status"); status != "" {
		statuses = append(statuses, models.ParticipationStatus(status))
	}

	partRepo := repository.NewParticipationRepository(database.GetDB())
	participations, err := partRepo.ListByOpportunity(opp.ID, statuses...)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch attendance records")
		return
	}

	dtos := make([]dto.ParticipationDTO, 0, len(participations))
	for _, p := range participations {
		dtos = append(dtos, dto.ToParticipationDTO(p))
	}

	c.JSON(http.StatusOK, gin.H{"participations": dtos})
}

// RateVolunteer submits the owning organization's rating of a volunteer
func (h *AttendanceHandler) RateVolunteer(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	type RateRequest struct {
		VolunteerID uint64 `json:"volunteer_id" binding:"required"`
		Rating      int    `json:"rating" binding:"required"`
		Comment     string `json:"comment"`
	}
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	review, err := h.attendanceService.Rate(services.RateInput{
		OpportunityID: opp.ID,
		ReviewerType:  models.ReviewerOrganization,
		ReviewerID:    org.ID,
		RevieweeType:  models.ReviewerVolunteer,
		RevieweeID:    req.VolunteerID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		h.respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// RateOrganization submits a volunteer's rating of the opportunity's
// organization. The volunteer must have an attended or incomplete
// participation on the opportunity.
func (h *AttendanceHandler) RateOrganization(c *gin.Context) {
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

	oppRepo := repository.NewOpportunityRepository(database.GetDB())
	opp, err := oppRepo.FindByID(oppID)
	if err != nil {
		apierrors.NotFound(c, "Opportunity not found")
		return
	}

	type RateRequest struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	review, err := h.attendanceService.Rate(services.RateInput{
		OpportunityID: opp.ID,
		ReviewerType:  models.ReviewerVolunteer,
		ReviewerID:    volunteer.ID,
		RevieweeType:  models.ReviewerOrganization,
		RevieweeID:    opp.OrganizationID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		h.respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *AttendanceHandler) respondAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOpportunityNotFound):
		apierrors.NotFound(c, "Opportunity not found")
	case errors.Is(err, services.ErrAttendanceLocked):
		apierrors.AttendanceLocked(c, "")
	case errors.Is(err, services.ErrAttendanceNotOpen):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrRatingNotAllowed):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrHoursRequired),
		errors.Is(err, services.ErrHoursOutOfRange),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrInvalidReason),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrNoVolunteerIDs):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to save attendance record")
	}
}
