package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/database"
	"github.com/volunhub/volunteer-api/internal/dto"
	apierrors "github.com/volunhub/volunteer-api/internal/errors"
	"github.com/volunhub/volunteer-api/internal/middleware"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
	"github.com/volunhub/volunteer-api/internal/services"
	"github.com/volunhub/volunteer-api/internal/utils"
)

type OpportunityHandler struct {
	lifecycleService *services.LifecycleService
	matchService     *services.MatchService
	uploadDir        string
}

func NewOpportunityHandler(lifecycleService *services.LifecycleService, matchService *services.MatchService, uploadDir string) *OpportunityHandler {
	return &OpportunityHandler{
		lifecycleService: lifecycleService,
		matchService:     matchService,
		uploadDir:        uploadDir,
	}
}

// ListOpportunities returns publicly visible opportunities
// Can filter by city, state and organization_id
func (h *OpportunityHandler) ListOpportunities(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.OpportunityFilter{
		// Only published listings are browsable
		Statuses:   []models.OpportunityStatus{models.StatusOpen, models.StatusOngoing},
		City:       c.Query("city"),
		State:      c.Query("state"),
		Pagination: params,
	}

	if orgIDStr := c.Query("organization_id"); orgIDStr != "" {
		orgID, err := parseID(orgIDStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization_id")
			return
		}
		filter.OrganizationID = &orgID
	}

	oppRepo := repository.NewOpportunityRepository(database.GetDB())
	opportunities, total, err := oppRepo.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch opportunities")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunities": toOpportunityDTOs(opportunities),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ListMyOpportunities returns all of the acting organization's opportunities,
// in any status. Elapsed schedules are swept before the list is read.
func (h *OpportunityHandler) ListMyOpportunities(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}

	if err := h.lifecycleService.Sweep(org.ID); err != nil {
		apierrors.InternalError(c, "Failed to update opportunity statuses")
		return
	}

	params := utils.GetPaginationParams(c)

	filter := repository.OpportunityFilter{
		OrganizationID: &org.ID,
		Pagination:     params,
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []models.OpportunityStatus{models.OpportunityStatus(status)}
	}

	oppRepo := repository.NewOpportunityRepository(database.GetDB())
	opportunities, total, err := oppRepo.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch opportunities")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunities": toOpportunityDTOs(opportunities),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

type opportunityRequest struct {
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description"`
	NumberOfVolunteers  *int       `json:"number_of_volunteers"`
	City                string     `json:"city"`
	State               string     `json:"state"`
	Location            string     `json:"location"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	StartTime           string     `json:"start_time"`
	EndTime             string     `json:"end_time"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	Skills              []string   `json:"skills"`
	Interests           []string   `json:"interests"`
	Contacts            []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contacts"`
}

// CreateOpportunity creates a new opportunity in draft status
func (h *OpportunityHandler) CreateOpportunity(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Forbidden(c, "Organization account required")
		return
	}

	var req opportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.NumberOfVolunteers != nil && *req.NumberOfVolunteers < 1 {
		apierrors.BadRequest(c, "number_of_volunteers must be at least 1")
		return
	}
	if req.EndDate != nil && req.StartDate == nil {
		apierrors.BadRequest(c, "end_date requires a start_date")
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		apierrors.BadRequest(c, "end_date must not be before start_date")
		return
	}

	opp := models.Opportunity{
		OrganizationID:      org.ID,
		Title:               req.Title,
		Description:         req.Description,
		Status:              models.StatusDraft,
		NumberOfVolunteers:  req.NumberOfVolunteers,
		City:                req.City,
		State:               req.State,
		Location:            req.Location,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	opp.Skills = findOrCreateSkills(req.Skills)
	opp.Interests = findOrCreateInterests(req.Interests)
	for _, contact := range req.Contacts {
		opp.Contacts = append(opp.Contacts, models.OpportunityContact{
			Name:  contact.Name,
			Email: contact.Email,
			Phone: contact.Phone,
		})
	}

	if err := database.GetDB().Create(&opp).Error; err != nil {
		apierrors.InternalError(c, "Failed to create opportunity")
		return
	}

	c.JSON(http.StatusCreated, dto.ToOpportunityDTO(opp))
}

// GetOpportunity returns a single opportunity with its relations. Drafts and
// frozen listings are only visible to their owning organization.
func (h *OpportunityHandler) GetOpportunity(c *gin.Context) {
	oppID, err := parseID(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid opportunity ID")
		return
	}

	oppRepo := repository.NewOpportunityRepository(database.GetDB())
	opp, err := oppRepo.FindByID(oppID, "Organization", "Skills", "Interests", "Images", "Contacts")
	if err != nil {
		apierrors.NotFound(c, "Opportunity not found")
		return
	}

	if !publiclyVisible(opp.Status) && !h.actingOrganizationOwns(c, opp.OrganizationID) {
		apierrors.NotFound(c, "Opportunity not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToOpportunityDTO(*opp))
}

// UpdateOpportunity updates the editable fields of an owned opportunity.
// Completed, canceled and frozen listings cannot be edited.
func (h *OpportunityHandler) UpdateOpportunity(c *gin.Context) {
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	switch opp.Status {
	case models.StatusDraft, models.StatusOpen, models.StatusClosed, models.StatusOngoing:
	default:
		apierrors.InvalidTransition(c, "Opportunity can no longer be edited")
		return
	}

	var req opportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.NumberOfVolunteers != nil && *req.NumberOfVolunteers < 1 {
		apierrors.BadRequest(c, "number_of_volunteers must be at least 1")
		return
	}
	if req.EndDate != nil && req.StartDate == nil {
		apierrors.BadRequest(c, "end_date requires a start_date")
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		apierrors.BadRequest(c, "end_date must not be before start_date")
		return
	}

	opp.Title = req.Title
	opp.Description = req.Description
	opp.NumberOfVolunteers = req.NumberOfVolunteers
	opp.City = req.City
	opp.State = req.State
	opp.Location = req.Location
	opp.StartDate = req.StartDate
	opp.EndDate = req.EndDate
	opp.StartTime = req.StartTime
	opp.EndTime = req.EndTime
	opp.ApplicationDeadline = req.ApplicationDeadline

	db := database.GetDB()
	if err := db.Save(&opp).Error; err != nil {
		apierrors.InternalError(c, "Failed to update opportunity")
		return
	}
	if req.Skills != nil {
		if err := db.Model(&opp).Association("Skills").Replace(findOrCreateSkills(req.Skills)); err != nil {
			apierrors.InternalError(c, "Failed to update skills")
			return
		}
	}
	if req.Interests != nil {
		if err := db.Model(&opp).Association("Interests").Replace(findOrCreateInterests(req.Interests)); err != nil {
			apierrors.InternalError(c, "Failed to update interests")
			return
		}
	}

	oppRepo := repository.NewOpportunityRepository(db)
	reloaded, err := oppRepo.FindByID(opp.ID, "Organization", "Skills", "Interests")
	if err != nil {
		apierrors.InternalError(c, "Failed to reload opportunity")
		return
	}

	c.JSON(http.StatusOK, dto.ToOpportunityDTO(*reloaded))
}

// PublishOpportunity transitions the opportunity to open, or reopens a
// closed one
func (h *OpportunityHandler) PublishOpportunity(c *gin.Context) {
	h.transition(c, models.StatusOpen, false)
}

// CloseOpportunity stops accepting applications and rejects the undecided ones
func (h *OpportunityHandler) CloseOpportunity(c *gin.Context) {
	h.transition(c, models.StatusClosed, false)
}

// CancelOpportunity cancels an opportunity nobody has been accepted to
func (h *OpportunityHandler) CancelOpportunity(c *gin.Context) {
	h.transition(c, models.StatusCanceled, false)
}

// CompleteOpportunity marks an ongoing opportunity completed once every
// participation has been resolved
func (h *OpportunityHandler) CompleteOpportunity(c *gin.Context) {
	h.transition(c, models.StatusCompleted, false)
}

// DeleteOpportunity soft-deletes the opportunity, or hard-deletes it together
// with every dependent row when ?confirm=true is passed
func (h *OpportunityHandler) DeleteOpportunity(c *gin.Context) {
	h.transition(c, models.StatusDeleted, c.Query("confirm") == "true")
}

func (h *OpportunityHandler) transition(c *gin.Context, target models.OpportunityStatus, confirm bool) {
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

	updated, err := h.lifecycleService.Transition(services.TransitionInput{
		OpportunityID:  opp.ID,
		OrganizationID: org.ID,
		Target:         target,
		ConfirmDelete:  confirm,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			apierrors.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrInvalidTransition):
			apierrors.InvalidTransition(c, err.Error())
		case errors.Is(err, services.ErrHardDeleteNotConfirmed):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to change opportunity status")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOpportunityDTO(*updated))
}

// GetCandidates returns the opportunity's applicants ranked by compatibility
func (h *OpportunityHandler) GetCandidates(c *gin.Context) {
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

	if err := h.lifecycleService.Sweep(org.ID); err != nil {
		apierrors.InternalError(c, "Failed to update opportunity statuses")
		return
	}

	candidates, err := h.matchService.RankCandidates(opp.ID, org.ID)
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			apierrors.NotFound(c, "Opportunity not found")
			return
		}
		apierrors.InternalError(c, "Failed to rank candidates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// UploadImage stores an image file for the opportunity
func (h *OpportunityHandler) UploadImage(c *gin.Context) {
	opp, ok := middleware.GetOpportunity(c)
	if !ok {
		apierrors.InternalError(c, "Opportunity not found in context")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "An image file is required")
		return
	}

	filename := utils.ImageFileName(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		apierrors.InternalError(c, "Failed to store image")
		return
	}

	image := models.OpportunityImage{
		OpportunityID: opp.ID,
		FilePath:      filename,
	}
	if err := database.GetDB().Create(&image).Error; err != nil {
		apierrors.InternalError(c, "Failed to save image record")
		return
	}

	c.JSON(http.StatusCreated, image)
}

// actingOrganizationOwns reports whether the session user's organization
// profile, if any, owns the given organization ID. The public detail route
// carries no organization middleware, so the profile is looked up here.
func (h *OpportunityHandler) actingOrganizationOwns(c *gin.Context, organizationID uint64) bool {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return false
	}
	var org models.Organization
	if err := database.GetDB().Where("user_id = ?", userID).First(&org).Error; err != nil {
		return false
	}
	return org.ID == organizationID
}

func publiclyVisible(status models.OpportunityStatus) bool {
	switch status {
	case models.StatusOpen, models.StatusOngoing, models.StatusClosed, models.StatusCompleted:
		return true
	}
	return false
}

func findOrCreateSkills(names []string) []models.Skill {
	var skills []models.Skill
	for _, name := range names {
		var skill models.Skill
		database.GetDB().Where("name = ?", name).FirstOrCreate(&skill, models.Skill{Name: name})
		skills = append(skills, skill)
	}
	return skills
}

func findOrCreateInterests(names []string) []models.Interest {
	var interests []models.Interest
	for _, name := range names {
		var interest models.Interest
		database.GetDB().Where("name = ?", name).FirstOrCreate(&interest, models.Interest{Name: name})
		interests = append(interests, interest)
	}
	return interests
}

func toOpportunityDTOs(opportunities []models.Opportunity) []dto.OpportunityDTO {
	dtos := make([]dto.OpportunityDTO, 0, len(opportunities))
	for _, opp := range opportunities {
		dtos = append(dtos, dto.ToOpportunityDTO(opp))
	}
	return dtos
}
