package dto

import (
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
)

// VolunteerDTO represents a volunteer in API responses
type VolunteerDTO struct {
	ID           uint64              `json:"id"`
	Name         string              `json:"name"`
	City         string              `json:"city,omitempty"`
	State        string              `json:"state,omitempty"`
	Availability models.Availability `json:"availability,omitempty"`
}

// ApplicationDTO represents an application in API responses
type ApplicationDTO struct {
	ID            uint64                   `json:"id"`
	VolunteerID   uint64                   `json:"volunteer_id"`
	OpportunityID uint64                   `json:"opportunity_id"`
	Status        models.ApplicationStatus `json:"status"`
	Message       string                   `json:"message,omitempty"`
	AppliedAt     time.Time                `json:"applied_at"`
	ResponseAt    *time.Time               `json:"response_at"`
	Volunteer     *VolunteerDTO            `json:"volunteer,omitempty"`
	Opportunity   *OpportunityDTO          `json:"opportunity,omitempty"`
}

// ParticipationDTO represents a participation row in API responses
type ParticipationDTO struct {
	ID             uint64                     `json:"id"`
	VolunteerID    uint64                     `json:"volunteer_id"`
	OpportunityID  uint64                     `json:"opportunity_id"`
	Status         models.ParticipationStatus `json:"status"`
	HoursWorked    *float64                   `json:"hours_worked"`
	Reason         models.AbsenceReason       `json:"reason,omitempty"`
	Feedback       string                     `json:"feedback,omitempty"`
	ParticipatedAt *time.Time                 `json:"participated_at"`
	Volunteer      *VolunteerDTO              `json:"volunteer,omitempty"`
}

// ToVolunteerDTO converts a Volunteer model to VolunteerDTO
func ToVolunteerDTO(v models.Volunteer) VolunteerDTO {
	return VolunteerDTO{
		ID:           v.ID,
		Name:         v.Name,
		City:         v.City,
		State:        v.State,
		Availability: v.Availability,
	}
}

// ToApplicationDTO converts an Application model to ApplicationDTO
func ToApplicationDTO(app models.Application) ApplicationDTO {
	dto := ApplicationDTO{
		ID:            app.ID,
		VolunteerID:   app.VolunteerID,
		OpportunityID: app.OpportunityID,
		Status:        app.Status,
		Message:       app.Message,
		AppliedAt:     app.AppliedAt,
		ResponseAt:    app.ResponseAt,
	}

	if app.Volunteer.ID != 0 {
		v := ToVolunteerDTO(app.Volunteer)
		dto.Volunteer = &v
	}
	if app.Opportunity.ID != 0 {
		o := ToOpportunityDTO(app.Opportunity)
		dto.Opportunity = &o
	}

	return dto
}

// ToParticipationDTO converts a Participation model to ParticipationDTO
func ToParticipationDTO(p models.Participation) ParticipationDTO {
	dto := ParticipationDTO{
		ID:             p.ID,
		VolunteerID:    p.VolunteerID,
		OpportunityID:  p.OpportunityID,
		Status:         p.Status,
		HoursWorked:    p.HoursWorked,
		Reason:         p.Reason,
		Feedback:       p.Feedback,
		ParticipatedAt: p.ParticipatedAt,
	}

	if p.Volunteer.ID != 0 {
		v := ToVolunteerDTO(p.Volunteer)
		dto.Volunteer = &v
	}

	return dto
}
