package dto

import (
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// OpportunityDTO represents an opportunity in API responses
type OpportunityDTO struct {
	ID                  uint64                   `json:"id"`
	OrganizationID      uint64                   `json:"organization_id"`
	Title               string                   `json:"title"`
	Description         string                   `json:"description"`
	Status              models.OpportunityStatus `json:"status"`
	NumberOfVolunteers  *int                     `json:"number_of_volunteers"`
	City                string                   `json:"city"`
	State               string                   `json:"state"`
	Location            string                   `json:"location"`
	StartDate           *time.Time               `json:"start_date"`
	EndDate             *time.Time               `json:"end_date"`
	StartTime           string                   `json:"start_time"`
	EndTime             string                   `json:"end_time"`
	ApplicationDeadline *time.Time               `json:"application_deadline"`
	PublishedAt         *time.Time               `json:"published_at"`
	ClosedAt            *time.Time               `json:"closed_at"`
	CompletedAt         *time.Time               `json:"completed_at"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
	Organization        *OrganizationDTO         `json:"organization,omitempty"`
	Skills              []string                 `json:"skills,omitempty"`
	Interests           []string                 `json:"interests,omitempty"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:    org.ID,
		Name:  org.Name,
		City:  org.City,
		State: org.State,
	}
}

// ToOpportunityDTO converts an Opportunity model to OpportunityDTO
func ToOpportunityDTO(opp models.Opportunity) OpportunityDTO {
	dto := OpportunityDTO{
		ID:                  opp.ID,
		OrganizationID:      opp.OrganizationID,
		Title:               opp.Title,
		Description:         opp.Description,
		Status:              opp.Status,
		NumberOfVolunteers:  opp.NumberOfVolunteers,
		City:                opp.City,
		State:               opp.State,
		Location:            opp.Location,
		StartDate:           opp.StartDate,
		EndDate:             opp.EndDate,
		StartTime:           opp.StartTime,
		EndTime:             opp.EndTime,
		ApplicationDeadline: opp.ApplicationDeadline,
		PublishedAt:         opp.PublishedAt,
		ClosedAt:            opp.ClosedAt,
		CompletedAt:         opp.CompletedAt,
		CreatedAt:           opp.CreatedAt,
		UpdatedAt:           opp.UpdatedAt,
	}

	// Include organization if preloaded
	if opp.Organization.ID != 0 {
		org := ToOrganizationDTO(opp.Organization)
		dto.Organization = &org
	}

	for _, s := range opp.Skills {
		dto.Skills = append(dto.Skills, s.Name)
	}
	for _, i := range opp.Interests {
		dto.Interests = append(dto.Interests, i.Name)
	}

	return dto
}
