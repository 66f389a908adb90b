package repository

import (
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/utils"
)

// OpportunityRepository defines the interface for opportunity data access
type OpportunityRepository interface {
	// Create creates a new opportunity
	Create(opp *models.Opportunity) error

	// FindByID finds an opportunity by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Opportunity, error)

	// FindOwned finds an opportunity scoped to its owning organization
	FindOwned(id, organizationID uint64, preload ...string) (*models.Opportunity, error)

	// FindOwnedForUpdate finds an owned opportunity under a row lock. Must be
	// called inside a transaction.
	FindOwnedForUpdate(id, organizationID uint64) (*models.Opportunity, error)

	// Update persists changes to an opportunity
	Update(opp *models.Opportunity) error

	// List retrieves opportunities with filtering and pagination
	List(filter OpportunityFilter) ([]models.Opportunity, int64, error)

	// ListForSweep returns an organization's opportunities in a status the
	// auto-transition sweep may act on
	ListForSweep(organizationID uint64) ([]models.Opportunity, error)

	// HardDelete physically removes the opportunity and every dependent row,
	// returning the stored image file paths so the caller can clean up disk
	HardDelete(opp *models.Opportunity) ([]string, error)

	// SoftDelete marks the opportunity deleted without removing rows
	SoftDelete(opp *models.Opportunity) error
}

// OpportunityFilter holds filtering options for listing opportunities
type OpportunityFilter struct {
	OrganizationID *uint64
	Statuses       []models.OpportunityStatus
	City           string
	State          string
	Pagination     utils.PaginationParams
}

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	// Upsert inserts an application or, when a row already exists for the
	// (volunteer, opportunity) pair, rewrites it in place
	Upsert(app *models.Application) error

	// FindByID finds an application by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Application, error)

	// FindOwned finds an application whose opportunity belongs to the
	// organization; a join filter, so foreign applications read as not found
	FindOwned(id, organizationID uint64) (*models.Application, error)

	// FindByVolunteerAndOpportunity finds the application for the pair
	FindByVolunteerAndOpportunity(volunteerID, opportunityID uint64) (*models.Application, error)

	// ListByOpportunity lists applications on an opportunity, optionally
	// restricted to the given statuses
	ListByOpportunity(opportunityID uint64, statuses ...models.ApplicationStatus) ([]models.Application, error)

	// ListByVolunteer lists a volunteer's applications
	ListByVolunteer(volunteerID uint64) ([]models.Application, error)

	// ListOwnedByIDs returns the subset of the given applications whose
	// opportunity belongs to the organization
	ListOwnedByIDs(ids []uint64, organizationID uint64) ([]models.Application, error)

	// CountByStatus counts an opportunity's applications in a status
	CountByStatus(opportunityID uint64, status models.ApplicationStatus) (int64, error)

	// Update persists changes to an application
	Update(app *models.Application) error

	// BulkUpdateStatus sets the status and response time on the given rows
	BulkUpdateStatus(ids []uint64, status models.ApplicationStatus, responseAt time.Time) (int64, error)
}

// ParticipationRepository defines the interface for attendance data access
type ParticipationRepository interface {
	// Create creates a participation row
	Create(p *models.Participation) error

	// CreatePendingBulk inserts pending rows for the given volunteers,
	// skipping pairs that already have one
	CreatePendingBulk(opportunityID uint64, volunteerIDs []uint64) error

	// Find finds the participation row for a (volunteer, opportunity) pair
	Find(opportunityID, volunteerID uint64) (*models.Participation, error)

	// ListByOpportunity lists participation rows, optionally by status
	ListByOpportunity(opportunityID uint64, statuses ...models.ParticipationStatus) ([]models.Participation, error)

	// Count counts all participation rows for an opportunity
	Count(opportunityID uint64) (int64, error)

	// CountByStatus counts an opportunity's participation rows in a status
	CountByStatus(opportunityID uint64, status models.ParticipationStatus) (int64, error)

	// CountAttendedByVolunteer counts a volunteer's attended participations
	CountAttendedByVolunteer(volunteerID uint64) (int64, error)

	// Update persists changes to a participation row
	Update(p *models.Participation) error

	// MarkPendingAttended flips every pending row on the opportunity to
	// attended with the given hours, returning how many rows changed
	MarkPendingAttended(opportunityID uint64, hours float64, now time.Time) (int64, error)
}

// ReviewRepository defines the interface for rating data access
type ReviewRepository interface {
	// Find finds the review for a (reviewer, opportunity, reviewee) triple
	Find(reviewerType models.ReviewerType, reviewerID, opportunityID uint64,
		revieweeType models.ReviewerType, revieweeID uint64) (*models.Review, error)

	// Upsert inserts the review or updates the existing row for the triple
	Upsert(review *models.Review) error

	// AverageForReviewee returns the average rating and review count received
	// by a principal across all opportunities
	AverageForReviewee(revieweeType models.ReviewerType, revieweeID uint64) (float64, int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateBatch inserts notification rows
	CreateBatch(notifications []models.Notification) error

	// ListByUser lists a user's notifications, newest first
	ListByUser(userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error)

	// MarkRead marks one of the user's notifications as read
	MarkRead(id, userID uint64) error

	// CountUnread counts a user's unread notifications
	CountUnread(userID uint64) (int64, error)

	// UnreadExists reports whether the user already has an unread notification
	// with the given title for the context row
	UnreadExists(userID uint64, contextType string, contextID uint64, title string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithProfile creates a user and their role profile (volunteer or
	// organization) within a single transaction
	CreateWithProfile(user *models.User, volunteer *models.Volunteer, org *models.Organization) error

	// FindByID finds a user by ID with their role profile preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// VolunteerRepository defines the interface for volunteer profile data access
type VolunteerRepository interface {
	// FindByID finds a volunteer by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Volunteer, error)

	// FindByUserID finds the volunteer profile belonging to a user
	FindByUserID(userID uint64) (*models.Volunteer, error)

	// Update persists profile changes
	Update(v *models.Volunteer) error

	// ReplaceSkills replaces the volunteer's skill associations
	ReplaceSkills(v *models.Volunteer, skills []models.Skill) error

	// ReplaceInterests replaces the volunteer's interest associations
	ReplaceInterests(v *models.Volunteer, interests []models.Interest) error
}
