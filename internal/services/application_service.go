package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"github.com/volunhub/volunteer-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidAction       = errors.New("unknown review action")
	ErrCapacityExceeded    = errors.New("all volunteer slots are full")
	ErrApplicationsClosed  = errors.New("opportunity is not accepting applications")
	ErrAlreadyApplied      = errors.New("an active application already exists")
	ErrNoApplicationIDs    = errors.New("at least one application ID is required")
)

// DecisionAction is an organization's review decision on an application.
type DecisionAction string

const (
	ActionAccept    DecisionAction = "accept"
	ActionShortlist DecisionAction = "shortlist"
	ActionReject    DecisionAction = "reject"
)

// ParseDecisionAction validates an action token from a request.
func ParseDecisionAction(s string) (DecisionAction, error) {
	switch DecisionAction(s) {
	case ActionAccept, ActionShortlist, ActionReject:
		return DecisionAction(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

func (a DecisionAction) status() models.ApplicationStatus {
	switch a {
	case ActionAccept:
		return models.ApplicationAccepted
	case ActionShortlist:
		return models.ApplicationShortlisted
	default:
		return models.ApplicationRejected
	}
}

// ApplicationService handles the application review workflow: volunteer
// submissions and the organization's single and bulk decisions.
type ApplicationService struct {
	db       *gorm.DB
	notifier notifications.Dispatcher
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(db *gorm.DB, notifier notifications.Dispatcher) *ApplicationService {
	return &ApplicationService{db: db, notifier: notifier}
}

// DecideInput represents a single review decision
type DecideInput struct {
	ApplicationID  uint64
	OrganizationID uint64
	Action         DecisionAction
}

// Decide applies one review decision. For accept, the opportunity row is
// locked and the capacity re-checked inside the same transaction as the
// status update, closing the race between two concurrent accepts.
func (s *ApplicationService) Decide(input DecideInput) (*models.Application, error) {
	var (
		app  *models.Application
		msgs []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		appRepo := repository.NewApplicationRepository(tx)
		oppRepo := repository.NewOpportunityRepository(tx)

		var err error
		app, err = appRepo.FindOwned(input.ApplicationID, input.OrganizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to find application: %w", err)
		}

		opp, err := oppRepo.FindOwnedForUpdate(app.OpportunityID, input.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to lock opportunity: %w", err)
		}

		now := time.Now()

		if input.Action == ActionAccept && app.Status != models.ApplicationAccepted {
			if err := ensureCapacity(appRepo, opp, 1); err != nil {
				return err
			}
		}

		app.Status = input.Action.status()
		app.ResponseAt = &now
		if err := appRepo.Update(app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		if input.Action == ActionAccept {
			partRepo := repository.NewParticipationRepository(tx)
			if err := partRepo.CreatePendingBulk(opp.ID, []uint64{app.VolunteerID}); err != nil {
				return fmt.Errorf("failed to create participation: %w", err)
			}
		}

		volunteer, err := repository.NewVolunteerRepository(tx).FindByID(app.VolunteerID)
		if err != nil {
			return fmt.Errorf("failed to find volunteer: %w", err)
		}
		msgs = append(msgs, decisionMessage(*volunteer, opp, input.Action))

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(msgs...)
	return app, nil
}

// BulkDecideInput represents a bulk review decision
type BulkDecideInput struct {
	ApplicationIDs []uint64
	OrganizationID uint64
	Action         DecisionAction
}

// BulkDecide applies one decision to many applications in a single
// transaction. Applications outside the organization's ownership are silently
// excluded by the join filter rather than failing the batch. Bulk accept
// enforces capacity per opportunity under the same row lock as single accept;
// a batch that would overflow is rejected whole.
func (s *ApplicationService) BulkDecide(input BulkDecideInput) (int64, error) {
	if len(input.ApplicationIDs) == 0 {
		return 0, ErrNoApplicationIDs
	}

	var (
		affected int64
		msgs     []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		appRepo := repository.NewApplicationRepository(tx)
		oppRepo := repository.NewOpportunityRepository(tx)
		partRepo := repository.NewParticipationRepository(tx)

		apps, err := appRepo.ListOwnedByIDs(input.ApplicationIDs, input.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to scope applications: %w", err)
		}
		if len(apps) == 0 {
			return nil
		}

		byOpportunity := make(map[uint64][]models.Application)
		for _, app := range apps {
			byOpportunity[app.OpportunityID] = append(byOpportunity[app.OpportunityID], app)
		}

		now := time.Now()
		ids := make([]uint64, 0, len(apps))

		for oppID, group := range byOpportunity {
			opp, err := oppRepo.FindOwnedForUpdate(oppID, input.OrganizationID)
			if err != nil {
				return fmt.Errorf("failed to lock opportunity: %w", err)
			}

			if input.Action == ActionAccept {
				newlyAccepted := 0
				for _, app := range group {
					if app.Status != models.ApplicationAccepted {
						newlyAccepted++
					}
				}
				if err := ensureCapacity(appRepo, opp, newlyAccepted); err != nil {
					return err
				}
			}

			volunteerIDs := make([]uint64, 0, len(group))
			for _, app := range group {
				ids = append(ids, app.ID)
				volunteerIDs = append(volunteerIDs, app.VolunteerID)
				msgs = append(msgs, decisionMessage(app.Volunteer, opp, input.Action))
			}

			if input.Action == ActionAccept {
				if err := partRepo.CreatePendingBulk(oppID, volunteerIDs); err != nil {
					return fmt.Errorf("failed to create participations: %w", err)
				}
			}
		}

		affected, err = appRepo.BulkUpdateStatus(ids, input.Action.status(), now)
		if err != nil {
			return fmt.Errorf("failed to update applications: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifier.Dispatch(msgs...)
	return affected, nil
}

// ApplyInput represents a volunteer's application submission
type ApplyInput struct {
	VolunteerID   uint64
	OpportunityID uint64
	Message       string
}

// Apply submits (or revives) a volunteer's application to an open
// opportunity. One row exists per (volunteer, opportunity); applying again
// after a withdrawal or rejection rewrites that row back to pending.
func (s *ApplicationService) Apply(input ApplyInput) (*models.Application, error) {
	var (
		app  *models.Application
		msgs []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		oppRepo := repository.NewOpportunityRepository(tx)
		appRepo := repository.NewApplicationRepository(tx)

		opp, err := oppRepo.FindByID(input.OpportunityID, "Organization")
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOpportunityNotFound
			}
			return fmt.Errorf("failed to find opportunity: %w", err)
		}

		now := time.Now()
		if opp.Status != models.StatusOpen {
			return ErrApplicationsClosed
		}
		if opp.ApplicationDeadline != nil && now.After(*opp.ApplicationDeadline) {
			return ErrApplicationsClosed
		}

		existing, err := appRepo.FindByVolunteerAndOpportunity(input.VolunteerID, input.OpportunityID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing application: %w", err)
		}
		if existing != nil &&
			existing.Status != models.ApplicationWithdrawn &&
			existing.Status != models.ApplicationRejected {
			return ErrAlreadyApplied
		}

		app = &models.Application{
			VolunteerID:   input.VolunteerID,
			OpportunityID: input.OpportunityID,
			Status:        models.ApplicationPending,
			Message:       input.Message,
			AppliedAt:     now,
		}
		if err := appRepo.Upsert(app); err != nil {
			return fmt.Errorf("failed to save application: %w", err)
		}

		// On the revive path the upsert conflicts into the existing row, and
		// not every driver reports its primary key back. Reload so the ID is
		// real for the response and the notification below.
		app, err = appRepo.FindByVolunteerAndOpportunity(input.VolunteerID, input.OpportunityID)
		if err != nil {
			return fmt.Errorf("failed to reload application: %w", err)
		}

		volunteer, err := repository.NewVolunteerRepository(tx).FindByID(input.VolunteerID)
		if err != nil {
			return fmt.Errorf("failed to find volunteer: %w", err)
		}

		msgs = append(msgs, notifications.Message{
			UserID:      opp.Organization.UserID,
			RoleTarget:  models.RoleOrganization,
			Title:       "New application",
			Body:        fmt.Sprintf("%s applied to %q.", volunteer.Name, opp.Title),
			Type:        models.NotificationInfo,
			ActionPath:  fmt.Sprintf("/opportunities/%d/applications", opp.ID),
			ContextType: "application",
			ContextID:   app.ID,
			ActorID:     volunteer.UserID,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(msgs...)
	return app, nil
}

// Withdraw lets a volunteer retract their own application. Participation rows
// already created by an acceptance are left in place.
func (s *ApplicationService) Withdraw(applicationID, volunteerID uint64) (*models.Application, error) {
	var app *models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		appRepo := repository.NewApplicationRepository(tx)

		var err error
		app, err = appRepo.FindByID(applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to find application: %w", err)
		}
		if app.VolunteerID != volunteerID {
			return ErrApplicationNotFound
		}

		switch app.Status {
		case models.ApplicationPending, models.ApplicationShortlisted, models.ApplicationAccepted:
		default:
			return fmt.Errorf("%w: application is %s", ErrInvalidAction, app.Status)
		}

		now := time.Now()
		app.Status = models.ApplicationWithdrawn
		app.ResponseAt = &now
		if err := appRepo.Update(app); err != nil {
			return fmt.Errorf("failed to withdraw application: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ensureCapacity fails with ErrCapacityExceeded when accepting additional
// volunteers would exceed the opportunity's slot count. A nil capacity means
// unlimited. Callers must hold the opportunity row lock.
func ensureCapacity(appRepo repository.ApplicationRepository, opp *models.Opportunity, additional int) error {
	if opp.NumberOfVolunteers == nil {
		return nil
	}

	accepted, err := appRepo.CountByStatus(opp.ID, models.ApplicationAccepted)
	if err != nil {
		return fmt.Errorf("failed to count accepted applications: %w", err)
	}

	if accepted+int64(additional) > int64(*opp.NumberOfVolunteers) {
		return ErrCapacityExceeded
	}
	return nil
}

func decisionMessage(v models.Volunteer, opp *models.Opportunity, action DecisionAction) notifications.Message {
	switch action {
	case ActionAccept:
		return volunteerMessage(v, opp,
			"Application accepted",
			fmt.Sprintf("Congratulations! You have been accepted for %q. Check the schedule and contact details on the opportunity page.", opp.Title),
			models.NotificationSuccess)
	case ActionShortlist:
		return volunteerMessage(v, opp,
			"Application shortlisted",
			fmt.Sprintf("Your application to %q has been shortlisted.", opp.Title),
			models.NotificationInfo)
	default:
		return volunteerMessage(v, opp,
			"Application not selected",
			fmt.Sprintf("Your application to %q was not selected.", opp.Title),
			models.NotificationWarning)
	}
}
