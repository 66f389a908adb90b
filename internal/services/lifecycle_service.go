package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"github.com/volunhub/volunteer-api/internal/repository"
	"github.com/volunhub/volunteer-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOpportunityNotFound    = errors.New("opportunity not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrHardDeleteNotConfirmed = errors.New("hard delete requires explicit confirmation")
)

// LifecycleService owns the opportunity status state machine: it validates
// transitions, applies their cascading effects inside one transaction, and
// dispatches notifications only after commit.
type LifecycleService struct {
	db        *gorm.DB
	notifier  notifications.Dispatcher
	uploadDir string
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(db *gorm.DB, notifier notifications.Dispatcher, uploadDir string) *LifecycleService {
	return &LifecycleService{db: db, notifier: notifier, uploadDir: uploadDir}
}

// TransitionInput represents a requested status change
type TransitionInput struct {
	OpportunityID  uint64
	OrganizationID uint64
	Target         models.OpportunityStatus

	// ConfirmDelete distinguishes a guarded hard delete from a soft delete
	// when Target is StatusDeleted.
	ConfirmDelete bool
}

// Transition validates and executes a status change. The opportunity row is
// re-fetched under a row lock before the guard runs, so two concurrent
// requests cannot both pass a stale precondition.
func (s *LifecycleService) Transition(input TransitionInput) (*models.Opportunity, error) {
	var (
		opp        *models.Opportunity
		msgs       []notifications.Message
		imagePaths []string
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		oppRepo := repository.NewOpportunityRepository(tx)

		var err error
		opp, err = oppRepo.FindOwnedForUpdate(input.OpportunityID, input.OrganizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOpportunityNotFound
			}
			return fmt.Errorf("failed to find opportunity: %w", err)
		}

		// deleted and suspended are frozen: nothing transitions out of them
		if opp.Status == models.StatusDeleted || opp.Status == models.StatusSuspended {
			return fmt.Errorf("%w: %s is frozen", ErrInvalidTransition, opp.Status)
		}

		switch input.Target {
		case models.StatusOpen:
			msgs, err = s.toOpen(tx, opp)
		case models.StatusClosed:
			msgs, err = s.toClosed(tx, opp)
		case models.StatusCanceled:
			msgs, err = s.toCanceled(tx, opp)
		case models.StatusCompleted:
			msgs, err = s.toCompleted(tx, opp)
		case models.StatusDeleted:
			imagePaths, msgs, err = s.toDeleted(tx, opp, input.ConfirmDelete)
		default:
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, input.Target)
		}
		if err != nil {
			return err
		}

		if opp.Status != models.StatusDeleted {
			return oppRepo.Update(opp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Image assets are removed only after the delete has committed; a failure
	// here leaves orphan files, not broken rows.
	if len(imagePaths) > 0 {
		if err := utils.RemoveImageFiles(s.uploadDir, imagePaths); err != nil {
			log.Printf("image cleanup after hard delete of opportunity %d: %v", input.OpportunityID, err)
		}
	}

	s.notifier.Dispatch(msgs...)
	return opp, nil
}

// toOpen handles publish (draft -> open) and reopen (closed -> open).
func (s *LifecycleService) toOpen(tx *gorm.DB, opp *models.Opportunity) ([]notifications.Message, error) {
	now := time.Now()

	switch opp.Status {
	case models.StatusDraft:
		opp.Status = models.StatusOpen
		opp.PublishedAt = &now
		return nil, nil

	case models.StatusClosed:
		opp.Status = models.StatusOpen
		opp.ClosedAt = nil
		opp.ApplicationDeadline = nil

		// Prior rejected/withdrawn applications are not resurrected; the
		// volunteers are only told the opportunity is taking applications
		// again.
		appRepo := repository.NewApplicationRepository(tx)
		apps, err := appRepo.ListByOpportunity(opp.ID,
			models.ApplicationRejected, models.ApplicationWithdrawn)
		if err != nil {
			return nil, fmt.Errorf("failed to list prior applications: %w", err)
		}

		msgs := make([]notifications.Message, 0, len(apps))
		for _, app := range apps {
			msgs = append(msgs, volunteerMessage(app.Volunteer, opp,
				"Opportunity reopened",
				fmt.Sprintf("%q is accepting applications again. You may apply anew.", opp.Title),
				models.NotificationInfo))
		}
		return msgs, nil
	}

	return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, models.StatusOpen)
}

// toClosed closes applications and rejects everything still undecided.
func (s *LifecycleService) toClosed(tx *gorm.DB, opp *models.Opportunity) ([]notifications.Message, error) {
	if opp.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, models.StatusClosed)
	}

	now := time.Now()
	opp.Status = models.StatusClosed
	opp.ClosedAt = &now

	rejected, err := rejectUndecided(tx, opp.ID, now)
	if err != nil {
		return nil, err
	}

	msgs := make([]notifications.Message, 0, len(rejected))
	for _, app := range rejected {
		msgs = append(msgs, volunteerMessage(app.Volunteer, opp,
			"Application not selected",
			fmt.Sprintf("%q has closed applications and your application was not selected.", opp.Title),
			models.NotificationWarning))
	}
	return msgs, nil
}

// toCanceled cancels an open or closed opportunity with no accepted volunteers.
func (s *LifecycleService) toCanceled(tx *gorm.DB, opp *models.Opportunity) ([]notifications.Message, error) {
	if opp.Status != models.StatusOpen && opp.Status != models.StatusClosed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, models.StatusCanceled)
	}

	appRepo := repository.NewApplicationRepository(tx)
	accepted, err := appRepo.CountByStatus(opp.ID, models.ApplicationAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted applications: %w", err)
	}
	if accepted > 0 {
		return nil, fmt.Errorf("%w: cannot cancel with %d accepted volunteer(s)", ErrInvalidTransition, accepted)
	}

	now := time.Now()
	opp.Status = models.StatusCanceled

	// Collect everyone to notify before the undecided rows are rewritten.
	affected, err := appRepo.ListByOpportunity(opp.ID,
		models.ApplicationAccepted, models.ApplicationPending, models.ApplicationShortlisted)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	if _, err := rejectUndecided(tx, opp.ID, now); err != nil {
		return nil, err
	}

	msgs := make([]notifications.Message, 0, len(affected))
	for _, app := range affected {
		msgs = append(msgs, volunteerMessage(app.Volunteer, opp,
			"Opportunity canceled",
			fmt.Sprintf("%q has been canceled by the organization.", opp.Title),
			models.NotificationWarning))
	}
	return msgs, nil
}

// toCompleted completes an ongoing opportunity once attendance is settled.
func (s *LifecycleService) toCompleted(tx *gorm.DB, opp *models.Opportunity) ([]notifications.Message, error) {
	if opp.Status != models.StatusOngoing {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, models.StatusCompleted)
	}

	partRepo := repository.NewParticipationRepository(tx)

	total, err := partRepo.Count(opp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participations: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no participation recorded yet", ErrInvalidTransition)
	}

	pending, err := partRepo.CountByStatus(opp.ID, models.ParticipationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending participations: %w", err)
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d participation record(s) still pending", ErrInvalidTransition, pending)
	}

	now := time.Now()
	opp.Status = models.StatusCompleted
	opp.CompletedAt = &now

	return completionMessages(tx, opp)
}

// completionMessages invites every volunteer with a settled participation to
// rate the organization. Shared by the manual complete transition and the
// date-driven sweep.
func completionMessages(tx *gorm.DB, opp *models.Opportunity) ([]notifications.Message, error) {
	partRepo := repository.NewParticipationRepository(tx)

	participations, err := partRepo.ListByOpportunity(opp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	msgs := make([]notifications.Message, 0, len(participations))
	for i := range participations {
		if !participations[i].Terminal() {
			continue
		}
		msgs = append(msgs, volunteerMessage(participations[i].Volunteer, opp,
			"Opportunity completed",
			fmt.Sprintf("%q is complete. You can now rate the organization and leave feedback.", opp.Title),
			models.NotificationSuccess))
	}
	return msgs, nil
}

// toDeleted soft deletes, or hard deletes with the confirmation flag set.
func (s *LifecycleService) toDeleted(tx *gorm.DB, opp *models.Opportunity, confirm bool) ([]string, []notifications.Message, error) {
	oppRepo := repository.NewOpportunityRepository(tx)
	appRepo := repository.NewApplicationRepository(tx)
	partRepo := repository.NewParticipationRepository(tx)

	if confirm {
		// Hard delete: irreversible, so it demands zero accepted applications
		// and zero participation rows regardless of status.
		accepted, err := appRepo.CountByStatus(opp.ID, models.ApplicationAccepted)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count accepted applications: %w", err)
		}
		participations, err := partRepo.Count(opp.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count participations: %w", err)
		}
		if accepted > 0 || participations > 0 {
			return nil, nil, fmt.Errorf("%w: opportunity has accepted volunteers or participation history", ErrInvalidTransition)
		}

		paths, err := oppRepo.HardDelete(opp)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hard delete opportunity: %w", err)
		}
		opp.Status = models.StatusDeleted
		return paths, nil, nil
	}

	// Soft delete is only allowed from draft, canceled, or an open
	// opportunity nobody has applied to.
	allowed := opp.Status == models.StatusDraft || opp.Status == models.StatusCanceled
	if !allowed && opp.Status == models.StatusOpen {
		apps, err := appRepo.ListByOpportunity(opp.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list applications: %w", err)
		}
		allowed = len(apps) == 0
	}
	if !allowed {
		// Anything with applicants or history only goes away through a
		// confirmed hard delete.
		return nil, nil, fmt.Errorf("%w: opportunity is %s", ErrHardDeleteNotConfirmed, opp.Status)
	}

	if err := oppRepo.SoftDelete(opp); err != nil {
		return nil, nil, fmt.Errorf("failed to delete opportunity: %w", err)
	}
	opp.Status = models.StatusDeleted
	return nil, nil, nil
}

// Sweep auto-transitions the organization's opportunities whose scheduled
// dates have elapsed: open/closed move to ongoing once started, ongoing moves
// to completed once ended. Opportunities that reached their start with zero
// accepted volunteers are flagged to the organization for cancellation
// instead, which keeps the cancel transition legal. Safe to run any number of
// times.
func (s *LifecycleService) Sweep(organizationID uint64) error {
	var msgs []notifications.Message

	err := s.db.Transaction(func(tx *gorm.DB) error {
		oppRepo := repository.NewOpportunityRepository(tx)
		appRepo := repository.NewApplicationRepository(tx)
		notifRepo := repository.NewNotificationRepository(tx)

		opps, err := oppRepo.ListForSweep(organizationID)
		if err != nil {
			return fmt.Errorf("failed to list opportunities for sweep: %w", err)
		}

		now := time.Now()
		for i := range opps {
			opp := &opps[i]

			switch opp.Status {
			case models.StatusOpen, models.StatusClosed:
				start := opp.StartMoment()
				if start == nil || now.Before(*start) {
					continue
				}

				accepted, err := appRepo.CountByStatus(opp.ID, models.ApplicationAccepted)
				if err != nil {
					return fmt.Errorf("failed to count accepted applications: %w", err)
				}
				if accepted == 0 {
					// Warn once per flagging; an unread copy in the inbox
					// keeps redundant sweeps quiet.
					warning := organizationMessage(opp,
						"No volunteers accepted",
						fmt.Sprintf("%q reached its start date with no accepted volunteers. Consider canceling it.", opp.Title),
						models.NotificationWarning)
					pending, err := notifRepo.UnreadExists(warning.UserID, warning.ContextType, warning.ContextID, warning.Title)
					if err != nil {
						return fmt.Errorf("failed to check for existing warning: %w", err)
					}
					if !pending {
						msgs = append(msgs, warning)
					}
					continue
				}

				opp.Status = models.StatusOngoing
				if err := oppRepo.Update(opp); err != nil {
					return fmt.Errorf("failed to start opportunity: %w", err)
				}

			case models.StatusOngoing:
				end := opp.EndMoment()
				if end == nil || now.Before(*end) {
					continue
				}

				opp.Status = models.StatusCompleted
				opp.CompletedAt = &now
				if err := oppRepo.Update(opp); err != nil {
					return fmt.Errorf("failed to complete opportunity: %w", err)
				}

				completed, err := completionMessages(tx, opp)
				if err != nil {
					return err
				}
				msgs = append(msgs, completed...)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(msgs...)
	return nil
}

// rejectUndecided rewrites every pending/shortlisted application on the
// opportunity to rejected with the response stamped, returning the affected
// rows with volunteers preloaded.
func rejectUndecided(tx *gorm.DB, opportunityID uint64, now time.Time) ([]models.Application, error) {
	appRepo := repository.NewApplicationRepository(tx)

	undecided, err := appRepo.ListByOpportunity(opportunityID,
		models.ApplicationPending, models.ApplicationShortlisted)
	if err != nil {
		return nil, fmt.Errorf("failed to list undecided applications: %w", err)
	}
	if len(undecided) == 0 {
		return nil, nil
	}

	ids := make([]uint64, len(undecided))
	for i, app := range undecided {
		ids[i] = app.ID
	}

	if _, err := appRepo.BulkUpdateStatus(ids, models.ApplicationRejected, now); err != nil {
		return nil, fmt.Errorf("failed to reject applications: %w", err)
	}

	return undecided, nil
}

func volunteerMessage(v models.Volunteer, opp *models.Opportunity, title, body string, t models.NotificationType) notifications.Message {
	return notifications.Message{
		UserID:      v.UserID,
		RoleTarget:  models.RoleVolunteer,
		Title:       title,
		Body:        body,
		Type:        t,
		ActionPath:  fmt.Sprintf("/opportunities/%d", opp.ID),
		ContextType: "opportunity",
		ContextID:   opp.ID,
		ActorID:     opp.OrganizationID,
	}
}

func organizationMessage(opp *models.Opportunity, title, body string, t models.NotificationType) notifications.Message {
	return notifications.Message{
		UserID:      opp.Organization.UserID,
		RoleTarget:  models.RoleOrganization,
		Title:       title,
		Body:        body,
		Type:        t,
		ActionPath:  fmt.Sprintf("/opportunities/%d", opp.ID),
		ContextType: "opportunity",
		ContextID:   opp.ID,
	}
}
