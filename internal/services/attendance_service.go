package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/volunhub/volunteer-api/internal/constants"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"github.com/volunhub/volunteer-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAttendanceLocked  = errors.New("attendance records are locked for this opportunity")
	ErrAttendanceNotOpen = errors.New("attendance cannot be recorded before the opportunity starts")
	ErrHoursRequired     = errors.New("hours worked is required for this status")
	ErrHoursOutOfRange   = errors.New("hours worked is outside the possible range")
	ErrReasonRequired    = errors.New("a reason is required for this status")
	ErrInvalidReason     = errors.New("unknown absence reason")
	ErrInvalidStatus     = errors.New("unknown participation status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrRatingNotAllowed  = errors.New("rating requires an attended or incomplete participation")
	ErrNoVolunteerIDs    = errors.New("at least one volunteer ID is required")
)

// AttendanceService is the attendance ledger: per-volunteer participation
// status, hours, reasons, feedback, and the mutual ratings that follow. All
// writes are gated by the post-completion grace-period lock.
type AttendanceService struct {
	db       *gorm.DB
	notifier notifications.Dispatcher
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(db *gorm.DB, notifier notifications.Dispatcher) *AttendanceService {
	return &AttendanceService{db: db, notifier: notifier}
}

// AttendanceInput represents one volunteer's attendance update
type AttendanceInput struct {
	OpportunityID  uint64
	OrganizationID uint64
	VolunteerID    uint64
	Status         models.ParticipationStatus
	HoursWorked    *float64
	Reason         models.AbsenceReason
	Feedback       string
}

// Update records one volunteer's participation, updating the existing row in
// place or inserting it. Fails with ErrAttendanceLocked once the grace period
// after the opportunity's end has expired.
func (s *AttendanceService) Update(input AttendanceInput) (*models.Participation, error) {
	var (
		participation *models.Participation
		msgs          []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		opp, err := s.writableOpportunity(tx, input.OpportunityID, input.OrganizationID)
		if err != nil {
			return err
		}

		if err := validateAttendance(opp, input.Status, input.HoursWorked, input.Reason); err != nil {
			return err
		}

		partRepo := repository.NewParticipationRepository(tx)
		now := time.Now()

		participation, err = partRepo.Find(input.OpportunityID, input.VolunteerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find participation: %w", err)
			}
			participation = &models.Participation{
				VolunteerID:   input.VolunteerID,
				OpportunityID: input.OpportunityID,
			}
		}

		applyAttendance(participation, input, now)

		if participation.ID == 0 {
			err = partRepo.Create(participation)
		} else {
			err = partRepo.Update(participation)
		}
		if err != nil {
			return fmt.Errorf("failed to save participation: %w", err)
		}

		volunteer, err := repository.NewVolunteerRepository(tx).FindByID(input.VolunteerID)
		if err != nil {
			return fmt.Errorf("failed to find volunteer: %w", err)
		}
		msgs = append(msgs, attendanceMessage(*volunteer, opp, input))

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(msgs...)
	return participation, nil
}

// BulkAttendanceInput represents one status applied to many volunteers
type BulkAttendanceInput struct {
	OpportunityID  uint64
	OrganizationID uint64
	VolunteerIDs   []uint64
	Status         models.ParticipationStatus
	HoursWorked    *float64
	Reason         models.AbsenceReason
	Feedback       string
}

// BulkResult tallies a non-atomic bulk attendance write
type BulkResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BulkUpdate applies one validated status/hours/reason to a list of
// volunteers. Each row is its own transaction: rows already written stay
// written when a later one fails, and the tally reports both counts.
func (s *AttendanceService) BulkUpdate(input BulkAttendanceInput) (BulkResult, error) {
	var result BulkResult

	if len(input.VolunteerIDs) == 0 {
		return result, ErrNoVolunteerIDs
	}

	// Window and field validation happen once for the whole batch.
	opp, err := s.writableOpportunity(s.db, input.OpportunityID, input.OrganizationID)
	if err != nil {
		return result, err
	}
	if err := validateAttendance(opp, input.Status, input.HoursWorked, input.Reason); err != nil {
		return result, err
	}

	for _, volunteerID := range input.VolunteerIDs {
		_, err := s.Update(AttendanceInput{
			OpportunityID:  input.OpportunityID,
			OrganizationID: input.OrganizationID,
			VolunteerID:    volunteerID,
			Status:         input.Status,
			HoursWorked:    input.HoursWorked,
			Reason:         input.Reason,
			Feedback:       input.Feedback,
		})
		if err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	return result, nil
}

// MarkAllPendingAttended flips every still-pending volunteer on the
// opportunity to attended with one default hours value. Volunteers already in
// a terminal status are untouched, so re-running is harmless.
func (s *AttendanceService) MarkAllPendingAttended(opportunityID, organizationID uint64, hours float64) (int64, error) {
	var (
		affected int64
		msgs     []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		opp, err := s.writableOpportunity(tx, opportunityID, organizationID)
		if err != nil {
			return err
		}

		if hours < 0 || hours > opp.TotalPossibleHours(constants.DefaultFlexibleHours) {
			return ErrHoursOutOfRange
		}

		partRepo := repository.NewParticipationRepository(tx)

		pending, err := partRepo.ListByOpportunity(opportunityID, models.ParticipationPending)
		if err != nil {
			return fmt.Errorf("failed to list pending participations: %w", err)
		}

		now := time.Now()
		affected, err = partRepo.MarkPendingAttended(opportunityID, hours, now)
		if err != nil {
			return fmt.Errorf("failed to mark attendance: %w", err)
		}

		for _, p := range pending {
			msgs = append(msgs, volunteerMessage(p.Volunteer, opp,
				"Attendance recorded",
				fmt.Sprintf("You were marked attended for %q with %.1f hours.", opp.Title, hours),
				models.NotificationSuccess))
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifier.Dispatch(msgs...)
	return affected, nil
}

// RateInput represents a rating in either direction for one opportunity
type RateInput struct {
	OpportunityID uint64
	ReviewerType  models.ReviewerType
	ReviewerID    uint64
	RevieweeType  models.ReviewerType
	RevieweeID    uint64
	Rating        int
	Comment       string
}

// Rate upserts a review for the (reviewer, opportunity, reviewee) triple. The
// subject volunteer's participation must be attended or incomplete. A
// resubmission with the same rating value updates the comment quietly; a
// changed value notifies the reviewee again.
func (s *AttendanceService) Rate(input RateInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var (
		review *models.Review
		msgs   []notifications.Message
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		partRepo := repository.NewParticipationRepository(tx)
		reviewRepo := repository.NewReviewRepository(tx)

		// The participation that licenses the rating is the volunteer's,
		// whichever direction the review goes.
		volunteerID := input.RevieweeID
		if input.RevieweeType == models.ReviewerOrganization {
			volunteerID = input.ReviewerID
		}

		participation, err := partRepo.Find(input.OpportunityID, volunteerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRatingNotAllowed
			}
			return fmt.Errorf("failed to find participation: %w", err)
		}
		if participation.Status != models.ParticipationAttended &&
			participation.Status != models.ParticipationIncomplete {
			return ErrRatingNotAllowed
		}

		existing, err := reviewRepo.Find(input.ReviewerType, input.ReviewerID,
			input.OpportunityID, input.RevieweeType, input.RevieweeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find review: %w", err)
		}

		review = &models.Review{
			ReviewerType:  input.ReviewerType,
			ReviewerID:    input.ReviewerID,
			OpportunityID: input.OpportunityID,
			RevieweeType:  input.RevieweeType,
			RevieweeID:    input.RevieweeID,
			Rating:        input.Rating,
			Comment:       input.Comment,
		}
		if err := reviewRepo.Upsert(review); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		// An unchanged rating value on a resubmission suppresses the
		// duplicate notification.
		if existing != nil && existing.Rating == input.Rating {
			return nil
		}

		msg, err := ratingMessage(tx, input)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(msgs...)
	return review, nil
}

// writableOpportunity loads the owned opportunity and enforces the attendance
// window: ongoing, time-flexible, or completed within the grace period.
func (s *AttendanceService) writableOpportunity(tx *gorm.DB, opportunityID, organizationID uint64) (*models.Opportunity, error) {
	oppRepo := repository.NewOpportunityRepository(tx)

	opp, err := oppRepo.FindOwned(opportunityID, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}

	if opp.IsTimeFlexible() {
		return opp, nil
	}

	if end := opp.EndMoment(); end != nil && time.Now().After(end.Add(constants.AttendanceGracePeriod)) {
		return nil, ErrAttendanceLocked
	}

	if opp.Status != models.StatusOngoing && opp.Status != models.StatusCompleted {
		return nil, ErrAttendanceNotOpen
	}

	return opp, nil
}

// validateAttendance enforces the per-status field rules shared by single and
// bulk updates.
func validateAttendance(opp *models.Opportunity, status models.ParticipationStatus, hours *float64, reason models.AbsenceReason) error {
	maxHours := opp.TotalPossibleHours(constants.DefaultFlexibleHours)

	switch status {
	case models.ParticipationAttended:
		if hours == nil {
			return ErrHoursRequired
		}
		if *hours < 0 || *hours > maxHours {
			return ErrHoursOutOfRange
		}
	case models.ParticipationAbsent:
		if reason == "" {
			return ErrReasonRequired
		}
		if !models.ValidAbsenceReason(reason) {
			return ErrInvalidReason
		}
	case models.ParticipationIncomplete:
		if reason == "" {
			return ErrReasonRequired
		}
		if !models.ValidAbsenceReason(reason) {
			return ErrInvalidReason
		}
		if hours == nil {
			return ErrHoursRequired
		}
		if *hours < 0 || *hours > maxHours {
			return ErrHoursOutOfRange
		}
	case models.ParticipationPending:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return nil
}

func applyAttendance(p *models.Participation, input AttendanceInput, now time.Time) {
	p.Status = input.Status
	p.Feedback = input.Feedback
	p.ParticipatedAt = &now

	switch input.Status {
	case models.ParticipationAttended:
		p.HoursWorked = input.HoursWorked
		p.Reason = ""
	case models.ParticipationAbsent:
		p.HoursWorked = nil
		p.Reason = input.Reason
	case models.ParticipationIncomplete:
		p.HoursWorked = input.HoursWorked
		p.Reason = input.Reason
	}
}

func attendanceMessage(v models.Volunteer, opp *models.Opportunity, input AttendanceInput) notifications.Message {
	body := fmt.Sprintf("Your participation in %q was recorded as %s.", opp.Title, input.Status)
	if input.HoursWorked != nil &&
		(input.Status == models.ParticipationAttended || input.Status == models.ParticipationIncomplete) {
		body = fmt.Sprintf("Your participation in %q was recorded as %s with %.1f hours.",
			opp.Title, input.Status, *input.HoursWorked)
	}

	t := models.NotificationSuccess
	if input.Status == models.ParticipationAbsent {
		t = models.NotificationWarning
	}

	return volunteerMessage(v, opp, "Attendance recorded", body, t)
}

func ratingMessage(tx *gorm.DB, input RateInput) (notifications.Message, error) {
	title := "New rating received"
	body := fmt.Sprintf("You received a %d-star rating.", input.Rating)

	if input.RevieweeType == models.ReviewerVolunteer {
		volunteer, err := repository.NewVolunteerRepository(tx).FindByID(input.RevieweeID)
		if err != nil {
			return notifications.Message{}, fmt.Errorf("failed to find volunteer: %w", err)
		}
		return notifications.Message{
			UserID:      volunteer.UserID,
			RoleTarget:  models.RoleVolunteer,
			Title:       title,
			Body:        body,
			Type:        models.NotificationInfo,
			ActionPath:  fmt.Sprintf("/opportunities/%d", input.OpportunityID),
			ContextType: "review",
			ContextID:   input.OpportunityID,
			ActorID:     input.ReviewerID,
		}, nil
	}

	var org models.Organization
	if err := tx.First(&org, input.RevieweeID).Error; err != nil {
		return notifications.Message{}, fmt.Errorf("failed to find organization: %w", err)
	}
	return notifications.Message{
		UserID:      org.UserID,
		RoleTarget:  models.RoleOrganization,
		Title:       title,
		Body:        body,
		Type:        models.NotificationInfo,
		ActionPath:  fmt.Sprintf("/opportunities/%d", input.OpportunityID),
		ContextType: "review",
		ContextID:   input.OpportunityID,
		ActorID:     input.ReviewerID,
	}, nil
}
