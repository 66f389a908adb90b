package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"gorm.io/gorm"
)

// LifecycleServiceTestSuite defines the test suite for LifecycleService
type LifecycleServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	notifier *recordingDispatcher
	service  *LifecycleService
	org      models.Organization
}

// SetupTest runs before each test
func (suite *LifecycleServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.notifier = &recordingDispatcher{}
	suite.service = NewLifecycleService(suite.db, suite.notifier, suite.T().TempDir())
	suite.org = createTestOrganization(suite.T(), suite.db, "Helping Hands")
}

func (suite *LifecycleServiceTestSuite) transition(oppID uint64, target models.OpportunityStatus) (*models.Opportunity, error) {
	return suite.service.Transition(TransitionInput{
		OpportunityID:  oppID,
		OrganizationID: suite.org.ID,
		Target:         target,
	})
}

func (suite *LifecycleServiceTestSuite) TestPublishDraft() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusDraft)

	updated, err := suite.transition(opp.ID, models.StatusOpen)
	suite.Require().NoError(err)
	suite.Equal(models.StatusOpen, updated.Status)
	suite.NotNil(updated.PublishedAt)
	suite.Empty(suite.notifier.messages)
}

func (suite *LifecycleServiceTestSuite) TestPublishFromOngoingFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOngoing)

	_, err := suite.transition(opp.ID, models.StatusOpen)
	suite.Require().ErrorIs(err, ErrInvalidTransition)
}

func (suite *LifecycleServiceTestSuite) TestFrozenStatusesRejectEverything() {
	for _, frozen := range []models.OpportunityStatus{models.StatusSuspended, models.StatusDeleted} {
		opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, frozen)

		for _, target := range []models.OpportunityStatus{
			models.StatusOpen, models.StatusClosed, models.StatusCanceled,
			models.StatusCompleted, models.StatusDeleted,
		} {
			_, err := suite.transition(opp.ID, target)
			suite.Require().ErrorIs(err, ErrInvalidTransition, "%s -> %s", frozen, target)
		}
	}
}

func (suite *LifecycleServiceTestSuite) TestNotOwnedReadsAsNotFound() {
	other := createTestOrganization(suite.T(), suite.db, "Another Org")
	opp := createTestOpportunity(suite.T(), suite.db, other.ID, models.StatusDraft)

	_, err := suite.transition(opp.ID, models.StatusOpen)
	suite.Require().ErrorIs(err, ErrOpportunityNotFound)
}

func (suite *LifecycleServiceTestSuite) TestCloseRejectsUndecided() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	pending := createTestVolunteer(suite.T(), suite.db, "Pending Pat")
	shortlisted := createTestVolunteer(suite.T(), suite.db, "Shortlist Sam")
	accepted := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	createTestApplication(suite.T(), suite.db, pending.ID, opp.ID, models.ApplicationPending)
	createTestApplication(suite.T(), suite.db, shortlisted.ID, opp.ID, models.ApplicationShortlisted)
	acceptedApp := createTestApplication(suite.T(), suite.db, accepted.ID, opp.ID, models.ApplicationAccepted)

	updated, err := suite.transition(opp.ID, models.StatusClosed)
	suite.Require().NoError(err)
	suite.Equal(models.StatusClosed, updated.Status)
	suite.NotNil(updated.ClosedAt)

	var statuses []models.ApplicationStatus
	suite.Require().NoError(suite.db.Model(&models.Application{}).
		Where("opportunity_id = ? AND status = ?", opp.ID, models.ApplicationRejected).
		Pluck("status", &statuses).Error)
	suite.Len(statuses, 2)

	var kept models.Application
	suite.Require().NoError(suite.db.First(&kept, acceptedApp.ID).Error)
	suite.Equal(models.ApplicationAccepted, kept.Status)

	// One rejection notice per undecided applicant
	suite.Len(suite.notifier.messages, 2)
}

func (suite *LifecycleServiceTestSuite) TestReopenDoesNotResurrectApplications() {
	closedAt := time.Now().Add(-time.Hour)
	opp := models.Opportunity{
		OrganizationID:      suite.org.ID,
		Title:               "Food Drive",
		Status:              models.StatusClosed,
		ClosedAt:            &closedAt,
		ApplicationDeadline: timePtr(time.Now().Add(-2 * time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	rejected := createTestVolunteer(suite.T(), suite.db, "Rejected Riley")
	withdrawn := createTestVolunteer(suite.T(), suite.db, "Withdrawn Willow")
	rejectedApp := createTestApplication(suite.T(), suite.db, rejected.ID, opp.ID, models.ApplicationRejected)
	withdrawnApp := createTestApplication(suite.T(), suite.db, withdrawn.ID, opp.ID, models.ApplicationWithdrawn)

	updated, err := suite.transition(opp.ID, models.StatusOpen)
	suite.Require().NoError(err)
	suite.Equal(models.StatusOpen, updated.Status)
	suite.Nil(updated.ClosedAt)
	suite.Nil(updated.ApplicationDeadline)

	// Statuses are untouched; the volunteers are only informed.
	var app models.Application
	suite.Require().NoError(suite.db.First(&app, rejectedApp.ID).Error)
	suite.Equal(models.ApplicationRejected, app.Status)
	suite.Require().NoError(suite.db.First(&app, withdrawnApp.ID).Error)
	suite.Equal(models.ApplicationWithdrawn, app.Status)

	suite.Len(suite.notifier.messages, 2)
}

func (suite *LifecycleServiceTestSuite) TestCancelWithAcceptedVolunteersFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationAccepted)

	_, err := suite.transition(opp.ID, models.StatusCanceled)
	suite.Require().ErrorIs(err, ErrInvalidTransition)
}

func (suite *LifecycleServiceTestSuite) TestCancelRejectsAndNotifiesUndecided() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Pending Pat")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationPending)

	updated, err := suite.transition(opp.ID, models.StatusCanceled)
	suite.Require().NoError(err)
	suite.Equal(models.StatusCanceled, updated.Status)

	var reloaded models.Application
	suite.Require().NoError(suite.db.First(&reloaded, app.ID).Error)
	suite.Equal(models.ApplicationRejected, reloaded.Status)

	suite.Len(suite.notifier.messages, 1)
}

func (suite *LifecycleServiceTestSuite) TestCompleteRequiresSettledParticipation() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOngoing)

	// No participation recorded at all
	_, err := suite.transition(opp.ID, models.StatusCompleted)
	suite.Require().ErrorIs(err, ErrInvalidTransition)

	volunteer := createTestVolunteer(suite.T(), suite.db, "Pending Pat")
	p := createTestParticipation(suite.T(), suite.db, volunteer.ID, opp.ID, models.ParticipationPending)

	// Still a pending row
	_, err = suite.transition(opp.ID, models.StatusCompleted)
	suite.Require().ErrorIs(err, ErrInvalidTransition)

	p.Status = models.ParticipationAttended
	suite.Require().NoError(suite.db.Save(&p).Error)

	updated, err := suite.transition(opp.ID, models.StatusCompleted)
	suite.Require().NoError(err)
	suite.Equal(models.StatusCompleted, updated.Status)
	suite.NotNil(updated.CompletedAt)
	suite.Len(suite.notifier.messages, 1)
}

func (suite *LifecycleServiceTestSuite) TestSoftDeleteDraft() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusDraft)

	_, err := suite.transition(opp.ID, models.StatusDeleted)
	suite.Require().NoError(err)

	var count int64
	suite.db.Model(&models.Opportunity{}).Where("id = ?", opp.ID).Count(&count)
	suite.EqualValues(0, count)

	// Row still exists under the soft delete
	suite.db.Unscoped().Model(&models.Opportunity{}).Where("id = ?", opp.ID).Count(&count)
	suite.EqualValues(1, count)
}

func (suite *LifecycleServiceTestSuite) TestSoftDeleteOpenWithApplicationsFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Pending Pat")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationPending)

	_, err := suite.transition(opp.ID, models.StatusDeleted)
	suite.Require().ErrorIs(err, ErrHardDeleteNotConfirmed)
}

func (suite *LifecycleServiceTestSuite) TestHardDeleteRemovesDependentRows() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusClosed)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Rejected Riley")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationRejected)
	suite.Require().NoError(suite.db.Create(&models.OpportunityImage{
		OpportunityID: opp.ID,
		FilePath:      "cover.jpg",
	}).Error)

	_, err := suite.service.Transition(TransitionInput{
		OpportunityID:  opp.ID,
		OrganizationID: suite.org.ID,
		Target:         models.StatusDeleted,
		ConfirmDelete:  true,
	})
	suite.Require().NoError(err)

	var count int64
	suite.db.Unscoped().Model(&models.Opportunity{}).Where("id = ?", opp.ID).Count(&count)
	suite.EqualValues(0, count)
	suite.db.Unscoped().Model(&models.Application{}).Where("opportunity_id = ?", opp.ID).Count(&count)
	suite.EqualValues(0, count)
	suite.db.Model(&models.OpportunityImage{}).Where("opportunity_id = ?", opp.ID).Count(&count)
	suite.EqualValues(0, count)
}

func (suite *LifecycleServiceTestSuite) TestHardDeleteWithHistoryFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusClosed)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationAccepted)

	_, err := suite.service.Transition(TransitionInput{
		OpportunityID:  opp.ID,
		OrganizationID: suite.org.ID,
		Target:         models.StatusDeleted,
		ConfirmDelete:  true,
	})
	suite.Require().ErrorIs(err, ErrInvalidTransition)
}

func (suite *LifecycleServiceTestSuite) TestSweepStartsElapsedOpportunity() {
	opp := models.Opportunity{
		OrganizationID: suite.org.ID,
		Title:          "Beach Cleanup",
		Status:         models.StatusOpen,
		StartDate:      timePtr(time.Now().Add(-24 * time.Hour)),
		EndDate:        timePtr(time.Now().Add(24 * time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationAccepted)

	suite.Require().NoError(suite.service.Sweep(suite.org.ID))

	var reloaded models.Opportunity
	suite.Require().NoError(suite.db.First(&reloaded, opp.ID).Error)
	suite.Equal(models.StatusOngoing, reloaded.Status)

	// Running again changes nothing
	suite.Require().NoError(suite.service.Sweep(suite.org.ID))
	suite.Require().NoError(suite.db.First(&reloaded, opp.ID).Error)
	suite.Equal(models.StatusOngoing, reloaded.Status)
	suite.Empty(suite.notifier.messages)
}

func (suite *LifecycleServiceTestSuite) TestSweepCompletesEndedOpportunity() {
	opp := models.Opportunity{
		OrganizationID: suite.org.ID,
		Title:          "Winter Shelter Shift",
		Status:         models.StatusOngoing,
		StartDate:      timePtr(time.Now().Add(-48 * time.Hour)),
		EndDate:        timePtr(time.Now().Add(-24 * time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	volunteer := createTestVolunteer(suite.T(), suite.db, "Attended Avery")
	createTestParticipation(suite.T(), suite.db, volunteer.ID, opp.ID, models.ParticipationAttended)

	suite.Require().NoError(suite.service.Sweep(suite.org.ID))

	var reloaded models.Opportunity
	suite.Require().NoError(suite.db.First(&reloaded, opp.ID).Error)
	suite.Equal(models.StatusCompleted, reloaded.Status)
	suite.NotNil(reloaded.CompletedAt)

	// Date-driven completion invites feedback just like the manual transition
	suite.Require().Len(suite.notifier.messages, 1)
	suite.Equal(volunteer.UserID, suite.notifier.messages[0].UserID)
	suite.Equal("Opportunity completed", suite.notifier.messages[0].Title)
}

func (suite *LifecycleServiceTestSuite) TestSweepWarnsWhenNobodyAccepted() {
	opp := models.Opportunity{
		OrganizationID: suite.org.ID,
		Title:          "Park Mural",
		Status:         models.StatusOpen,
		StartDate:      timePtr(time.Now().Add(-24 * time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	suite.Require().NoError(suite.service.Sweep(suite.org.ID))

	// Status is held so cancel remains a legal transition
	var reloaded models.Opportunity
	suite.Require().NoError(suite.db.First(&reloaded, opp.ID).Error)
	suite.Equal(models.StatusOpen, reloaded.Status)

	suite.Require().Len(suite.notifier.messages, 1)
	suite.Equal(suite.org.UserID, suite.notifier.messages[0].UserID)
	suite.Equal(models.RoleOrganization, suite.notifier.messages[0].RoleTarget)
}

func (suite *LifecycleServiceTestSuite) TestSweepWarningNotRepeated() {
	opp := models.Opportunity{
		OrganizationID: suite.org.ID,
		Title:          "Park Mural",
		Status:         models.StatusOpen,
		StartDate:      timePtr(time.Now().Add(-24 * time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	// A persisting dispatcher, so the warning lands in the inbox the
	// dedupe check reads
	service := NewLifecycleService(suite.db, notifications.NewDBDispatcher(suite.db), suite.T().TempDir())

	suite.Require().NoError(service.Sweep(suite.org.ID))
	suite.Require().NoError(service.Sweep(suite.org.ID))

	countWarnings := func() int64 {
		var count int64
		suite.db.Model(&models.Notification{}).
			Where("user_id = ? AND title = ?", suite.org.UserID, "No volunteers accepted").
			Count(&count)
		return count
	}
	suite.EqualValues(1, countWarnings())

	// Once the organization has read the warning, a later sweep may warn again
	suite.Require().NoError(suite.db.Model(&models.Notification{}).
		Where("user_id = ?", suite.org.UserID).
		Update("is_read", true).Error)

	suite.Require().NoError(service.Sweep(suite.org.ID))
	suite.EqualValues(2, countWarnings())
}

func TestLifecycleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleServiceTestSuite))
}
