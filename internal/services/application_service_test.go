package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
)

// ApplicationServiceTestSuite defines the test suite for ApplicationService
type ApplicationServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	notifier *recordingDispatcher
	service  *ApplicationService
	org      models.Organization
}

// SetupTest runs before each test
func (suite *ApplicationServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.notifier = &recordingDispatcher{}
	suite.service = NewApplicationService(suite.db, suite.notifier)
	suite.org = createTestOrganization(suite.T(), suite.db, "Helping Hands")
}

func (suite *ApplicationServiceTestSuite) decide(appID uint64, action DecisionAction) (*models.Application, error) {
	return suite.service.Decide(DecideInput{
		ApplicationID:  appID,
		OrganizationID: suite.org.ID,
		Action:         action,
	})
}

func (suite *ApplicationServiceTestSuite) TestApply() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Eager Erin")

	app, err := suite.service.Apply(ApplyInput{
		VolunteerID:   volunteer.ID,
		OpportunityID: opp.ID,
		Message:       "I would love to help",
	})
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationPending, app.Status)

	// The organization is told about the new application
	suite.Require().Len(suite.notifier.messages, 1)
	suite.Equal(suite.org.UserID, suite.notifier.messages[0].UserID)
}

func (suite *ApplicationServiceTestSuite) TestApplyToDraftFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusDraft)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Eager Erin")

	_, err := suite.service.Apply(ApplyInput{VolunteerID: volunteer.ID, OpportunityID: opp.ID})
	suite.Require().ErrorIs(err, ErrApplicationsClosed)
}

func (suite *ApplicationServiceTestSuite) TestApplyAfterDeadlineFails() {
	opp := models.Opportunity{
		OrganizationID:      suite.org.ID,
		Title:               "River Cleanup",
		Status:              models.StatusOpen,
		ApplicationDeadline: timePtr(time.Now().Add(-time.Hour)),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Late Lee")

	_, err := suite.service.Apply(ApplyInput{VolunteerID: volunteer.ID, OpportunityID: opp.ID})
	suite.Require().ErrorIs(err, ErrApplicationsClosed)
}

func (suite *ApplicationServiceTestSuite) TestApplyTwiceFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Eager Erin")
	createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationPending)

	_, err := suite.service.Apply(ApplyInput{VolunteerID: volunteer.ID, OpportunityID: opp.ID})
	suite.Require().ErrorIs(err, ErrAlreadyApplied)
}

func (suite *ApplicationServiceTestSuite) TestReapplyRevivesWithdrawnRow() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Returning Remy")
	old := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationWithdrawn)

	app, err := suite.service.Apply(ApplyInput{
		VolunteerID:   volunteer.ID,
		OpportunityID: opp.ID,
		Message:       "second thoughts",
	})
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationPending, app.Status)
	// The revived row keeps its identity, and the caller sees the real ID
	suite.Equal(old.ID, app.ID)

	// Still one row for the pair
	var count int64
	suite.db.Model(&models.Application{}).
		Where("volunteer_id = ? AND opportunity_id = ?", volunteer.ID, opp.ID).
		Count(&count)
	suite.EqualValues(1, count)

	var reloaded models.Application
	suite.Require().NoError(suite.db.First(&reloaded, old.ID).Error)
	suite.Equal(models.ApplicationPending, reloaded.Status)
	suite.Equal("second thoughts", reloaded.Message)
}

func (suite *ApplicationServiceTestSuite) TestAcceptCreatesParticipation() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationPending)

	decided, err := suite.decide(app.ID, ActionAccept)
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationAccepted, decided.Status)
	suite.NotNil(decided.ResponseAt)

	var participation models.Participation
	suite.Require().NoError(suite.db.
		Where("volunteer_id = ? AND opportunity_id = ?", volunteer.ID, opp.ID).
		First(&participation).Error)
	suite.Equal(models.ParticipationPending, participation.Status)

	suite.Require().Len(suite.notifier.messages, 1)
	suite.Equal(volunteer.UserID, suite.notifier.messages[0].UserID)
}

func (suite *ApplicationServiceTestSuite) TestAcceptBeyondCapacityFails() {
	opp := models.Opportunity{
		OrganizationID:     suite.org.ID,
		Title:              "Two-Slot Shift",
		Status:             models.StatusOpen,
		NumberOfVolunteers: intPtr(2),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	var apps []models.Application
	for _, name := range []string{"First", "Second", "Third"} {
		v := createTestVolunteer(suite.T(), suite.db, name)
		apps = append(apps, createTestApplication(suite.T(), suite.db, v.ID, opp.ID, models.ApplicationPending))
	}

	_, err := suite.decide(apps[0].ID, ActionAccept)
	suite.Require().NoError(err)
	_, err = suite.decide(apps[1].ID, ActionAccept)
	suite.Require().NoError(err)

	_, err = suite.decide(apps[2].ID, ActionAccept)
	suite.Require().ErrorIs(err, ErrCapacityExceeded)

	var reloaded models.Application
	suite.Require().NoError(suite.db.First(&reloaded, apps[2].ID).Error)
	suite.Equal(models.ApplicationPending, reloaded.Status)
}

func (suite *ApplicationServiceTestSuite) TestReacceptDoesNotConsumeSlot() {
	opp := models.Opportunity{
		OrganizationID:     suite.org.ID,
		Title:              "One-Slot Shift",
		Status:             models.StatusOpen,
		NumberOfVolunteers: intPtr(1),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Accepted Alex")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationAccepted)

	// Accepting an already-accepted application must not double-count
	_, err := suite.decide(app.ID, ActionAccept)
	suite.Require().NoError(err)
}

func (suite *ApplicationServiceTestSuite) TestDecideForeignApplicationNotFound() {
	other := createTestOrganization(suite.T(), suite.db, "Another Org")
	opp := createTestOpportunity(suite.T(), suite.db, other.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Somebody")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationPending)

	_, err := suite.decide(app.ID, ActionReject)
	suite.Require().ErrorIs(err, ErrApplicationNotFound)
}

func (suite *ApplicationServiceTestSuite) TestBulkDecideSilentlyDropsForeignRows() {
	mine := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	other := createTestOrganization(suite.T(), suite.db, "Another Org")
	theirs := createTestOpportunity(suite.T(), suite.db, other.ID, models.StatusOpen)

	v1 := createTestVolunteer(suite.T(), suite.db, "Mine")
	v2 := createTestVolunteer(suite.T(), suite.db, "Theirs")
	mineApp := createTestApplication(suite.T(), suite.db, v1.ID, mine.ID, models.ApplicationPending)
	theirApp := createTestApplication(suite.T(), suite.db, v2.ID, theirs.ID, models.ApplicationPending)

	affected, err := suite.service.BulkDecide(BulkDecideInput{
		ApplicationIDs: []uint64{mineApp.ID, theirApp.ID},
		OrganizationID: suite.org.ID,
		Action:         ActionShortlist,
	})
	suite.Require().NoError(err)
	suite.EqualValues(1, affected)

	var reloaded models.Application
	suite.Require().NoError(suite.db.First(&reloaded, theirApp.ID).Error)
	suite.Equal(models.ApplicationPending, reloaded.Status)
}

func (suite *ApplicationServiceTestSuite) TestBulkAcceptOverflowRejectsWholeBatch() {
	opp := models.Opportunity{
		OrganizationID:     suite.org.ID,
		Title:              "Two-Slot Shift",
		Status:             models.StatusOpen,
		NumberOfVolunteers: intPtr(2),
	}
	suite.Require().NoError(suite.db.Create(&opp).Error)

	var ids []uint64
	for _, name := range []string{"First", "Second", "Third"} {
		v := createTestVolunteer(suite.T(), suite.db, name)
		app := createTestApplication(suite.T(), suite.db, v.ID, opp.ID, models.ApplicationPending)
		ids = append(ids, app.ID)
	}

	_, err := suite.service.BulkDecide(BulkDecideInput{
		ApplicationIDs: ids,
		OrganizationID: suite.org.ID,
		Action:         ActionAccept,
	})
	suite.Require().ErrorIs(err, ErrCapacityExceeded)

	// Nothing was applied
	var accepted int64
	suite.db.Model(&models.Application{}).
		Where("opportunity_id = ? AND status = ?", opp.ID, models.ApplicationAccepted).
		Count(&accepted)
	suite.EqualValues(0, accepted)
	suite.Empty(suite.notifier.messages)
}

func (suite *ApplicationServiceTestSuite) TestBulkDecideEmptyInput() {
	_, err := suite.service.BulkDecide(BulkDecideInput{OrganizationID: suite.org.ID, Action: ActionReject})
	suite.Require().ErrorIs(err, ErrNoApplicationIDs)
}

func (suite *ApplicationServiceTestSuite) TestWithdraw() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Leaving Lou")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationShortlisted)

	withdrawn, err := suite.service.Withdraw(app.ID, volunteer.ID)
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationWithdrawn, withdrawn.Status)
}

func (suite *ApplicationServiceTestSuite) TestWithdrawSomeoneElsesApplication() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	owner := createTestVolunteer(suite.T(), suite.db, "Owner")
	other := createTestVolunteer(suite.T(), suite.db, "Other")
	app := createTestApplication(suite.T(), suite.db, owner.ID, opp.ID, models.ApplicationPending)

	_, err := suite.service.Withdraw(app.ID, other.ID)
	suite.Require().ErrorIs(err, ErrApplicationNotFound)
}

func (suite *ApplicationServiceTestSuite) TestWithdrawRejectedFails() {
	opp := createTestOpportunity(suite.T(), suite.db, suite.org.ID, models.StatusOpen)
	volunteer := createTestVolunteer(suite.T(), suite.db, "Rejected Riley")
	app := createTestApplication(suite.T(), suite.db, volunteer.ID, opp.ID, models.ApplicationRejected)

	_, err := suite.service.Withdraw(app.ID, volunteer.ID)
	suite.Require().ErrorIs(err, ErrInvalidAction)
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
