package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingDispatcher captures messages instead of persisting them, so tests
// can assert on what would have been sent after commit.
type recordingDispatcher struct {
	messages []notifications.Message
}

func (d *recordingDispatcher) Dispatch(messages ...notifications.Message) {
	d.messages = append(d.messages, messages...)
}

func (d *recordingDispatcher) reset() {
	d.messages = nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Volunteer{},
		&models.Skill{},
		&models.Interest{},
		&models.Opportunity{},
		&models.OpportunityImage{},
		&models.OpportunityContact{},
		&models.Application{},
		&models.Participation{},
		&models.Review{},
		&models.Notification{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

var testUserSeq int

func createTestOrganization(t *testing.T, db *gorm.DB, name string) models.Organization {
	t.Helper()

	testUserSeq++
	user := models.User{
		Email:        fmt.Sprintf("org%d@example.com", testUserSeq),
		PasswordHash: "hashedpassword",
		Role:         models.RoleOrganization,
	}
	require.NoError(t, db.Create(&user).Error)

	org := models.Organization{
		UserID: user.ID,
		Name:   name,
	}
	require.NoError(t, db.Create(&org).Error)
	return org
}

func createTestVolunteer(t *testing.T, db *gorm.DB, name string) models.Volunteer {
	t.Helper()

	testUserSeq++
	user := models.User{
		Email:        fmt.Sprintf("vol%d@example.com", testUserSeq),
		PasswordHash: "hashedpassword",
		Role:         models.RoleVolunteer,
	}
	require.NoError(t, db.Create(&user).Error)

	volunteer := models.Volunteer{
		UserID: user.ID,
		Name:   name,
	}
	require.NoError(t, db.Create(&volunteer).Error)
	return volunteer
}

func createTestOpportunity(t *testing.T, db *gorm.DB, orgID uint64, status models.OpportunityStatus) models.Opportunity {
	t.Helper()

	opp := models.Opportunity{
		OrganizationID: orgID,
		Title:          "Community Garden Cleanup",
		Status:         status,
	}
	require.NoError(t, db.Create(&opp).Error)
	return opp
}

func createTestApplication(t *testing.T, db *gorm.DB, volunteerID, opportunityID uint64, status models.ApplicationStatus) models.Application {
	t.Helper()

	app := models.Application{
		VolunteerID:   volunteerID,
		OpportunityID: opportunityID,
		Status:        status,
		AppliedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&app).Error)
	return app
}

func createTestParticipation(t *testing.T, db *gorm.DB, volunteerID, opportunityID uint64, status models.ParticipationStatus) models.Participation {
	t.Helper()

	p := models.Participation{
		VolunteerID:   volunteerID,
		OpportunityID: opportunityID,
		Status:        status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}
