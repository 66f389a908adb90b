package handlers

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/volunhub/volunteer-api/internal/database"
	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var handlerUserSeq int

// newHandlerTestDB opens an in-memory database, migrates the schema and
// installs it as the package-level connection handlers resolve at runtime.
func newHandlerTestDB(t *testing.T) *gorm.DB {
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

	database.SetDB(db)
	gin.SetMode(gin.TestMode)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return db
}

func seedOrganization(t *testing.T, db *gorm.DB) models.Organization {
	t.Helper()
	handlerUserSeq++

	user := models.User{
		Email:        fmt.Sprintf("org%d@example.com", handlerUserSeq),
		PasswordHash: "hashed",
		Role:         models.RoleOrganization,
	}
	require.NoError(t, db.Create(&user).Error)

	org := models.Organization{UserID: user.ID, Name: "Helping Hands"}
	require.NoError(t, db.Create(&org).Error)
	return org
}

func seedVolunteer(t *testing.T, db *gorm.DB, name string) models.Volunteer {
	t.Helper()
	handlerUserSeq++

	user := models.User{
		Email:        fmt.Sprintf("vol%d@example.com", handlerUserSeq),
		PasswordHash: "hashed",
		Role:         models.RoleVolunteer,
	}
	require.NoError(t, db.Create(&user).Error)

	volunteer := models.Volunteer{UserID: user.ID, Name: name}
	require.NoError(t, db.Create(&volunteer).Error)
	return volunteer
}
