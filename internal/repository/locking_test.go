package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/volunhub/volunteer-api/internal/models"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestFindOwnedForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `opportunities` WHERE organization_id = .* FOR UPDATE").
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "title", "status"}).
			AddRow(3, 7, "Beach Cleanup", "open"))

	repo := NewOpportunityRepository(db)
	opp, err := repo.FindOwnedForUpdate(3, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(3), opp.ID)
	require.Equal(t, models.StatusOpen, opp.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOwnedForUpdate_SqliteSkipsLockClause(t *testing.T) {
	// sqlite has no FOR UPDATE; the locking clause is dropped so the same
	// code path runs in tests against the in-memory database.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Opportunity{}))

	opp := models.Opportunity{OrganizationID: 7, Title: "Beach Cleanup", Status: models.StatusOpen}
	require.NoError(t, db.Create(&opp).Error)

	repo := NewOpportunityRepository(db)
	found, err := repo.FindOwnedForUpdate(opp.ID, 7)
	require.NoError(t, err)
	require.Equal(t, opp.ID, found.ID)
}
