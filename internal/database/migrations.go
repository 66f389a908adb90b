package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate creates.
// Safe to run on every startup.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Opportunity listing/sweep filters
		{"opportunities", "idx_opportunities_org_status", "organization_id, status"},
		{"opportunities", "idx_opportunities_start_date", "start_date"},
		{"opportunities", "idx_opportunities_end_date", "end_date"},

		// Application review queries
		{"applications", "idx_applications_opportunity_status", "opportunity_id, status"},
		{"applications", "idx_applications_volunteer_id", "volunteer_id"},

		// Attendance ledger
		{"participations", "idx_participations_opportunity_status", "opportunity_id, status"},

		// Notification inbox
		{"notifications", "idx_notifications_user_read", "user_id, is_read"},
	}

	for _, idx := range indexes {
		exists, err := indexExists(db, idx.table, idx.name)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if exists {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// indexExists checks the driver-specific catalog for an index by name.
func indexExists(db *gorm.DB, table, name string) (bool, error) {
	var count int64
	var err error

	switch db.Dialector.Name() {
	case "mysql":
		err = db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, table, name).Scan(&count).Error
	case "postgres":
		err = db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, table, name).Scan(&count).Error
	default:
		// sqlite (tests)
		err = db.Raw(`
			SELECT COUNT(*)
			FROM sqlite_master
			WHERE type = 'index' AND tbl_name = ? AND name = ?
		`, table, name).Scan(&count).Error
	}

	return count > 0, err
}
