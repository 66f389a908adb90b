package constants

import "time"

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// Attendance
const (
	// AttendanceGracePeriod is how long after an opportunity's end reference
	// date the attendance ledger stays writable.
	AttendanceGracePeriod = 48 * time.Hour

	// DefaultFlexibleHours is the assumed shift length for opportunities
	// without fixed start/end times.
	DefaultFlexibleHours = 8.0
)
