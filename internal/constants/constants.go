package constants

const (
	// Session
	SessionCookieName  = "machinetrack_session"
	ContextKeyMemberID = "member_id"

	// Context keys set by loader middleware
	ContextKeyProject = "project"
	ContextKeyTask    = "task"

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Reports
	MaxReportOpenTasks = 50
	MaxMeetingNotesLen = 20000
)
