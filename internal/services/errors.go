package services

import (
	"errors"

	"github.com/guillecolu/machinetrack-api/internal/models"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrInvalidProjectDates  = errors.New("delivery date cannot be before start date")
	ErrPartNotFound         = errors.New("part not found")
	ErrPartNameRequired     = errors.New("part name is required")
	ErrStageNotFound        = errors.New("stage not found")
	ErrStageExists          = errors.New("a stage with that name already exists in the part")
	ErrInvalidStageStatus   = errors.New("invalid stage status")
	ErrInvalidPercentage    = errors.New("percentage must be between 0 and 100")

	ErrTaskNotFound      = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")

	ErrMemberNotFound     = errors.New("team member not found")
	ErrMemberNameRequired = errors.New("team member name is required")

	ErrRecalculationFailed = errors.New("project progress could not be updated")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrMeetingNotesRequired   = errors.New("meeting notes are required")
	ErrMeetingNotesTooLong    = errors.New("meeting notes are too long")
	ErrInvalidReportKind      = errors.New("invalid report kind")
)

// IsValidationError reports whether err was caused by bad client input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrProjectNameRequired,
		ErrInvalidProjectStatus,
		ErrInvalidProjectDates,
		ErrPartNameRequired,
		ErrInvalidStageStatus,
		ErrInvalidPercentage,
		ErrTitleRequired,
		ErrInvalidTaskStatus,
		ErrInvalidProgress,
		ErrMemberNameRequired,
		ErrMeetingNotesRequired,
		ErrMeetingNotesTooLong,
		ErrInvalidReportKind,
		models.ErrAreaNameEmpty,
		models.ErrAreaNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
