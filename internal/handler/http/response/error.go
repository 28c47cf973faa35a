package response

import (
	"errors"
	"net/http"

	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/domain/employee"
	"github.com/tempohq/timeclock-backend-go/internal/domain/leave"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors. State machine violations are conflicts:
	// the request was well-formed but the entry is not in a state that
	// allows the transition.
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "Not checked in")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrBreakInProgress):
		Conflict(w, "A break is still in progress")
	case errors.Is(err, attendance.ErrNoBreakInProgress):
		Conflict(w, "No break in progress")
	case errors.Is(err, attendance.ErrVersionConflict):
		Conflict(w, "The entry was modified concurrently, please retry")
	case errors.Is(err, attendance.ErrEntryNotFound):
		NotFound(w, "Time entry not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
