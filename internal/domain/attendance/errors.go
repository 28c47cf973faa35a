package attendance

import "errors"

// Attendance domain errors
var (
	// State machine conflicts
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrBreakInProgress   = errors.New("a break is in progress; end it first")
	ErrNoBreakInProgress = errors.New("no break is in progress")

	// General errors
	ErrEntryNotFound   = errors.New("attendance entry not found")
	ErrVersionConflict = errors.New("attendance entry was modified concurrently, refresh and retry")
)
