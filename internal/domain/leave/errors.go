package leave

import "errors"

var (
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrAlreadyProcessed is an idempotency notice, not a failure: a
	// second decision against a decided request reports it and the caller
	// refreshes from the store instead of erroring.
	ErrAlreadyProcessed = errors.New("leave request already processed")
)
