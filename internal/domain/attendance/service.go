package attendance

import (
	"context"
)

// Service defines business logic for the attendance state machine:
// NOT_CHECKED_IN -> CHECKED_IN <-> ON_BREAK -> CHECKED_OUT per day.
type Service interface {
	// CheckIn opens the employee's entry for the current working day.
	CheckIn(ctx context.Context, req CheckInRequest) (EntryResponse, error)

	// CheckOut closes the day and derives work, break and overtime totals.
	// Rejected while a break is still open.
	CheckOut(ctx context.Context, req CheckOutRequest) (EntryResponse, error)

	// StartBreak opens a break on today's entry.
	StartBreak(ctx context.Context, req StartBreakRequest) (EntryResponse, error)

	// EndBreak closes the open break and derives its duration.
	EndBreak(ctx context.Context, req EndBreakRequest) (EntryResponse, error)

	// GetMyEntries retrieves entries for the authenticated employee.
	GetMyEntries(ctx context.Context, filter MyFilter) (ListEntriesResponse, error)

	// ListEntries retrieves entries with filters (admin/manager).
	ListEntries(ctx context.Context, filter Filter) (ListEntriesResponse, error)

	// GetEntry retrieves a single entry by ID.
	GetEntry(ctx context.Context, id string) (EntryResponse, error)
}
