package attendance

import (
	"context"
	"time"
)

// Repository defines data access for attendance entries. All methods take
// companyID to keep tenants isolated.
type Repository interface {
	// Create inserts a new entry. The unique (employee_id, date) index
	// turns a racing double check-in into ErrAlreadyCheckedIn.
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// GetByID retrieves an entry by ID with company isolation.
	GetByID(ctx context.Context, id string, companyID string) (TimeEntry, error)

	// GetByEmployeeAndDate retrieves the entry for one employee on one
	// working day. Returns nil when none exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*TimeEntry, error)

	// Update persists a mutated entry guarded by its version: the write
	// only lands when the stored version still matches entry.Version.
	// A lost race surfaces as ErrVersionConflict.
	Update(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// List retrieves entries with filters and pagination (admin view).
	List(ctx context.Context, filter Filter, companyID string) ([]TimeEntry, int64, error)

	// ListByEmployee retrieves one employee's entries over a range.
	ListByEmployee(ctx context.Context, employeeID string, filter MyFilter, companyID string) ([]TimeEntry, int64, error)

	// ListFinalizedRange retrieves finalized entries for salary derivation.
	ListFinalizedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]TimeEntry, error)

	// ListStaleOpen retrieves entries with no check-out whose working day
	// ended more than cutoff hours ago. Used by the janitor job.
	ListStaleOpen(ctx context.Context, olderThan time.Time) ([]TimeEntry, error)
}
