package leave

import (
	"context"
	"time"
)

// Repository defines data access for the leave ledger.
type Repository interface {
	// Create appends a new pending request to the ledger.
	Create(ctx context.Context, request Request) (Request, error)

	// GetByID retrieves a request by ID with company isolation.
	GetByID(ctx context.Context, id string, companyID string) (Request, error)

	// Decide applies the terminal status as a compare-and-swap guarded by
	// status = 'pending'. Returns the updated request, or ErrAlreadyProcessed
	// when another decision already won, or ErrRequestNotFound.
	Decide(ctx context.Context, id string, companyID string, status Status, decidedBy string, decidedAt time.Time) (Request, error)

	// List retrieves requests with filters and pagination (admin view).
	List(ctx context.Context, filter Filter, companyID string) ([]Request, int64, error)

	// ListByEmployee retrieves one employee's requests.
	ListByEmployee(ctx context.Context, employeeID string, filter MyFilter, companyID string) ([]Request, int64, error)

	// ListApprovedRange retrieves approved requests overlapping [from, to]
	// for salary derivation.
	ListApprovedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]Request, error)
}
