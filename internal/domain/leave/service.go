package leave

import (
	"context"
)

// Service defines business logic for leave requests.
type Service interface {
	// Submit files a new pending request for the authenticated employee.
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)

	// Decide approves or rejects a pending request (admin/manager). A
	// request that is already decided comes back with ErrAlreadyProcessed
	// and its current state so the caller can reconcile.
	Decide(ctx context.Context, req DecideRequest) (RequestResponse, error)

	// GetMyRequests retrieves requests for the authenticated employee.
	GetMyRequests(ctx context.Context, filter MyFilter) (ListRequestsResponse, error)

	// ListRequests retrieves requests with filters (admin/manager).
	ListRequests(ctx context.Context, filter Filter) (ListRequestsResponse, error)

	// GetRequest retrieves a single request by ID.
	GetRequest(ctx context.Context, id string) (RequestResponse, error)
}
