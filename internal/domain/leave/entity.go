package leave

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypeVacation Type = "vacation"
	TypeSick     Type = "sick"
	TypePersonal Type = "personal"
	TypeUnpaid   Type = "unpaid"
)

// Request is one entry in the append-only leave ledger. Status moves
// pending -> approved or pending -> rejected exactly once; DecidedBy and
// DecidedAt are stamped with the decision and never rewritten.
type Request struct {
	ID         string
	EmployeeID string
	CompanyID  string

	Type      Type
	StartDate time.Time
	EndDate   time.Time
	Reason    string

	Status    Status
	AppliedAt time.Time
	DecidedBy *string
	DecidedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// Decided reports whether the request has left the pending state.
func (r *Request) Decided() bool {
	return r.Status != StatusPending
}
