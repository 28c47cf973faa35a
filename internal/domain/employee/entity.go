package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only profile this service consumes. It is owned by
// the people-management side of the platform; only HourlyRate and identity
// matter here.
type Employee struct {
	ID         string
	CompanyID  string
	FullName   string
	Position   *string
	HourlyRate decimal.Decimal
	Status     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
