package salary

import (
	"github.com/shopspring/decimal"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/validator"
)

// Breakdown is the itemized salary derivation over a date range. Every
// intermediate figure is exposed so the result can be audited; money
// fields carry unrounded decimals internally and are rounded to two
// places only when mapped to BreakdownResponse.
type Breakdown struct {
	EmployeeID string

	RegularHours  float64
	OvertimeHours float64
	BreakHours    float64
	HourlyRate    decimal.Decimal

	RegularPay      decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossPay        decimal.Decimal
	Taxes           decimal.Decimal
	UnpaidLeaveDays int
	LeaveDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

type BreakdownQuery struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
}

func (q *BreakdownQuery) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(q.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	var startOK, endOK bool
	if validator.IsEmpty(q.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, startOK = validator.IsValidDate(q.StartDate); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(q.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, endOK = validator.IsValidDate(q.EndDate); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && q.EndDate < q.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BreakdownResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`

	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	BreakHours    float64 `json:"break_hours"`
	HourlyRate    string  `json:"hourly_rate"`

	RegularPay      string `json:"regular_pay"`
	OvertimePay     string `json:"overtime_pay"`
	GrossPay        string `json:"gross_pay"`
	Taxes           string `json:"taxes"`
	UnpaidLeaveDays int    `json:"unpaid_leave_days"`
	LeaveDeductions string `json:"leave_deductions"`
	NetPay          string `json:"net_pay"`
}
