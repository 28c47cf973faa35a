package leave

import (
	"github.com/tempohq/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// LEAVE DTOs
// ========================================

type SubmitRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if !validator.IsInSlice(r.Type, []string{
		string(TypeVacation), string(TypeSick), string(TypePersonal), string(TypeUnpaid),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: vacation, sick, personal, unpaid",
		})
	}

	var startOK, endOK bool
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, startOK = validator.IsValidDate(r.StartDate); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, endOK = validator.IsValidDate(r.EndDate); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && r.EndDate < r.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"` // approved, rejected
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if !validator.IsInSlice(r.Status, []string{string(StatusApproved), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be approved or rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Type         string  `json:"type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	Decided      bool    `json:"decided"`
	AppliedAt    string  `json:"applied_at"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type Filter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Type       *string `json:"type,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // applied_at, start_date, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, []string{
		string(StatusPending), string(StatusApproved), string(StatusRejected),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}

	errs = append(errs, validateRange(f.StartDate, f.EndDate)...)
	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyFilter struct {
	Type      *string `json:"type,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

func (f *MyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, []string{
		string(StatusPending), string(StatusApproved), string(StatusRejected),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}

	errs = append(errs, validateRange(f.StartDate, f.EndDate)...)
	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateRange(startDate, endDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	var start, end *string
	if startDate != nil && *startDate != "" {
		if _, ok := validator.IsValidDate(*startDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		} else {
			start = startDate
		}
	}
	if endDate != nil && *endDate != "" {
		if _, ok := validator.IsValidDate(*endDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		} else {
			end = endDate
		}
	}

	if start != nil && end != nil && *end < *start {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

func validatePagination(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}

	return errs
}

type ListRequestsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Requests   []RequestResponse `json:"requests"`
}
