package attendance

import (
	"github.com/tempohq/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StartBreakRequest struct {
	Type string `json:"type"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if !validator.IsInSlice(r.Type, []string{
		string(BreakTypeLunch), string(BreakTypeRest), string(BreakTypePersonal),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: lunch, rest, personal",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndBreakRequest struct{}

func (r *EndBreakRequest) Validate() error {
	return nil
}

type BreakResponse struct {
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Type      string  `json:"type"`
	Minutes   int     `json:"minutes"`
}

type EntryResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	Date            string          `json:"date"`
	CheckInAt       *string         `json:"check_in_at,omitempty"`
	CheckOutAt      *string         `json:"check_out_at,omitempty"`
	CheckInAddress  *string         `json:"check_in_address,omitempty"`
	CheckOutAddress *string         `json:"check_out_address,omitempty"`
	Breaks          []BreakResponse `json:"breaks"`
	OnBreak         bool            `json:"on_break"`
	WorkHours       *float64        `json:"work_hours,omitempty"`
	BreakMinutes    int             `json:"break_minutes"`
	OvertimeHours   *float64        `json:"overtime_hours,omitempty"`
	Finalized       bool            `json:"finalized"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type Filter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_at, check_out_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateDateFields(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be asc or desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyFilter struct {
	Date      *string `json:"date,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

func (f *MyFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateDateFields(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validatePagination(&f.Page, &f.Limit)...)

	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be asc or desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateDateFields(date, startDate, endDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if date != nil && *date != "" {
		if _, ok := validator.IsValidDate(*date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

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
		*page = 1 // Default page
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		*limit = 100 // Cap limit
	}

	return errs
}

type ListEntriesResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Entries    []EntryResponse `json:"entries"`
}
