package attendance

import (
	"time"
)

type BreakType string

const (
	BreakTypeLunch    BreakType = "lunch"
	BreakTypeRest     BreakType = "rest"
	BreakTypePersonal BreakType = "personal"
)

// Break is one timed pause inside a checked-in day. EndedAt is nil while
// the break is running; Minutes is derived when it closes.
type Break struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Type      BreakType  `json:"type"`
	Minutes   int        `json:"minutes"`
}

// Open reports whether the break has not been ended yet.
func (b Break) Open() bool {
	return b.EndedAt == nil
}

// TimeEntry is one employee's attendance record for one calendar day.
// Date is the local working day truncated to midnight; the invariant is
// at most one entry per (employee_id, date) and at most one open break.
type TimeEntry struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time

	CheckInAt        *time.Time
	CheckInLatitude  *float64
	CheckInLongitude *float64
	CheckInAddress   *string

	CheckOutAt        *time.Time
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutAddress   *string

	Breaks []Break

	// Derived on check-out: WorkHours is net of breaks, OvertimeHours is
	// the part of WorkHours beyond the configured standard day.
	WorkHours     *float64
	BreakMinutes  int
	OvertimeHours *float64

	// Version guards every read-modify-write against concurrent requests.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// OpenBreak returns a pointer to the entry's open break, or nil.
func (e *TimeEntry) OpenBreak() *Break {
	for i := range e.Breaks {
		if e.Breaks[i].Open() {
			return &e.Breaks[i]
		}
	}
	return nil
}

// TotalBreakMinutes sums the durations of all closed breaks.
func (e *TimeEntry) TotalBreakMinutes() int {
	total := 0
	for _, b := range e.Breaks {
		if !b.Open() {
			total += b.Minutes
		}
	}
	return total
}

// CheckedIn reports whether the entry has an open check-in for the day.
func (e *TimeEntry) CheckedIn() bool {
	return e.CheckInAt != nil && e.CheckOutAt == nil
}

// Finalized reports whether the entry is closed for payroll purposes:
// checked out with no break left open. Finalized entries never mutate.
func (e *TimeEntry) Finalized() bool {
	return e.CheckInAt != nil && e.CheckOutAt != nil && e.OpenBreak() == nil
}
