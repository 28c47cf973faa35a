package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/clock"
)

type ServiceImpl struct {
	repo   attendance.Repository
	clock  clock.Clock
	policy config.PayrollConfig
}

func NewService(repo attendance.Repository, clk clock.Clock, policy config.PayrollConfig) attendance.Service {
	return &ServiceImpl{
		repo:   repo,
		clock:  clk,
		policy: policy,
	}
}

// claimsFromContext pulls the identity every attendance operation needs.
func claimsFromContext(ctx context.Context) (employeeID, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	employeeID, ok = claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	return employeeID, companyID, nil
}

// workDay truncates an instant to its calendar day.
func workDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CheckIn implements attendance.Service.
func (s *ServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	now := s.clock.Now()
	today := workDay(now)

	existing, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to get today's entry: %w", err)
	}
	if existing != nil {
		if existing.CheckOutAt != nil {
			return attendance.EntryResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.EntryResponse{}, attendance.ErrAlreadyCheckedIn
	}

	entry := attendance.TimeEntry{
		EmployeeID: employeeID,
		CompanyID:  companyID,

		// Date is the working day, CheckInAt the absolute instant.
		Date: today,

		CheckInAt:        &now,
		CheckInLatitude:  &req.Latitude,
		CheckInLongitude: &req.Longitude,
		CheckInAddress:   req.Address,

		Breaks: []attendance.Break{},
	}

	// The unique (employee_id, date) index catches the double-click race:
	// a concurrent insert comes back as ErrAlreadyCheckedIn, never as a
	// second record.
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	return mapEntryToResponse(created), nil
}

// CheckOut implements attendance.Service.
//
// An entry with an open break cannot be checked out: the break must be
// ended first so break accounting is always explicit. The nightly janitor
// is the only path that closes both in one sweep.
func (s *ServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	now := s.clock.Now()
	today := workDay(now)

	entry, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to get today's entry: %w", err)
	}
	if entry == nil || entry.CheckInAt == nil {
		return attendance.EntryResponse{}, attendance.ErrNotCheckedIn
	}
	if entry.CheckOutAt != nil {
		return attendance.EntryResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if entry.OpenBreak() != nil {
		return attendance.EntryResponse{}, attendance.ErrBreakInProgress
	}

	finalizeEntry(entry, now, s.policy.StandardDayHours)
	entry.CheckOutLatitude = &req.Latitude
	entry.CheckOutLongitude = &req.Longitude
	entry.CheckOutAddress = req.Address

	updated, err := s.repo.Update(ctx, *entry)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	return mapEntryToResponse(updated), nil
}

// finalizeEntry stamps the check-out instant and derives the totals:
// work hours net of breaks, clamped at zero, and overtime beyond the
// standard day.
func finalizeEntry(entry *attendance.TimeEntry, checkOut time.Time, standardDayHours float64) {
	entry.CheckOutAt = &checkOut

	breakMinutes := entry.TotalBreakMinutes()
	workHours := checkOut.Sub(*entry.CheckInAt).Hours() - float64(breakMinutes)/60
	if workHours < 0 {
		workHours = 0
	}
	overtimeHours := workHours - standardDayHours
	if overtimeHours < 0 {
		overtimeHours = 0
	}

	entry.BreakMinutes = breakMinutes
	entry.WorkHours = &workHours
	entry.OvertimeHours = &overtimeHours
}

// StartBreak implements attendance.Service.
func (s *ServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	now := s.clock.Now()
	today := workDay(now)

	entry, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to get today's entry: %w", err)
	}
	if entry == nil || !entry.CheckedIn() {
		return attendance.EntryResponse{}, attendance.ErrNotCheckedIn
	}
	if entry.OpenBreak() != nil {
		return attendance.EntryResponse{}, attendance.ErrBreakInProgress
	}

	entry.Breaks = append(entry.Breaks, attendance.Break{
		StartedAt: now,
		Type:      attendance.BreakType(req.Type),
	})

	updated, err := s.repo.Update(ctx, *entry)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	return mapEntryToResponse(updated), nil
}

// EndBreak implements attendance.Service.
func (s *ServiceImpl) EndBreak(ctx context.Context, req attendance.EndBreakRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	now := s.clock.Now()
	today := workDay(now)

	entry, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to get today's entry: %w", err)
	}
	if entry == nil || !entry.CheckedIn() {
		return attendance.EntryResponse{}, attendance.ErrNotCheckedIn
	}

	open := entry.OpenBreak()
	if open == nil {
		return attendance.EntryResponse{}, attendance.ErrNoBreakInProgress
	}

	open.EndedAt = &now
	open.Minutes = int(math.Round(now.Sub(open.StartedAt).Minutes()))
	entry.BreakMinutes = entry.TotalBreakMinutes()

	updated, err := s.repo.Update(ctx, *entry)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	return mapEntryToResponse(updated), nil
}

// GetMyEntries implements attendance.Service.
func (s *ServiceImpl) GetMyEntries(ctx context.Context, filter attendance.MyFilter) (attendance.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListEntriesResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListEntriesResponse{}, err
	}

	entries, total, err := s.repo.ListByEmployee(ctx, employeeID, filter, companyID)
	if err != nil {
		return attendance.ListEntriesResponse{}, fmt.Errorf("failed to list my entries: %w", err)
	}

	return buildListResponse(entries, total, filter.Page, filter.Limit), nil
}

// ListEntries implements attendance.Service.
func (s *ServiceImpl) ListEntries(ctx context.Context, filter attendance.Filter) (attendance.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListEntriesResponse{}, err
	}

	_, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListEntriesResponse{}, err
	}

	entries, total, err := s.repo.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListEntriesResponse{}, fmt.Errorf("failed to list entries: %w", err)
	}

	return buildListResponse(entries, total, filter.Page, filter.Limit), nil
}

// GetEntry implements attendance.Service.
func (s *ServiceImpl) GetEntry(ctx context.Context, id string) (attendance.EntryResponse, error) {
	_, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	entry, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	return mapEntryToResponse(entry), nil
}

func buildListResponse(entries []attendance.TimeEntry, total int64, page, limit int) attendance.ListEntriesResponse {
	responses := make([]attendance.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListEntriesResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Showing:    showing,
		Entries:    responses,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// mapEntryToResponse converts a TimeEntry entity to EntryResponse.
func mapEntryToResponse(entry attendance.TimeEntry) attendance.EntryResponse {
	breaks := make([]attendance.BreakResponse, 0, len(entry.Breaks))
	for _, b := range entry.Breaks {
		breaks = append(breaks, attendance.BreakResponse{
			StartedAt: b.StartedAt.Format("2006-01-02 15:04:05"),
			EndedAt:   timePtrToString(b.EndedAt),
			Type:      string(b.Type),
			Minutes:   b.Minutes,
		})
	}

	return attendance.EntryResponse{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		EmployeeName:    entry.EmployeeName,
		Date:            entry.Date.Format("2006-01-02"),
		CheckInAt:       timePtrToString(entry.CheckInAt),
		CheckOutAt:      timePtrToString(entry.CheckOutAt),
		CheckInAddress:  entry.CheckInAddress,
		CheckOutAddress: entry.CheckOutAddress,
		Breaks:          breaks,
		OnBreak:         entry.OpenBreak() != nil,
		WorkHours:       entry.WorkHours,
		BreakMinutes:    entry.BreakMinutes,
		OvertimeHours:   entry.OvertimeHours,
		Finalized:       entry.Finalized(),
		CreatedAt:       entry.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       entry.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
