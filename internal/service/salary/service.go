package salary

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/domain/employee"
	"github.com/tempohq/timeclock-backend-go/internal/domain/leave"
	"github.com/tempohq/timeclock-backend-go/internal/domain/salary"
)

type ServiceImpl struct {
	attendanceRepo attendance.Repository
	leaveRepo      leave.Repository
	employeeRepo   employee.Repository
	policy         config.PayrollConfig
}

func NewService(
	attendanceRepo attendance.Repository,
	leaveRepo leave.Repository,
	employeeRepo employee.Repository,
	policy config.PayrollConfig,
) salary.Service {
	return &ServiceImpl{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		employeeRepo:   employeeRepo,
		policy:         policy,
	}
}

func companyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return companyID, nil
}

// GetBreakdown implements salary.Service.
func (s *ServiceImpl) GetBreakdown(ctx context.Context, query salary.BreakdownQuery) (salary.BreakdownResponse, error) {
	breakdown, emp, err := s.computeBreakdown(ctx, query)
	if err != nil {
		return salary.BreakdownResponse{}, err
	}

	return mapBreakdownToResponse(breakdown, emp, query), nil
}

func (s *ServiceImpl) computeBreakdown(ctx context.Context, query salary.BreakdownQuery) (salary.Breakdown, employee.Employee, error) {
	if err := query.Validate(); err != nil {
		return salary.Breakdown{}, employee.Employee{}, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, query.EmployeeID, companyID)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, err
	}

	from, err := time.Parse("2006-01-02", query.StartDate)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	to, err := time.Parse("2006-01-02", query.EndDate)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	entries, err := s.attendanceRepo.ListFinalizedRange(ctx, query.EmployeeID, from, to, companyID)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, fmt.Errorf("failed to list finalized attendance entries: %w", err)
	}

	approved, err := s.leaveRepo.ListApprovedRange(ctx, query.EmployeeID, from, to, companyID)
	if err != nil {
		return salary.Breakdown{}, employee.Employee{}, fmt.Errorf("failed to list approved leave requests: %w", err)
	}

	unpaidDays := 0
	for _, request := range approved {
		if request.Type == leave.TypeUnpaid {
			unpaidDays++
		}
	}

	breakdown := Calculate(CalculatorInputs{
		EmployeeID:      query.EmployeeID,
		HourlyRate:      emp.HourlyRate,
		Entries:         entries,
		UnpaidLeaveDays: unpaidDays,
	}, s.policy)

	return breakdown, emp, nil
}

func mapBreakdownToResponse(b salary.Breakdown, emp employee.Employee, query salary.BreakdownQuery) salary.BreakdownResponse {
	return salary.BreakdownResponse{
		EmployeeID:      b.EmployeeID,
		EmployeeName:    emp.FullName,
		StartDate:       query.StartDate,
		EndDate:         query.EndDate,
		RegularHours:    b.RegularHours,
		OvertimeHours:   b.OvertimeHours,
		BreakHours:      b.BreakHours,
		HourlyRate:      b.HourlyRate.StringFixed(2),
		RegularPay:      b.RegularPay.StringFixed(2),
		OvertimePay:     b.OvertimePay.StringFixed(2),
		GrossPay:        b.GrossPay.StringFixed(2),
		Taxes:           b.Taxes.StringFixed(2),
		UnpaidLeaveDays: b.UnpaidLeaveDays,
		LeaveDeductions: b.LeaveDeductions.StringFixed(2),
		NetPay:          b.NetPay.StringFixed(2),
	}
}
