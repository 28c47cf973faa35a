package salary

import (
	"github.com/shopspring/decimal"
	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/domain/salary"
)

// CalculatorInputs is everything the calculator is allowed to see. The
// calculator itself touches no repository and no clock so the same inputs
// always produce the same breakdown.
type CalculatorInputs struct {
	EmployeeID      string
	HourlyRate      decimal.Decimal
	Entries         []attendance.TimeEntry
	UnpaidLeaveDays int
}

// Calculate derives the itemized salary breakdown from finalized
// attendance entries and the unpaid-leave count.
//
// Entries store work hours already net of breaks, so regular hours are
// the summed work hours minus the summed overtime hours. Entries that
// are not finalized carry no derived totals and contribute nothing.
func Calculate(in CalculatorInputs, policy config.PayrollConfig) salary.Breakdown {
	var totalWork, totalOvertime float64
	totalBreakMinutes := 0

	for _, entry := range in.Entries {
		if !entry.Finalized() {
			continue
		}
		if entry.WorkHours != nil {
			totalWork += *entry.WorkHours
		}
		if entry.OvertimeHours != nil {
			totalOvertime += *entry.OvertimeHours
		}
		totalBreakMinutes += entry.BreakMinutes
	}

	regularHours := totalWork - totalOvertime
	if regularHours < 0 {
		regularHours = 0
	}

	regularPay := in.HourlyRate.Mul(decimal.NewFromFloat(regularHours))
	overtimePay := in.HourlyRate.
		Mul(policy.OvertimeMultiplier).
		Mul(decimal.NewFromFloat(totalOvertime))
	grossPay := regularPay.Add(overtimePay)
	taxes := grossPay.Mul(policy.TaxRate)
	leaveDeductions := in.HourlyRate.
		Mul(policy.UnpaidLeaveDayHours).
		Mul(decimal.NewFromInt(int64(in.UnpaidLeaveDays)))
	netPay := grossPay.Sub(taxes).Sub(leaveDeductions)

	return salary.Breakdown{
		EmployeeID:      in.EmployeeID,
		RegularHours:    regularHours,
		OvertimeHours:   totalOvertime,
		BreakHours:      float64(totalBreakMinutes) / 60.0,
		HourlyRate:      in.HourlyRate,
		RegularPay:      regularPay,
		OvertimePay:     overtimePay,
		GrossPay:        grossPay,
		Taxes:           taxes,
		UnpaidLeaveDays: in.UnpaidLeaveDays,
		LeaveDeductions: leaveDeductions,
		NetPay:          netPay,
	}
}
