package salary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
)

func testPolicy() config.PayrollConfig {
	return config.PayrollConfig{
		StandardDayHours:    8,
		OvertimeMultiplier:  decimal.RequireFromString("1.5"),
		TaxRate:             decimal.RequireFromString("0.20"),
		UnpaidLeaveDayHours: decimal.NewFromInt(8),
	}
}

func finalizedEntry(date time.Time, workHours, overtimeHours float64, breakMinutes int) attendance.TimeEntry {
	checkIn := date.Add(9 * time.Hour)
	checkOut := checkIn.Add(time.Duration(workHours*float64(time.Hour)) + time.Duration(breakMinutes)*time.Minute)
	return attendance.TimeEntry{
		EmployeeID:    "emp-1",
		Date:          date,
		CheckInAt:     &checkIn,
		CheckOutAt:    &checkOut,
		WorkHours:     &workHours,
		BreakMinutes:  breakMinutes,
		OvertimeHours: &overtimeHours,
	}
}

// TestCalculateSingleDay pins the arithmetic against a hand-checked day:
// 8.25 net work hours at a 20.00 rate with the default policy.
func TestCalculateSingleDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	breakdown := Calculate(CalculatorInputs{
		EmployeeID: "emp-1",
		HourlyRate: decimal.RequireFromString("20.00"),
		Entries: []attendance.TimeEntry{
			finalizedEntry(day, 8.25, 0.25, 45),
		},
	}, testPolicy())

	assert.InDelta(t, 8.0, breakdown.RegularHours, 1e-9)
	assert.InDelta(t, 0.25, breakdown.OvertimeHours, 1e-9)
	assert.InDelta(t, 0.75, breakdown.BreakHours, 1e-9)
	assert.Equal(t, "160.00", breakdown.RegularPay.StringFixed(2))
	assert.Equal(t, "7.50", breakdown.OvertimePay.StringFixed(2))
	assert.Equal(t, "167.50", breakdown.GrossPay.StringFixed(2))
	assert.Equal(t, "33.50", breakdown.Taxes.StringFixed(2))
	assert.Equal(t, "0.00", breakdown.LeaveDeductions.StringFixed(2))
	assert.Equal(t, "134.00", breakdown.NetPay.StringFixed(2))
}

func TestCalculateUnpaidLeaveDeduction(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	breakdown := Calculate(CalculatorInputs{
		EmployeeID: "emp-1",
		HourlyRate: decimal.RequireFromString("20.00"),
		Entries: []attendance.TimeEntry{
			finalizedEntry(day, 8, 0, 0),
		},
		UnpaidLeaveDays: 2,
	}, testPolicy())

	// 2 unpaid days * 8h * 20.00 = 320.00 off the net.
	assert.Equal(t, "160.00", breakdown.GrossPay.StringFixed(2))
	assert.Equal(t, "32.00", breakdown.Taxes.StringFixed(2))
	assert.Equal(t, "320.00", breakdown.LeaveDeductions.StringFixed(2))
	assert.Equal(t, "-192.00", breakdown.NetPay.StringFixed(2))
	assert.Equal(t, 2, breakdown.UnpaidLeaveDays)
}

func TestCalculateNoEntries(t *testing.T) {
	breakdown := Calculate(CalculatorInputs{
		EmployeeID: "emp-1",
		HourlyRate: decimal.RequireFromString("20.00"),
	}, testPolicy())

	assert.Zero(t, breakdown.RegularHours)
	assert.Zero(t, breakdown.OvertimeHours)
	assert.Equal(t, "0.00", breakdown.GrossPay.StringFixed(2))
	assert.Equal(t, "0.00", breakdown.NetPay.StringFixed(2))
}

func TestCalculateSkipsUnfinalizedEntries(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(9 * time.Hour)
	workHours := 4.0

	open := attendance.TimeEntry{
		EmployeeID: "emp-1",
		Date:       day,
		CheckInAt:  &checkIn,
		WorkHours:  &workHours,
	}

	breakdown := Calculate(CalculatorInputs{
		EmployeeID: "emp-1",
		HourlyRate: decimal.RequireFromString("20.00"),
		Entries:    []attendance.TimeEntry{open},
	}, testPolicy())

	assert.Zero(t, breakdown.RegularHours)
	assert.Equal(t, "0.00", breakdown.GrossPay.StringFixed(2))
}

func TestCalculateMultipleDays(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	breakdown := Calculate(CalculatorInputs{
		EmployeeID: "emp-1",
		HourlyRate: decimal.RequireFromString("15.00"),
		Entries: []attendance.TimeEntry{
			finalizedEntry(day, 8, 0, 30),
			finalizedEntry(day.AddDate(0, 0, 1), 9.5, 1.5, 60),
			finalizedEntry(day.AddDate(0, 0, 2), 7, 0, 0),
		},
	}, testPolicy())

	// 24.5 total work hours, 1.5 of them overtime.
	assert.InDelta(t, 23.0, breakdown.RegularHours, 1e-9)
	assert.InDelta(t, 1.5, breakdown.OvertimeHours, 1e-9)
	assert.InDelta(t, 1.5, breakdown.BreakHours, 1e-9)
	assert.Equal(t, "345.00", breakdown.RegularPay.StringFixed(2))
	assert.Equal(t, "33.75", breakdown.OvertimePay.StringFixed(2))
	assert.Equal(t, "378.75", breakdown.GrossPay.StringFixed(2))
	assert.Equal(t, "75.75", breakdown.Taxes.StringFixed(2))
	assert.Equal(t, "303.00", breakdown.NetPay.StringFixed(2))
}

// Calculate is a pure function: the same inputs must always produce the
// same breakdown.
func TestCalculateDeterministic(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	inputs := CalculatorInputs{
		EmployeeID:      "emp-1",
		HourlyRate:      decimal.RequireFromString("17.25"),
		Entries:         []attendance.TimeEntry{finalizedEntry(day, 8.25, 0.25, 45)},
		UnpaidLeaveDays: 1,
	}

	first := Calculate(inputs, testPolicy())
	second := Calculate(inputs, testPolicy())

	assert.Equal(t, first.NetPay.String(), second.NetPay.String())
	assert.Equal(t, first.GrossPay.String(), second.GrossPay.String())
	assert.Equal(t, first.RegularHours, second.RegularHours)
}
