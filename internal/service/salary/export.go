package salary

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tempohq/timeclock-backend-go/internal/domain/salary"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Salary Breakdown"

// ExportBreakdown implements salary.Service.
func (s *ServiceImpl) ExportBreakdown(ctx context.Context, query salary.BreakdownQuery) (string, []byte, error) {
	breakdown, emp, err := s.computeBreakdown(ctx, query)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := [][]interface{}{
		{"Field", "Value"},
		{"Employee", emp.FullName},
		{"Employee ID", breakdown.EmployeeID},
		{"Period", fmt.Sprintf("%s to %s", query.StartDate, query.EndDate)},
		{"Regular Hours", breakdown.RegularHours},
		{"Overtime Hours", breakdown.OvertimeHours},
		{"Break Hours", breakdown.BreakHours},
		{"Hourly Rate", breakdown.HourlyRate.StringFixed(2)},
		{"Regular Pay", breakdown.RegularPay.StringFixed(2)},
		{"Overtime Pay", breakdown.OvertimePay.StringFixed(2)},
		{"Gross Pay", breakdown.GrossPay.StringFixed(2)},
		{"Taxes", breakdown.Taxes.StringFixed(2)},
		{"Unpaid Leave Days", breakdown.UnpaidLeaveDays},
		{"Leave Deductions", breakdown.LeaveDeductions.StringFixed(2)},
		{"Net Pay", breakdown.NetPay.StringFixed(2)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve cell name: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return "", nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.SetCellStyle(exportSheet, "A1", "B1", headerStyle); err != nil {
		return "", nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 22); err != nil {
		return "", nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 28); err != nil {
		return "", nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("salary_%s_%s_%s.xlsx", breakdown.EmployeeID, query.StartDate, query.EndDate)
	return filename, buf.Bytes(), nil
}
