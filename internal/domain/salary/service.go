package salary

import (
	"context"
)

// Service derives salary breakdowns. It owns no state: every call is a
// read-only projection over finalized attendance entries and the leave
// ledger, safe to run concurrently.
type Service interface {
	// GetBreakdown computes the itemized breakdown for one employee over
	// a date range.
	GetBreakdown(ctx context.Context, query BreakdownQuery) (BreakdownResponse, error)

	// ExportBreakdown renders the breakdown as an XLSX workbook.
	ExportBreakdown(ctx context.Context, query BreakdownQuery) (filename string, content []byte, err error)
}
