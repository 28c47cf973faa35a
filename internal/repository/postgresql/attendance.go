package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const timeEntryColumns = `
	t.id, t.employee_id, t.company_id, t.date,
	t.check_in_at, t.check_in_latitude, t.check_in_longitude, t.check_in_address,
	t.check_out_at, t.check_out_latitude, t.check_out_longitude, t.check_out_address,
	t.breaks, t.work_hours, t.break_minutes, t.overtime_hours,
	t.version, t.created_at, t.updated_at`

func scanTimeEntry(row pgx.Row, entry *attendance.TimeEntry) error {
	return row.Scan(
		&entry.ID, &entry.EmployeeID, &entry.CompanyID, &entry.Date,
		&entry.CheckInAt, &entry.CheckInLatitude, &entry.CheckInLongitude, &entry.CheckInAddress,
		&entry.CheckOutAt, &entry.CheckOutLatitude, &entry.CheckOutLongitude, &entry.CheckOutAddress,
		&entry.Breaks, &entry.WorkHours, &entry.BreakMinutes, &entry.OvertimeHours,
		&entry.Version, &entry.CreatedAt, &entry.UpdatedAt,
	)
}

// Create implements attendance.Repository.
func (r *attendanceRepository) Create(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Breaks == nil {
		entry.Breaks = []attendance.Break{}
	}

	query := `
		INSERT INTO time_entries (
			id, employee_id, company_id, date,
			check_in_at, check_in_latitude, check_in_longitude, check_in_address,
			breaks, break_minutes, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1
		) RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.CompanyID,
		entry.Date,
		entry.CheckInAt,
		entry.CheckInLatitude,
		entry.CheckInLongitude,
		entry.CheckInAddress,
		entry.Breaks,
		entry.BreakMinutes,
	).Scan(&entry.Version, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		// The unique (employee_id, date) index is the last line of defense
		// against a racing double check-in.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.TimeEntry{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return entry, nil
}

// GetByID implements attendance.Repository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries t
		WHERE t.id = $1
		  AND t.company_id = $2
	`

	var entry attendance.TimeEntry
	err := scanTimeEntry(q.QueryRow(ctx, query, id, companyID), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.TimeEntry{}, attendance.ErrEntryNotFound
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries t
		WHERE t.employee_id = $1
		  AND t.date = $2
		  AND t.company_id = $3
		LIMIT 1
	`

	var entry attendance.TimeEntry
	err := scanTimeEntry(q.QueryRow(ctx, query, employeeID, date, companyID), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get time entry by employee and date: %w", err)
	}

	return &entry, nil
}

// Update implements attendance.Repository.
func (r *attendanceRepository) Update(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.Breaks == nil {
		entry.Breaks = []attendance.Break{}
	}

	// Version-guarded write: the WHERE clause makes a lost race a zero-row
	// update instead of a silent overwrite.
	query := `
		UPDATE time_entries
		SET check_out_at = $1,
			check_out_latitude = $2,
			check_out_longitude = $3,
			check_out_address = $4,
			breaks = $5,
			work_hours = $6,
			break_minutes = $7,
			overtime_hours = $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $9
		  AND company_id = $10
		  AND version = $11
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.CheckOutAt,
		entry.CheckOutLatitude,
		entry.CheckOutLongitude,
		entry.CheckOutAddress,
		entry.Breaks,
		entry.WorkHours,
		entry.BreakMinutes,
		entry.OvertimeHours,
		entry.ID,
		entry.CompanyID,
		entry.Version,
	).Scan(&entry.Version, &entry.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing row from a stale version.
			var exists bool
			checkErr := q.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM time_entries WHERE id = $1 AND company_id = $2)`,
				entry.ID, entry.CompanyID,
			).Scan(&exists)
			if checkErr != nil {
				return attendance.TimeEntry{}, fmt.Errorf("failed to check time entry existence: %w", checkErr)
			}
			if !exists {
				return attendance.TimeEntry{}, attendance.ErrEntryNotFound
			}
			return attendance.TimeEntry{}, attendance.ErrVersionConflict
		}
		return attendance.TimeEntry{}, fmt.Errorf("failed to update time entry: %w", err)
	}

	return entry, nil
}

// List implements attendance.Repository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "t.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND t.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND t.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM time_entries t
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	orderByField := "t.date"
	switch filter.SortBy {
	case "check_in_at":
		orderByField = "t.check_in_at"
	case "check_out_at":
		orderByField = "t.check_out_at"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name
		FROM time_entries t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, timeEntryColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []attendance.TimeEntry
	for rows.Next() {
		var entry attendance.TimeEntry
		err := rows.Scan(
			&entry.ID, &entry.EmployeeID, &entry.CompanyID, &entry.Date,
			&entry.CheckInAt, &entry.CheckInLatitude, &entry.CheckInLongitude, &entry.CheckInAddress,
			&entry.CheckOutAt, &entry.CheckOutLatitude, &entry.CheckOutLongitude, &entry.CheckOutAddress,
			&entry.Breaks, &entry.WorkHours, &entry.BreakMinutes, &entry.OvertimeHours,
			&entry.Version, &entry.CreatedAt, &entry.UpdatedAt,
			&entry.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, total, nil
}

// ListByEmployee implements attendance.Repository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyFilter, companyID string) ([]attendance.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "t.employee_id = $1 AND t.company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND t.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM time_entries t
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count my time entries: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM time_entries t
		WHERE %s
		ORDER BY t.date %s
		LIMIT $%d OFFSET $%d
	`, timeEntryColumns, baseWhere, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list my time entries: %w", err)
	}
	defer rows.Close()

	entries, err := collectTimeEntries(rows)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListFinalizedRange implements attendance.Repository.
func (r *attendanceRepository) ListFinalizedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries t
		WHERE t.employee_id = $1
		  AND t.company_id = $2
		  AND t.date >= $3
		  AND t.date <= $4
		  AND t.check_out_at IS NOT NULL
		ORDER BY t.date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized time entries: %w", err)
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// ListStaleOpen implements attendance.Repository.
func (r *attendanceRepository) ListStaleOpen(ctx context.Context, olderThan time.Time) ([]attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries t
		WHERE t.check_in_at IS NOT NULL
		  AND t.check_out_at IS NULL
		  AND t.check_in_at < $1
		ORDER BY t.check_in_at ASC
	`

	rows, err := q.Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open time entries: %w", err)
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

func collectTimeEntries(rows pgx.Rows) ([]attendance.TimeEntry, error) {
	var entries []attendance.TimeEntry
	for rows.Next() {
		var entry attendance.TimeEntry
		if err := scanTimeEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}
	return entries, nil
}
