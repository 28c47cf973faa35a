package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tempohq/timeclock-backend-go/internal/domain/leave"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/database"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.Repository {
	return &leaveRequestRepository{db: db}
}

const leaveRequestColumns = `
	l.id, l.employee_id, l.company_id, l.type, l.start_date, l.end_date, l.reason,
	l.status, l.applied_at, l.decided_by, l.decided_at, l.created_at, l.updated_at`

func scanLeaveRequest(row pgx.Row, request *leave.Request) error {
	return row.Scan(
		&request.ID, &request.EmployeeID, &request.CompanyID,
		&request.Type, &request.StartDate, &request.EndDate, &request.Reason,
		&request.Status, &request.AppliedAt, &request.DecidedBy, &request.DecidedAt,
		&request.CreatedAt, &request.UpdatedAt,
	)
}

// Create implements leave.Repository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, company_id, type, start_date, end_date, reason, status, applied_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.CompanyID,
		request.Type,
		request.StartDate,
		request.EndDate,
		request.Reason,
		request.Status,
		request.AppliedAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.Repository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string, companyID string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests l
		WHERE l.id = $1
		  AND l.company_id = $2
	`

	var request leave.Request
	err := scanLeaveRequest(q.QueryRow(ctx, query, id, companyID), &request)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return request, nil
}

// Decide implements leave.Repository.
func (r *leaveRequestRepository) Decide(ctx context.Context, id string, companyID string, status leave.Status, decidedBy string, decidedAt time.Time) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	// status = 'pending' in the WHERE clause is the compare-and-swap: only
	// the first decision lands, every later one updates zero rows.
	query := `
		UPDATE leave_requests
		SET status = $1,
			decided_by = $2,
			decided_at = $3,
			updated_at = NOW()
		WHERE id = $4
		  AND company_id = $5
		  AND status = 'pending'
		RETURNING id, employee_id, company_id, type, start_date, end_date, reason,
				  status, applied_at, decided_by, decided_at, created_at, updated_at
	`

	var request leave.Request
	err := q.QueryRow(ctx, query, status, decidedBy, decidedAt, id, companyID).Scan(
		&request.ID, &request.EmployeeID, &request.CompanyID,
		&request.Type, &request.StartDate, &request.EndDate, &request.Reason,
		&request.Status, &request.AppliedAt, &request.DecidedBy, &request.DecidedAt,
		&request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			checkErr := q.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1 AND company_id = $2)`,
				id, companyID,
			).Scan(&exists)
			if checkErr != nil {
				return leave.Request{}, fmt.Errorf("failed to check leave request existence: %w", checkErr)
			}
			if !exists {
				return leave.Request{}, leave.ErrRequestNotFound
			}
			return leave.Request{}, leave.ErrAlreadyProcessed
		}
		return leave.Request{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	return request, nil
}

// List implements leave.Repository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.Filter, companyID string) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "l.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND l.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND l.type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND l.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND l.end_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND l.start_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM leave_requests l
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	orderByField := "l.applied_at"
	switch filter.SortBy {
	case "start_date":
		orderByField = "l.start_date"
	case "status":
		orderByField = "l.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name
		FROM leave_requests l
		LEFT JOIN employees e ON e.id = l.employee_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var request leave.Request
		err := rows.Scan(
			&request.ID, &request.EmployeeID, &request.CompanyID,
			&request.Type, &request.StartDate, &request.EndDate, &request.Reason,
			&request.Status, &request.AppliedAt, &request.DecidedBy, &request.DecidedAt,
			&request.CreatedAt, &request.UpdatedAt,
			&request.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, total, nil
}

// ListByEmployee implements leave.Repository.
func (r *leaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string, filter leave.MyFilter, companyID string) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "l.employee_id = $1 AND l.company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND l.type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND l.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND l.end_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND l.start_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM leave_requests l
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count my leave requests: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests l
		WHERE %s
		ORDER BY l.applied_at %s
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list my leave requests: %w", err)
	}
	defer rows.Close()

	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListApprovedRange implements leave.Repository.
func (r *leaveRequestRepository) ListApprovedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests l
		WHERE l.employee_id = $1
		  AND l.company_id = $2
		  AND l.status = 'approved'
		  AND l.end_date >= $3
		  AND l.start_date <= $4
		ORDER BY l.start_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}
	defer rows.Close()

	return collectLeaveRequests(rows)
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.Request, error) {
	var requests []leave.Request
	for rows.Next() {
		var request leave.Request
		if err := scanLeaveRequest(rows, &request); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}
