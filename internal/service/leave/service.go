package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tempohq/timeclock-backend-go/internal/domain/leave"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/clock"
)

type ServiceImpl struct {
	repo  leave.Repository
	clock clock.Clock
}

func NewService(repo leave.Repository, clk clock.Clock) leave.Service {
	return &ServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

func claimsFromContext(ctx context.Context) (employeeID, companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	employeeID, _ = claims["employee_id"].(string)
	userID, _ = claims["user_id"].(string)

	return employeeID, companyID, userID, nil
}

// Submit implements leave.Service.
func (s *ServiceImpl) Submit(ctx context.Context, req leave.SubmitRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	employeeID, companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if employeeID == "" {
		return leave.RequestResponse{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	request := leave.Request{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Type:       leave.Type(req.Type),
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
		AppliedAt:  s.clock.Now(),
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return mapRequestToResponse(created), nil
}

// Decide implements leave.Service.
//
// The decision is a compare-and-swap guarded by status = 'pending'. When
// the swap loses (a duplicate admin click or a race), the current state is
// fetched and returned together with ErrAlreadyProcessed so the handler
// can answer with the record as it stands instead of an error. The first
// decision's DecidedBy/DecidedAt are never touched.
func (s *ServiceImpl) Decide(ctx context.Context, req leave.DecideRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	_, companyID, userID, err := claimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if userID == "" {
		return leave.RequestResponse{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	updated, err := s.repo.Decide(ctx, req.ID, companyID, leave.Status(req.Status), userID, s.clock.Now())
	if err != nil {
		if errors.Is(err, leave.ErrAlreadyProcessed) {
			current, getErr := s.repo.GetByID(ctx, req.ID, companyID)
			if getErr != nil {
				return leave.RequestResponse{}, fmt.Errorf("failed to refresh processed leave request: %w", getErr)
			}
			return mapRequestToResponse(current), leave.ErrAlreadyProcessed
		}
		return leave.RequestResponse{}, err
	}

	return mapRequestToResponse(updated), nil
}

// GetMyRequests implements leave.Service.
func (s *ServiceImpl) GetMyRequests(ctx context.Context, filter leave.MyFilter) (leave.ListRequestsResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListRequestsResponse{}, err
	}

	employeeID, companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListRequestsResponse{}, err
	}
	if employeeID == "" {
		return leave.ListRequestsResponse{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	requests, total, err := s.repo.ListByEmployee(ctx, employeeID, filter, companyID)
	if err != nil {
		return leave.ListRequestsResponse{}, fmt.Errorf("failed to list my leave requests: %w", err)
	}

	return buildListResponse(requests, total, filter.Page, filter.Limit), nil
}

// ListRequests implements leave.Service.
func (s *ServiceImpl) ListRequests(ctx context.Context, filter leave.Filter) (leave.ListRequestsResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListRequestsResponse{}, err
	}

	_, companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListRequestsResponse{}, err
	}

	requests, total, err := s.repo.List(ctx, filter, companyID)
	if err != nil {
		return leave.ListRequestsResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return buildListResponse(requests, total, filter.Page, filter.Limit), nil
}

// GetRequest implements leave.Service.
func (s *ServiceImpl) GetRequest(ctx context.Context, id string) (leave.RequestResponse, error) {
	_, companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	request, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	return mapRequestToResponse(request), nil
}

func buildListResponse(requests []leave.Request, total int64, page, limit int) leave.ListRequestsResponse {
	responses := make([]leave.RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, mapRequestToResponse(request))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListRequestsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func mapRequestToResponse(request leave.Request) leave.RequestResponse {
	return leave.RequestResponse{
		ID:           request.ID,
		EmployeeID:   request.EmployeeID,
		EmployeeName: request.EmployeeName,
		Type:         string(request.Type),
		StartDate:    request.StartDate.Format("2006-01-02"),
		EndDate:      request.EndDate.Format("2006-01-02"),
		Reason:       request.Reason,
		Status:       string(request.Status),
		Decided:      request.Decided(),
		AppliedAt:    request.AppliedAt.Format("2006-01-02 15:04:05"),
		DecidedBy:    request.DecidedBy,
		DecidedAt:    timePtrToString(request.DecidedAt),
		CreatedAt:    request.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    request.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
