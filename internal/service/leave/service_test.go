package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempohq/timeclock-backend-go/internal/domain/leave"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/clock"
)

const (
	testEmployeeID = "11111111-1111-4111-8111-111111111111"
	testCompanyID  = "22222222-2222-4222-8222-222222222222"
	testUserID     = "33333333-3333-4333-8333-333333333333"
)

// fakeLeaveRepo keeps requests in memory. Decide is serialized the same
// way the single-statement SQL compare-and-swap is, so concurrent
// deciders contend on it like they would on the database row.
type fakeLeaveRepo struct {
	mu       sync.Mutex
	requests map[string]leave.Request
	nextID   int
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: map[string]leave.Request{}}
}

func (r *fakeLeaveRepo) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	request.ID = string(rune('a' + r.nextID))
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = request
	return request, nil
}

func (r *fakeLeaveRepo) GetByID(ctx context.Context, id string, companyID string) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok || request.CompanyID != companyID {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return request, nil
}

func (r *fakeLeaveRepo) Decide(ctx context.Context, id string, companyID string, status leave.Status, decidedBy string, decidedAt time.Time) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok || request.CompanyID != companyID {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	if request.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrAlreadyProcessed
	}
	request.Status = status
	request.DecidedBy = &decidedBy
	request.DecidedAt = &decidedAt
	request.UpdatedAt = time.Now()
	r.requests[id] = request
	return request, nil
}

func (r *fakeLeaveRepo) List(ctx context.Context, filter leave.Filter, companyID string) ([]leave.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leave.Request
	for _, request := range r.requests {
		if request.CompanyID == companyID {
			out = append(out, request)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeLeaveRepo) ListByEmployee(ctx context.Context, employeeID string, filter leave.MyFilter, companyID string) ([]leave.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leave.Request
	for _, request := range r.requests {
		if request.EmployeeID == employeeID && request.CompanyID == companyID {
			out = append(out, request)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeLeaveRepo) ListApprovedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leave.Request
	for _, request := range r.requests {
		if request.EmployeeID == employeeID && request.CompanyID == companyID &&
			request.Status == leave.StatusApproved &&
			!request.EndDate.Before(from) && !request.StartDate.After(to) {
			out = append(out, request)
		}
	}
	return out, nil
}

func authContext(t *testing.T) context.Context {
	t.Helper()

	token := jwt.New()
	require.NoError(t, token.Set("user_id", testUserID))
	require.NoError(t, token.Set("employee_id", testEmployeeID))
	require.NoError(t, token.Set("company_id", testCompanyID))
	require.NoError(t, token.Set("role", "admin"))
	require.NoError(t, token.Set("type", "access"))

	return jwtauth.NewContext(context.Background(), token, nil)
}

func newTestService() (leave.Service, *fakeLeaveRepo, clock.Fixed) {
	repo := newFakeLeaveRepo()
	clk := clock.Fixed{T: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}
	return NewService(repo, clk), repo, clk
}

func TestSubmit(t *testing.T) {
	ctx := authContext(t)
	svc, _, clk := newTestService()

	result, err := svc.Submit(ctx, leave.SubmitRequest{
		Type:      "vacation",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-05",
		Reason:    "family trip",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, testEmployeeID, result.EmployeeID)
	assert.Equal(t, "2025-04-01", result.StartDate)
	assert.Equal(t, "2025-04-05", result.EndDate)
	assert.Equal(t, clk.T.Format("2006-01-02 15:04:05"), result.AppliedAt)
	assert.False(t, result.Decided)
	assert.Nil(t, result.DecidedBy)
	assert.Nil(t, result.DecidedAt)
}

func TestSubmitValidation(t *testing.T) {
	ctx := authContext(t)
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		req  leave.SubmitRequest
	}{
		{
			name: "missing reason",
			req:  leave.SubmitRequest{Type: "sick", StartDate: "2025-04-01", EndDate: "2025-04-02"},
		},
		{
			name: "end before start",
			req:  leave.SubmitRequest{Type: "sick", StartDate: "2025-04-05", EndDate: "2025-04-01", Reason: "x"},
		},
		{
			name: "unknown type",
			req:  leave.SubmitRequest{Type: "sabbatical", StartDate: "2025-04-01", EndDate: "2025-04-02", Reason: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.req)
			assert.Error(t, err)
		})
	}
}

func TestDecideApprove(t *testing.T) {
	ctx := authContext(t)
	svc, _, clk := newTestService()

	submitted, err := svc.Submit(ctx, leave.SubmitRequest{
		Type:      "unpaid",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-01",
		Reason:    "personal matters",
	})
	require.NoError(t, err)

	result, err := svc.Decide(ctx, leave.DecideRequest{ID: submitted.ID, Status: "approved"})
	require.NoError(t, err)

	assert.Equal(t, "approved", result.Status)
	assert.True(t, result.Decided)
	require.NotNil(t, result.DecidedBy)
	assert.Equal(t, testUserID, *result.DecidedBy)
	require.NotNil(t, result.DecidedAt)
	assert.Equal(t, clk.T.Format("2006-01-02 15:04:05"), *result.DecidedAt)
}

func TestDecideIdempotent(t *testing.T) {
	ctx := authContext(t)
	svc, repo, _ := newTestService()

	submitted, err := svc.Submit(ctx, leave.SubmitRequest{
		Type:      "vacation",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-02",
		Reason:    "trip",
	})
	require.NoError(t, err)

	first, err := svc.Decide(ctx, leave.DecideRequest{ID: submitted.ID, Status: "approved"})
	require.NoError(t, err)

	// The second decision loses the compare-and-swap: it gets the current
	// state back with ErrAlreadyProcessed and changes nothing, even when
	// it asked for the opposite outcome.
	second, err := svc.Decide(ctx, leave.DecideRequest{ID: submitted.ID, Status: "rejected"})
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
	assert.Equal(t, "approved", second.Status)
	assert.Equal(t, *first.DecidedAt, *second.DecidedAt)
	assert.Equal(t, *first.DecidedBy, *second.DecidedBy)

	stored, err := repo.GetByID(ctx, submitted.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, stored.Status)
}

// TestDecideConcurrentSingleWinner races two deciders with opposite
// outcomes at the same pending request. Exactly one may win; the loser
// gets ErrAlreadyProcessed plus the winner's state, and the stored
// request reflects the winning decision only.
func TestDecideConcurrentSingleWinner(t *testing.T) {
	ctx := authContext(t)
	svc, repo, _ := newTestService()

	submitted, err := svc.Submit(ctx, leave.SubmitRequest{
		Type:      "vacation",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-02",
		Reason:    "trip",
	})
	require.NoError(t, err)

	type outcome struct {
		status string
		result leave.RequestResponse
		err    error
	}

	start := make(chan struct{})
	results := make(chan outcome, 2)

	var wg sync.WaitGroup
	for _, status := range []string{"approved", "rejected"} {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			<-start
			result, err := svc.Decide(ctx, leave.DecideRequest{ID: submitted.ID, Status: status})
			results <- outcome{status: status, result: result, err: err}
		}(status)
	}
	close(start)
	wg.Wait()
	close(results)

	var winners, losers []outcome
	for o := range results {
		if o.err == nil {
			winners = append(winners, o)
		} else {
			losers = append(losers, o)
		}
	}

	require.Len(t, winners, 1)
	require.Len(t, losers, 1)
	assert.ErrorIs(t, losers[0].err, leave.ErrAlreadyProcessed)

	// Both callers end up seeing the winning decision.
	assert.Equal(t, winners[0].status, winners[0].result.Status)
	assert.Equal(t, winners[0].status, losers[0].result.Status)

	stored, err := repo.GetByID(ctx, submitted.ID, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, leave.Status(winners[0].status), stored.Status)
	assert.True(t, stored.Decided())
}

func TestDecideNotFound(t *testing.T) {
	ctx := authContext(t)
	svc, _, _ := newTestService()

	_, err := svc.Decide(ctx, leave.DecideRequest{ID: "missing", Status: "approved"})
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

func TestGetMyRequests(t *testing.T) {
	ctx := authContext(t)
	svc, _, _ := newTestService()

	_, err := svc.Submit(ctx, leave.SubmitRequest{
		Type:      "sick",
		StartDate: "2025-04-01",
		EndDate:   "2025-04-01",
		Reason:    "flu",
	})
	require.NoError(t, err)

	results, err := svc.GetMyRequests(ctx, leave.MyFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), results.TotalCount)
	assert.Equal(t, "1-1 of 1", results.Showing)
	assert.Len(t, results.Requests, 1)
}
