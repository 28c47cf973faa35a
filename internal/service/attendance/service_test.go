package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
)

const (
	testEmployeeID = "11111111-1111-4111-8111-111111111111"
	testCompanyID  = "22222222-2222-4222-8222-222222222222"
)

// stepClock hands out a settable instant so a test can walk an entry
// through a whole working day.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	return c.t
}

func (c *stepClock) Set(t time.Time) {
	c.t = t
}

// fakeAttendanceRepo keeps entries in memory and enforces the same
// guarantees the SQL layer does: one entry per employee per day and
// version-guarded updates.
type fakeAttendanceRepo struct {
	entries map[string]attendance.TimeEntry
	nextID  int

	// When set, the next Update fails as if another writer bumped the
	// row version first.
	conflictNextUpdate bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{entries: map[string]attendance.TimeEntry{}}
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	for _, existing := range r.entries {
		if existing.EmployeeID == entry.EmployeeID && existing.Date.Equal(entry.Date) {
			return attendance.TimeEntry{}, attendance.ErrAlreadyCheckedIn
		}
	}
	r.nextID++
	entry.ID = string(rune('a' + r.nextID))
	entry.Version = 1
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.TimeEntry, error) {
	entry, ok := r.entries[id]
	if !ok || entry.CompanyID != companyID {
		return attendance.TimeEntry{}, attendance.ErrEntryNotFound
	}
	return entry, nil
}

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.TimeEntry, error) {
	for _, entry := range r.entries {
		if entry.EmployeeID == employeeID && entry.Date.Equal(date) && entry.CompanyID == companyID {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, entry attendance.TimeEntry) (attendance.TimeEntry, error) {
	if r.conflictNextUpdate {
		r.conflictNextUpdate = false
		return attendance.TimeEntry{}, attendance.ErrVersionConflict
	}
	stored, ok := r.entries[entry.ID]
	if !ok || stored.CompanyID != entry.CompanyID {
		return attendance.TimeEntry{}, attendance.ErrEntryNotFound
	}
	if stored.Version != entry.Version {
		return attendance.TimeEntry{}, attendance.ErrVersionConflict
	}
	entry.Version++
	entry.UpdatedAt = time.Now()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.TimeEntry, int64, error) {
	var out []attendance.TimeEntry
	for _, entry := range r.entries {
		if entry.CompanyID == companyID {
			out = append(out, entry)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyFilter, companyID string) ([]attendance.TimeEntry, int64, error) {
	var out []attendance.TimeEntry
	for _, entry := range r.entries {
		if entry.EmployeeID == employeeID && entry.CompanyID == companyID {
			out = append(out, entry)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) ListFinalizedRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.TimeEntry, error) {
	var out []attendance.TimeEntry
	for _, entry := range r.entries {
		if entry.EmployeeID == employeeID && entry.CompanyID == companyID &&
			entry.CheckOutAt != nil && !entry.Date.Before(from) && !entry.Date.After(to) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListStaleOpen(ctx context.Context, olderThan time.Time) ([]attendance.TimeEntry, error) {
	var out []attendance.TimeEntry
	for _, entry := range r.entries {
		if entry.CheckInAt != nil && entry.CheckOutAt == nil && entry.CheckInAt.Before(olderThan) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func authContext(t *testing.T, employeeID, companyID string) context.Context {
	t.Helper()

	token := jwt.New()
	require.NoError(t, token.Set("user_id", "33333333-3333-4333-8333-333333333333"))
	require.NoError(t, token.Set("employee_id", employeeID))
	require.NoError(t, token.Set("company_id", companyID))
	require.NoError(t, token.Set("role", "employee"))
	require.NoError(t, token.Set("type", "access"))

	return jwtauth.NewContext(context.Background(), token, nil)
}

func testPolicy() config.PayrollConfig {
	return config.PayrollConfig{
		StandardDayHours:    8,
		OvertimeMultiplier:  decimal.RequireFromString("1.5"),
		TaxRate:             decimal.RequireFromString("0.20"),
		UnpaidLeaveDayHours: decimal.NewFromInt(8),
	}
}

func newTestService(clk *stepClock) (attendance.Service, *fakeAttendanceRepo) {
	repo := newFakeAttendanceRepo()
	svc := NewService(repo, clk, testPolicy())
	return svc, repo
}

func TestCheckIn(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	result, err := svc.CheckIn(ctx, attendance.CheckInRequest{Latitude: 1.3, Longitude: 103.8})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", result.Date)
	require.NotNil(t, result.CheckInAt)
	assert.Equal(t, "2025-03-10 09:00:00", *result.CheckInAt)
	assert.Nil(t, result.CheckOutAt)
	assert.False(t, result.OnBreak)
	assert.False(t, result.Finalized)
}

func TestCheckInTwiceSameDay(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(clk.t.Add(5 * time.Minute))
	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInNextDayAllowed(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC))
	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{})
	assert.NoError(t, err)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutTwice(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

// TestStaleVersionUpdateConflicts simulates a concurrent writer bumping
// the row version between the read and the write of a mutation. The
// conflict must surface unchanged so the handler can map it to 409, and
// a retry against the fresh version must succeed.
func TestStaleVersionUpdateConflicts(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, repo := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC))
	repo.conflictNextUpdate = true
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "lunch"})
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	// The losing write must not have changed the stored entry.
	stored, err := repo.GetByEmployeeAndDate(ctx, testEmployeeID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.OpenBreak())

	clk.Set(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	repo.conflictNextUpdate = true
	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	// A client retry re-reads the entry and succeeds.
	result, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.True(t, result.Finalized)
}

func TestCheckOutWithOpenBreakRejected(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, repo := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "lunch"})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrBreakInProgress)

	// The rejected check-out must not have touched the stored entry.
	stored, err := repo.GetByEmployeeAndDate(ctx, testEmployeeID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.CheckOutAt)
	assert.NotNil(t, stored.OpenBreak())
}

func TestStartBreakGuards(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	// Not checked in yet.
	_, err := svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "lunch"})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC))
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "lunch"})
	require.NoError(t, err)

	// Only one open break at a time.
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "rest"})
	assert.ErrorIs(t, err, attendance.ErrBreakInProgress)
}

func TestEndBreakWithoutOpenBreak(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	_, err = svc.EndBreak(ctx, attendance.EndBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoBreakInProgress)
}

// TestFullDayDerivation walks an entry through a whole day: check-in at
// 09:00, lunch 11:30-12:00, a second break 14:00-14:15, check-out at
// 18:00. Elapsed 9h minus 45m of breaks leaves 8.25h of work, 0.25h of
// which is overtime past the 8h standard day.
func TestFullDayDerivation(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC))
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "lunch"})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	result, err := svc.EndBreak(ctx, attendance.EndBreakRequest{})
	require.NoError(t, err)
	assert.Equal(t, 30, result.BreakMinutes)

	clk.Set(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{Type: "rest"})
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 14, 15, 0, 0, time.UTC))
	result, err = svc.EndBreak(ctx, attendance.EndBreakRequest{})
	require.NoError(t, err)
	assert.Equal(t, 45, result.BreakMinutes)

	clk.Set(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	result, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)

	require.NotNil(t, result.WorkHours)
	require.NotNil(t, result.OvertimeHours)
	assert.InDelta(t, 8.25, *result.WorkHours, 1e-9)
	assert.InDelta(t, 0.25, *result.OvertimeHours, 1e-9)
	assert.Equal(t, 45, result.BreakMinutes)
	assert.True(t, result.Finalized)
	assert.Len(t, result.Breaks, 2)
}

func TestBreaksLongerThanElapsedClampToZero(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, repo := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	// Force break minutes beyond elapsed time directly on the stored
	// entry; derivation must clamp rather than go negative.
	stored, err := repo.GetByEmployeeAndDate(ctx, testEmployeeID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), testCompanyID)
	require.NoError(t, err)
	endedAt := clk.t.Add(10 * time.Minute)
	stored.Breaks = []attendance.Break{{StartedAt: clk.t, EndedAt: &endedAt, Type: attendance.BreakTypeLunch, Minutes: 600}}
	_, err = repo.Update(ctx, *stored)
	require.NoError(t, err)

	clk.Set(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	result, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)

	require.NotNil(t, result.WorkHours)
	assert.Zero(t, *result.WorkHours)
	require.NotNil(t, result.OvertimeHours)
	assert.Zero(t, *result.OvertimeHours)
}

func TestGetMyEntriesPagination(t *testing.T) {
	ctx := authContext(t, testEmployeeID, testCompanyID)
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	results, err := svc.GetMyEntries(ctx, attendance.MyFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), results.TotalCount)
	assert.Equal(t, 1, results.Page)
	assert.Equal(t, 20, results.Limit)
	assert.Equal(t, "1-1 of 1", results.Showing)
	assert.Len(t, results.Entries, 1)
}

func TestMissingClaimsRejected(t *testing.T) {
	clk := &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(clk)

	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{})
	assert.Error(t, err)
}
