package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempohq/timeclock-backend-go/internal/config"
	"github.com/tempohq/timeclock-backend-go/internal/domain/attendance"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/clock"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/database"
	"github.com/tempohq/timeclock-backend-go/internal/repository/postgresql"
)

// staleAfter is how long an entry may stay open past check-in before the
// janitor closes it. Long enough that a legitimate double shift with
// overtime is never cut short.
const staleAfter = 16 * time.Hour

type AttendanceJobs struct {
	db             *database.DB
	attendanceRepo attendance.Repository
	clock          clock.Clock
	policy         config.PayrollConfig
}

func NewAttendanceJobs(db *database.DB, attendanceRepo attendance.Repository, clk clock.Clock, policy config.PayrollConfig) *AttendanceJobs {
	return &AttendanceJobs{
		db:             db,
		attendanceRepo: attendanceRepo,
		clock:          clk,
		policy:         policy,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_entries", 1*time.Hour, j.AutoCloseStaleEntries)
}

// AutoCloseStaleEntries checks out entries whose check-in is more than
// staleAfter in the past. Any open break is ended at the cutoff first so
// the entry finalizes cleanly for payroll. Each entry goes through the
// same version-guarded update as a normal check-out; an entry the
// employee closes concurrently just loses the race and is skipped.
func (j *AttendanceJobs) AutoCloseStaleEntries(ctx context.Context) error {
	now := j.clock.Now()
	cutoff := now.Add(-staleAfter)

	stale, err := j.attendanceRepo.ListStaleOpen(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to get stale open entries: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	closedCount := 0
	for _, entry := range stale {
		// Ending the break and checking out are one atomic close; the
		// version guard inside still makes a concurrent employee check-out
		// win cleanly.
		err := postgresql.WithTransaction(ctx, j.db, func(txCtx context.Context) error {
			return j.closeEntry(txCtx, entry)
		})
		if err != nil {
			slog.Error("Cron: Failed to auto-close entry",
				"entry_id", entry.ID,
				"employee_id", entry.EmployeeID,
				"error", err)
			continue
		}

		closedCount++
	}

	slog.Info("Cron: Auto-closed stale entries", "count", closedCount)
	return nil
}

func (j *AttendanceJobs) closeEntry(ctx context.Context, entry attendance.TimeEntry) error {
	closeAt := entry.CheckInAt.Add(staleAfter)

	if open := entry.OpenBreak(); open != nil {
		endedAt := closeAt
		if endedAt.Before(open.StartedAt) {
			endedAt = open.StartedAt
		}
		open.EndedAt = &endedAt
		open.Minutes = int(endedAt.Sub(open.StartedAt).Round(time.Minute).Minutes())
	}

	breakMinutes := entry.TotalBreakMinutes()
	workHours := closeAt.Sub(*entry.CheckInAt).Hours() - float64(breakMinutes)/60
	if workHours < 0 {
		workHours = 0
	}
	overtimeHours := workHours - j.policy.StandardDayHours
	if overtimeHours < 0 {
		overtimeHours = 0
	}

	entry.CheckOutAt = &closeAt
	entry.BreakMinutes = breakMinutes
	entry.WorkHours = &workHours
	entry.OvertimeHours = &overtimeHours

	_, err := j.attendanceRepo.Update(ctx, entry)
	return err
}
