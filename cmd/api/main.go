package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tempohq/timeclock-backend-go/internal/config"
	appHTTP "github.com/tempohq/timeclock-backend-go/internal/handler/http"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/clock"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/cron"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/database"
	"github.com/tempohq/timeclock-backend-go/internal/pkg/jwt"
	"github.com/tempohq/timeclock-backend-go/internal/repository/postgresql"
	attendanceService "github.com/tempohq/timeclock-backend-go/internal/service/attendance"
	leaveService "github.com/tempohq/timeclock-backend-go/internal/service/leave"
	salaryService "github.com/tempohq/timeclock-backend-go/internal/service/salary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	systemClock := clock.System()

	attendanceSvc := attendanceService.NewService(attendanceRepo, systemClock, cfg.Payroll)
	leaveSvc := leaveService.NewService(leaveRequestRepo, systemClock)
	salarySvc := salaryService.NewService(attendanceRepo, leaveRequestRepo, employeeRepo, cfg.Payroll)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	salaryHandler := appHTTP.NewSalaryHandler(salarySvc)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(db, attendanceRepo, systemClock, cfg.Payroll)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		jwtService,
		attendanceHandler,
		leaveHandler,
		salaryHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
