package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tempohq/timeclock-backend-go/internal/domain/salary"
	"github.com/tempohq/timeclock-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SalaryHandler interface {
	GetBreakdown(w http.ResponseWriter, r *http.Request)
	ExportBreakdown(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService salary.Service
}

func NewSalaryHandler(salaryService salary.Service) SalaryHandler {
	return &salaryHandlerImpl{
		salaryService: salaryService,
	}
}

func breakdownQueryFromRequest(r *http.Request) salary.BreakdownQuery {
	return salary.BreakdownQuery{
		EmployeeID: chi.URLParam(r, "employeeID"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}
}

// GetBreakdown implements SalaryHandler.
func (h *salaryHandlerImpl) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	query := breakdownQueryFromRequest(r)

	result, err := h.salaryService.GetBreakdown(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportBreakdown implements SalaryHandler.
func (h *salaryHandlerImpl) ExportBreakdown(w http.ResponseWriter, r *http.Request) {
	query := breakdownQueryFromRequest(r)

	filename, content, err := h.salaryService.ExportBreakdown(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, filename, xlsxContentType, content)
}
