package handler

import (
	"net/http"
	"time"

	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/response"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
	}
}

// GetTokenReport aggregates tokens over ?start=YYYY-MM-DD&end=YYYY-MM-DD,
// defaulting to the current day.
func (h *ReportHandler) GetTokenReport(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC().Format("2006-01-02")
	startParam := r.URL.Query().Get("start")
	if startParam == "" {
		startParam = today
	}
	endParam := r.URL.Query().Get("end")
	if endParam == "" {
		endParam = today
	}

	start, err := time.Parse("2006-01-02", startParam)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid start date, use YYYY-MM-DD", nil)
		return
	}
	end, err := time.Parse("2006-01-02", endParam)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid end date, use YYYY-MM-DD", nil)
		return
	}

	report, err := h.reportUsecase.TokenReport(r.Context(), start, end)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDateRange:
			response.Error(w, http.StatusBadRequest, "End date must not be before start date", nil)
		case usecase.ErrDateRangeTooWide:
			response.Error(w, http.StatusBadRequest, "Date range exceeds the maximum of 92 days", nil)
		default:
			response.InternalServerError(w, "Failed to build report")
		}
		return
	}

	response.Success(w, http.StatusOK, "Report generated successfully", report)
}
