package handler

import (
	"net/http"
	"strconv"

	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

// GetAuditLogs supports ?action= to filter and ?page= for pagination.
func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")

	page := 1
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil || parsed < 1 {
			response.Error(w, http.StatusBadRequest, "Invalid page number", nil)
			return
		}
		page = parsed
	}

	logs, err := h.auditLogUsecase.GetAuditLogs(r.Context(), action, page)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
