package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/response"
	"gov-token-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type TokenHandler struct {
	bookingUsecase usecase.TokenBookingUsecase
	statusUsecase  usecase.TokenStatusUsecase
	holidayUsecase usecase.HolidayUsecase
	validator      *validator.CustomValidator
}

func NewTokenHandler(
	bookingUsecase usecase.TokenBookingUsecase,
	statusUsecase usecase.TokenStatusUsecase,
	holidayUsecase usecase.HolidayUsecase,
	validator *validator.CustomValidator,
) *TokenHandler {
	return &TokenHandler{
		bookingUsecase: bookingUsecase,
		statusUsecase:  statusUsecase,
		holidayUsecase: holidayUsecase,
		validator:      validator,
	}
}

func (h *TokenHandler) BookToken(w http.ResponseWriter, r *http.Request) {
	var req dto.BookTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	// The date is guaranteed parseable by the validator tag
	bookingDate, _ := time.Parse("2006-01-02", req.BookingDate)
	isHoliday, err := h.holidayUsecase.IsHoliday(r.Context(), bookingDate)
	if err != nil {
		response.InternalServerError(w, "Failed to check booking date")
		return
	}
	if isHoliday {
		response.Error(w, http.StatusBadRequest, "Bookings are not accepted on holidays", nil)
		return
	}

	token, err := h.bookingUsecase.BookToken(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDepartmentNotFound:
			response.NotFound(w, "Department not found")
		case usecase.ErrDepartmentInactive:
			response.Error(w, http.StatusBadRequest, "Department is not accepting bookings", nil)
		case usecase.ErrSlotNotFound:
			response.NotFound(w, "Slot not found")
		case usecase.ErrSlotMismatch:
			response.Error(w, http.StatusBadRequest, "Slot does not match the given department and date", nil)
		case usecase.ErrPastBookingDate:
			response.Error(w, http.StatusBadRequest, "Cannot book a token for a past date", nil)
		case usecase.ErrSlotBlocked:
			response.Conflict(w, "Slot is blocked")
		case usecase.ErrSlotFull:
			response.Conflict(w, "Slot is fully booked")
		case usecase.ErrConcurrencyConflict:
			response.Conflict(w, "Slot is busy, please retry")
		default:
			response.InternalServerError(w, "Failed to book token")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Token booked successfully", token)
}

func (h *TokenHandler) GetMyTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.bookingUsecase.GetMyTokens(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get tokens")
		return
	}

	response.Success(w, http.StatusOK, "Tokens retrieved successfully", tokens)
}

func (h *TokenHandler) CancelToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid token ID", nil)
		return
	}

	err = h.bookingUsecase.CancelToken(r.Context(), tokenID)
	if err != nil {
		switch err {
		case usecase.ErrTokenNotFound:
			response.NotFound(w, "Token not found")
		case usecase.ErrTokenNotOwned:
			response.Forbidden(w, "Token does not belong to you")
		case usecase.ErrInvalidStatusTransition:
			response.Conflict(w, "Token can no longer be cancelled")
		case usecase.ErrConcurrencyConflict:
			response.Conflict(w, "Token is busy, please retry")
		default:
			response.InternalServerError(w, "Failed to cancel token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token cancelled successfully", nil)
}

// UpdateTokenStatus is the staff counter action: call or complete a token.
// A "cancelled" status is routed through the cancellation path so the slot
// seat is released exactly once.
func (h *TokenHandler) UpdateTokenStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid token ID", nil)
		return
	}

	var req dto.UpdateTokenStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if req.Status == string(entity.TokenStatusCancelled) {
		h.CancelToken(w, r)
		return
	}

	token, err := h.statusUsecase.UpdateStatus(r.Context(), tokenID, entity.TokenStatus(req.Status))
	if err != nil {
		switch err {
		case usecase.ErrTokenNotFound:
			response.NotFound(w, "Token not found")
		case usecase.ErrInvalidStatusTransition:
			response.Conflict(w, "Invalid status transition")
		default:
			response.InternalServerError(w, "Failed to update token status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token status updated successfully", token)
}

// GetDepartmentTokens serves the staff board: every token for one department
// and day.
func (h *TokenHandler) GetDepartmentTokens(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuid.Parse(r.URL.Query().Get("department_id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid or missing department_id", nil)
		return
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		dateParam = time.Now().UTC().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD", nil)
		return
	}

	tokens, err := h.statusUsecase.GetTokensByDepartmentAndDate(r.Context(), departmentID, date)
	if err != nil {
		response.InternalServerError(w, "Failed to get tokens")
		return
	}

	response.Success(w, http.StatusOK, "Tokens retrieved successfully", tokens)
}
