package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/response"
	"gov-token-booking/pkg/validator"

	"github.com/gorilla/mux"
)

type HolidayHandler struct {
	holidayUsecase usecase.HolidayUsecase
	validator      *validator.CustomValidator
}

func NewHolidayHandler(holidayUsecase usecase.HolidayUsecase, validator *validator.CustomValidator) *HolidayHandler {
	return &HolidayHandler{
		holidayUsecase: holidayUsecase,
		validator:      validator,
	}
}

func (h *HolidayHandler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	holiday, err := h.holidayUsecase.CreateHoliday(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrHolidayAlreadyExists:
			response.Conflict(w, "Holiday already exists for this date")
		default:
			response.InternalServerError(w, "Failed to create holiday")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Holiday created successfully", holiday)
}

func (h *HolidayHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.holidayUsecase.ListHolidays(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get holidays")
		return
	}

	response.Success(w, http.StatusOK, "Holidays retrieved successfully", holidays)
}

func (h *HolidayHandler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	holidayID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid holiday ID", nil)
		return
	}

	err = h.holidayUsecase.DeleteHoliday(r.Context(), holidayID)
	if err != nil {
		switch err {
		case usecase.ErrHolidayNotFound:
			response.NotFound(w, "Holiday not found")
		default:
			response.InternalServerError(w, "Failed to delete holiday")
		}
		return
	}

	response.Success(w, http.StatusOK, "Holiday deleted successfully", nil)
}
