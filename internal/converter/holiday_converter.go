package converter

import (
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/domain/entity"
)

// HolidayToResponse converts a Holiday entity to HolidayResponse DTO
func HolidayToResponse(holiday *entity.Holiday) *dto.HolidayResponse {
	if holiday == nil {
		return nil
	}

	return &dto.HolidayResponse{
		ID:        holiday.ID,
		Date:      holiday.Date.Format("2006-01-02"),
		Reason:    holiday.Reason,
		CreatedAt: holiday.CreatedAt,
	}
}

// HolidaysToResponses converts Holiday entities to DTOs
func HolidaysToResponses(holidays []entity.Holiday) []dto.HolidayResponse {
	responses := make([]dto.HolidayResponse, len(holidays))
	for i, holiday := range holidays {
		resp := HolidayToResponse(&holiday)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
