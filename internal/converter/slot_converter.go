package converter

import (
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/domain/entity"
)

// SlotToResponse converts a Slot entity to SlotResponse DTO
func SlotToResponse(slot *entity.Slot) *dto.SlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotResponse{
		ID:           slot.ID,
		DepartmentID: slot.DepartmentID,
		Date:         slot.Date.Format("2006-01-02"),
		TimeRange:    slot.TimeRange,
		MaxCapacity:  slot.MaxCapacity,
		BookedCount:  slot.BookedCount,
		Remaining:    slot.Remaining(),
		Blocked:      slot.Blocked,
		ManualBlock:  slot.ManualBlock,
		CreatedAt:    slot.CreatedAt,
		UpdatedAt:    slot.UpdatedAt,
	}
}

// SlotsToResponses converts a slice of Slot entities to SlotResponse DTOs
func SlotsToResponses(slots []entity.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, slot := range slots {
		resp := SlotToResponse(&slot)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
