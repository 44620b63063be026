package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateSlotRequest struct {
	DepartmentID uuid.UUID `json:"department_id" validate:"required"`
	Date         string    `json:"date" validate:"required,datetime=2006-01-02"`
	TimeRange    string    `json:"time_range" validate:"required,max=20"`
	MaxCapacity  int       `json:"max_capacity" validate:"required,min=1"`
}

type UpdateSlotRequest struct {
	TimeRange   string `json:"time_range" validate:"omitempty,max=20"`
	MaxCapacity *int   `json:"max_capacity" validate:"omitempty,min=1"`
	ManualBlock *bool  `json:"manual_block"`
}

// Response DTOs

type SlotResponse struct {
	ID           uuid.UUID `json:"id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Date         string    `json:"date"`
	TimeRange    string    `json:"time_range"`
	MaxCapacity  int       `json:"max_capacity"`
	BookedCount  int       `json:"booked_count"`
	Remaining    int       `json:"remaining"`
	Blocked      bool      `json:"blocked"`
	ManualBlock  bool      `json:"manual_block"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}
