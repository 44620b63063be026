package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookTokenRequest struct {
	DepartmentID uuid.UUID `json:"department_id" validate:"required"`
	SlotID       uuid.UUID `json:"slot_id" validate:"required"`
	BookingDate  string    `json:"booking_date" validate:"required,datetime=2006-01-02"`
}

type UpdateTokenStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=called completed cancelled"`
}

// Response DTOs

type TokenResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	DepartmentID   uuid.UUID `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	SlotID         uuid.UUID `json:"slot_id"`
	SlotTime       string    `json:"slot_time"`
	TokenNumber    string    `json:"token_number"`
	BookingDate    string    `json:"booking_date"`
	Status         string    `json:"status"`
	QRData         string    `json:"qr_data"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Total  int             `json:"total"`
}
