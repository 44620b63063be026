package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDepartmentRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Code     string `json:"code" validate:"required,min=2,max=10,alphanum"`
	Location string `json:"location" validate:"max=200"`
}

type UpdateDepartmentRequest struct {
	Name     string `json:"name" validate:"omitempty,max=150"`
	Location string `json:"location" validate:"omitempty,max=200"`
	IsActive *bool  `json:"is_active"`
}

// Response DTOs

type DepartmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}
