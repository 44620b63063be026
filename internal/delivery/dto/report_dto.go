package dto

import "github.com/google/uuid"

// Response DTOs

type DepartmentTokenCount struct {
	DepartmentID   uuid.UUID `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	Count          int       `json:"count"`
}

type TokenReportResponse struct {
	Start        string                 `json:"start"`
	End          string                 `json:"end"`
	Total        int                    `json:"total"`
	ByStatus     map[string]int         `json:"by_status"`
	ByDepartment []DepartmentTokenCount `json:"by_department"`
	Tokens       []TokenResponse        `json:"tokens"`
}
