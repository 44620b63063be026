package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenCounter holds the per-(department, booking date) serial counter.
// The row is upserted and incremented inside the same transaction that
// creates the token, so two concurrent bookings can never mint the same
// serial number.
type TokenCounter struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_counters_dept_date" json:"department_id"`
	BookingDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_counters_dept_date" json:"booking_date"`
	LastSerial   int       `gorm:"not null;default:0" json:"last_serial"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenCounter) TableName() string {
	return "token_counters"
}
