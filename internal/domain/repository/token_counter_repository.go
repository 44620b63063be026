package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenCounterRepository interface {
	// NextSerial increments and returns the serial for the given department
	// and booking date. Must be called inside the booking transaction so the
	// serial is allocated atomically with the token insert.
	NextSerial(db *gorm.DB, departmentID uuid.UUID, bookingDate time.Time) (int, error)
}
