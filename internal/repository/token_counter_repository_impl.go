package repository

import (
	"time"

	domainRepo "gov-token-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenCounterRepository struct{}

func NewTokenCounterRepository() domainRepo.TokenCounterRepository {
	return &tokenCounterRepository{}
}

// NextSerial upserts the (department, date) counter row and returns the new
// serial. Postgres serializes the ON CONFLICT update per row, so inside the
// booking transaction the serial is both unique and gapless under contention.
func (r *tokenCounterRepository) NextSerial(db *gorm.DB, departmentID uuid.UUID, bookingDate time.Time) (int, error) {
	var serial int
	err := db.Raw(`
		INSERT INTO token_counters (department_id, booking_date, last_serial, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (department_id, booking_date)
		DO UPDATE SET last_serial = token_counters.last_serial + 1, updated_at = NOW()
		RETURNING last_serial
	`, departmentID, bookingDate).Scan(&serial).Error
	if err != nil {
		return 0, err
	}
	return serial, nil
}
