package repository

import (
	"time"

	"gov-token-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type HolidayRepository interface {
	Create(db *gorm.DB, holiday *entity.Holiday) error
	FindAll(db *gorm.DB) ([]entity.Holiday, error)
	ExistsByDate(db *gorm.DB, date time.Time) (bool, error)
	Delete(db *gorm.DB, id int64) (int64, error)
}
