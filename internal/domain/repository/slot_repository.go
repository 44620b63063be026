package repository

import (
	"time"

	"gov-token-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotRepository interface {
	Create(db *gorm.DB, slot *entity.Slot) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Slot, error)
	FindByDepartmentAndDate(db *gorm.DB, departmentID uuid.UUID, date time.Time) ([]entity.Slot, error)
	FindOpenFromDate(db *gorm.DB, from time.Time, limit, offset int) ([]entity.Slot, error)
	CountByDepartment(db *gorm.DB, departmentID uuid.UUID) (int64, error)
	ApplyDelta(db *gorm.DB, id uuid.UUID, delta int, expectedVersion int64) (int64, error)
	Update(db *gorm.DB, slot *entity.Slot) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
