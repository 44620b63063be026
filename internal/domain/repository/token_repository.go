package repository

import (
	"time"

	"gov-token-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(db *gorm.DB, token *entity.Token) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Token, error)
	FindByUserID(db *gorm.DB, userID string) ([]entity.Token, error)
	FindByDepartmentAndDate(db *gorm.DB, departmentID uuid.UUID, date time.Time) ([]entity.Token, error)
	FindByStatusAndDate(db *gorm.DB, status entity.TokenStatus, date time.Time) ([]entity.Token, error)
	FindByDateRange(db *gorm.DB, start, end time.Time) ([]entity.Token, error)
	CountActiveBySlot(db *gorm.DB, slotID uuid.UUID) (int64, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.TokenStatus) (int64, error)
}
