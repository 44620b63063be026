package repository

import (
	"time"

	"gov-token-booking/internal/domain/entity"
	domainRepo "gov-token-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type holidayRepository struct{}

func NewHolidayRepository() domainRepo.HolidayRepository {
	return &holidayRepository{}
}

func (r *holidayRepository) Create(db *gorm.DB, holiday *entity.Holiday) error {
	return db.Create(holiday).Error
}

func (r *holidayRepository) FindAll(db *gorm.DB) ([]entity.Holiday, error) {
	var holidays []entity.Holiday
	if err := db.Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (r *holidayRepository) ExistsByDate(db *gorm.DB, date time.Time) (bool, error) {
	var count int64
	err := db.Model(&entity.Holiday{}).Where("date = ?", date).Count(&count).Error
	return count > 0, err
}

func (r *holidayRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Holiday{})
	return result.RowsAffected, result.Error
}
