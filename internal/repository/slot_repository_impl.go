package repository

import (
	"errors"
	"time"

	"gov-token-booking/internal/domain/entity"
	domainRepo "gov-token-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type slotRepository struct{}

func NewSlotRepository() domainRepo.SlotRepository {
	return &slotRepository{}
}

func (r *slotRepository) Create(db *gorm.DB, slot *entity.Slot) error {
	return db.Create(slot).Error
}

func (r *slotRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Slot, error) {
	var slot entity.Slot
	err := db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByDepartmentAndDate(db *gorm.DB, departmentID uuid.UUID, date time.Time) ([]entity.Slot, error) {
	var slots []entity.Slot
	err := db.Where("department_id = ? AND date = ?", departmentID, date).
		Order("time_range ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) FindOpenFromDate(db *gorm.DB, from time.Time, limit, offset int) ([]entity.Slot, error) {
	var slots []entity.Slot
	err := db.Where("date >= ?", from).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) CountByDepartment(db *gorm.DB, departmentID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Slot{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

// ApplyDelta adjusts booked_count by delta (floored at 0) and recomputes the
// blocked flag in a single guarded UPDATE. The version predicate makes the
// write a compare-and-swap: RowsAffected == 0 means another transaction
// committed first and the whole booking unit must be retried.
func (r *slotRepository) ApplyDelta(db *gorm.DB, id uuid.UUID, delta int, expectedVersion int64) (int64, error) {
	result := db.Model(&entity.Slot{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"booked_count": gorm.Expr("GREATEST(booked_count + ?, 0)", delta),
			"blocked":      gorm.Expr("GREATEST(booked_count + ?, 0) >= max_capacity OR manual_block", delta),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Update writes the admin-mutable fields only, guarded by the version so an
// in-flight booking is never clobbered. booked_count stays untouched and the
// blocked flag is rederived in SQL against the live count.
func (r *slotRepository) Update(db *gorm.DB, slot *entity.Slot) (int64, error) {
	result := db.Model(&entity.Slot{}).
		Where("id = ? AND version = ?", slot.ID, slot.Version).
		Updates(map[string]interface{}{
			"time_range":   slot.TimeRange,
			"max_capacity": slot.MaxCapacity,
			"manual_block": slot.ManualBlock,
			"blocked":      gorm.Expr("booked_count >= ? OR ?", slot.MaxCapacity, slot.ManualBlock),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *slotRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Slot{})
	return result.RowsAffected, result.Error
}
