package repository

import (
	"errors"
	"time"

	"gov-token-booking/internal/domain/entity"
	domainRepo "gov-token-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenRepository struct{}

func NewTokenRepository() domainRepo.TokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) Create(db *gorm.DB, token *entity.Token) error {
	return db.Create(token).Error
}

func (r *tokenRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Token, error) {
	var token entity.Token
	err := db.Where("id = ?", id).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindByUserID(db *gorm.DB, userID string) ([]entity.Token, error) {
	var tokens []entity.Token
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) FindByDepartmentAndDate(db *gorm.DB, departmentID uuid.UUID, date time.Time) ([]entity.Token, error) {
	var tokens []entity.Token
	err := db.Where("department_id = ? AND booking_date = ?", departmentID, date).
		Order("created_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) FindByStatusAndDate(db *gorm.DB, status entity.TokenStatus, date time.Time) ([]entity.Token, error) {
	var tokens []entity.Token
	err := db.Where("status = ? AND booking_date = ?", status, date).
		Order("updated_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) FindByDateRange(db *gorm.DB, start, end time.Time) ([]entity.Token, error) {
	var tokens []entity.Token
	err := db.Where("booking_date >= ? AND booking_date <= ?", start, end).
		Order("booking_date ASC, created_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) CountActiveBySlot(db *gorm.DB, slotID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Token{}).
		Where("slot_id = ? AND status != ?", slotID, entity.TokenStatusCancelled).
		Count(&count).Error
	return count, err
}

// UpdateStatus moves a token from one status to another with a guarded
// UPDATE. Returns affected rows: 0 means the token was missing or no longer
// in the expected source status, so a racing transition loses cleanly.
func (r *tokenRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.TokenStatus) (int64, error) {
	result := db.Model(&entity.Token{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
