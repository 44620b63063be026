package repository

import (
	"gov-token-booking/internal/domain/entity"
	domainRepo "gov-token-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

// FindByAction lists entries newest first. An empty action matches all.
func (r *auditLogRepository) FindByAction(db *gorm.DB, action string, limit, offset int) ([]entity.AuditLog, error) {
	query := db.Model(&entity.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var logs []entity.AuditLog
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
