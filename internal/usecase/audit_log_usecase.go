package usecase

import (
	"context"

	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const auditLogPageSize = 100

type AuditLogUsecase interface {
	GetAuditLogs(ctx context.Context, action string, page int) ([]entity.AuditLog, error)
}

type auditLogUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// GetAuditLogs returns one page of audit entries, newest first, optionally
// filtered by action. Page numbers start at 1.
func (u *auditLogUsecase) GetAuditLogs(ctx context.Context, action string, page int) ([]entity.AuditLog, error) {
	if page < 1 {
		page = 1
	}

	logs, err := u.auditRepo.FindByAction(u.db.WithContext(ctx), action, auditLogPageSize, (page-1)*auditLogPageSize)
	if err != nil {
		u.log.Warnf("Failed to query audit logs: %+v", err)
		return nil, err
	}
	return logs, nil
}
