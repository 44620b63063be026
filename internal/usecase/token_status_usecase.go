package usecase

import (
	"context"
	"errors"
	"time"

	"gov-token-booking/internal/converter"
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/delivery/http/middleware"
	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/domain/repository"
	"gov-token-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound           = errors.New("token not found")
	ErrInvalidStatusTransition = errors.New("invalid token status transition")
)

type TokenStatusUsecase interface {
	UpdateStatus(ctx context.Context, tokenID uuid.UUID, newStatus entity.TokenStatus) (*dto.TokenResponse, error)
	GetTokensByDepartmentAndDate(ctx context.Context, departmentID uuid.UUID, date time.Time) (*dto.TokenListResponse, error)
}

type tokenStatusUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	tokenRepo    repository.TokenRepository
	auditService service.AuditService
	notifier     *service.TokenNotifier
}

func NewTokenStatusUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tokenRepo repository.TokenRepository,
	auditService service.AuditService,
	notifier *service.TokenNotifier,
) TokenStatusUsecase {
	return &tokenStatusUsecase{
		db:           db,
		log:          log,
		tokenRepo:    tokenRepo,
		auditService: auditService,
		notifier:     notifier,
	}
}

// UpdateStatus advances a token along the lifecycle: pending to called,
// called to completed. Cancellation does not go through here because it also
// releases slot capacity; callers route it to the booking usecase instead.
//
// The write is guarded by the current status, so two staff members racing to
// call the same token resolve cleanly: one wins, the other gets
// ErrInvalidStatusTransition.
func (u *tokenStatusUsecase) UpdateStatus(ctx context.Context, tokenID uuid.UUID, newStatus entity.TokenStatus) (*dto.TokenResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if newStatus == entity.TokenStatusCancelled {
		return nil, ErrInvalidStatusTransition
	}

	var updated *entity.Token
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := u.tokenRepo.FindByID(tx, tokenID)
		if err != nil {
			return err
		}
		if token == nil {
			return ErrTokenNotFound
		}
		if !token.CanTransition(newStatus) {
			return ErrInvalidStatusTransition
		}

		affected, err := u.tokenRepo.UpdateStatus(tx, tokenID, token.Status, newStatus)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidStatusTransition
		}

		action := entity.AuditActionTokenCall
		if newStatus == entity.TokenStatusCompleted {
			action = entity.AuditActionTokenComplete
		}
		if err := u.auditService.LogAction(ctx, tx, userID, action, "token", token.ID.String(), entity.JSON{
			"token_number": token.TokenNumber,
			"from":         string(token.Status),
			"to":           string(newStatus),
		}); err != nil {
			return err
		}

		token.Status = newStatus
		token.UpdatedAt = time.Now()
		updated = token
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) && !errors.Is(err, ErrInvalidStatusTransition) {
			u.log.Warnf("Failed to update status of token %s: %+v", tokenID, err)
		}
		return nil, err
	}

	event := service.EventTokenCalled
	if newStatus == entity.TokenStatusCompleted {
		event = service.EventTokenCompleted
	}
	u.notifier.TokenChanged(ctx, updated, event)

	u.log.Infof("Token status updated: id=%s, number=%s, status=%s", updated.ID, updated.TokenNumber, updated.Status)
	return converter.TokenToResponse(updated), nil
}

// GetTokensByDepartmentAndDate returns the staff board view, ordered by
// token number.
func (u *tokenStatusUsecase) GetTokensByDepartmentAndDate(ctx context.Context, departmentID uuid.UUID, date time.Time) (*dto.TokenListResponse, error) {
	tokens, err := u.tokenRepo.FindByDepartmentAndDate(u.db.WithContext(ctx), departmentID, date)
	if err != nil {
		u.log.Warnf("Failed to list tokens for department %s on %s: %+v", departmentID, date.Format("2006-01-02"), err)
		return nil, err
	}

	return &dto.TokenListResponse{
		Tokens: converter.TokensToResponses(tokens),
		Total:  len(tokens),
	}, nil
}
