package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gov-token-booking/config"
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
	ErrSlotBlocked         = errors.New("slot is blocked by an operator")
	ErrSlotFull            = errors.New("slot is fully booked")
	ErrSlotMismatch        = errors.New("slot does not belong to the given department and date")
	ErrTokenNotOwned       = errors.New("token does not belong to you")
	ErrConcurrencyConflict = errors.New("booking conflict, please retry")
	ErrInvalidBookingDate  = errors.New("invalid booking date format, use YYYY-MM-DD")
	ErrPastBookingDate     = errors.New("cannot book a token for a past date")
)

// errSlotVersionConflict signals that the slot's version moved under us and
// the whole unit must be retried from a fresh read. Never escapes the
// usecase: after the retry budget it becomes ErrConcurrencyConflict.
var errSlotVersionConflict = errors.New("slot version conflict")

// retryDelay returns the linear backoff before the next attempt, or zero
// when the budget is spent and the conflict is about to surface anyway.
func retryDelay(attempt, maxRetries int, backoff time.Duration) time.Duration {
	if attempt+1 >= maxRetries {
		return 0
	}
	return backoff * time.Duration(attempt+1)
}

type TokenBookingUsecase interface {
	BookToken(ctx context.Context, req *dto.BookTokenRequest) (*dto.TokenResponse, error)
	CancelToken(ctx context.Context, tokenID uuid.UUID) error
	GetMyTokens(ctx context.Context) (*dto.TokenListResponse, error)
}

type tokenBookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	cfg            config.BookingConfig
	slotRepo       repository.SlotRepository
	tokenRepo      repository.TokenRepository
	counterRepo    repository.TokenCounterRepository
	departmentRepo repository.DepartmentRepository
	auditService   service.AuditService
	notifier       *service.TokenNotifier
	availability   *service.AvailabilityService
}

func NewTokenBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.BookingConfig,
	slotRepo repository.SlotRepository,
	tokenRepo repository.TokenRepository,
	counterRepo repository.TokenCounterRepository,
	departmentRepo repository.DepartmentRepository,
	auditService service.AuditService,
	notifier *service.TokenNotifier,
	availability *service.AvailabilityService,
) TokenBookingUsecase {
	return &tokenBookingUsecase{
		db:             db,
		log:            log,
		cfg:            cfg,
		slotRepo:       slotRepo,
		tokenRepo:      tokenRepo,
		counterRepo:    counterRepo,
		departmentRepo: departmentRepo,
		auditService:   auditService,
		notifier:       notifier,
		availability:   availability,
	}
}

// BookToken reserves a seat in a slot and mints the token, all in one
// transaction: capacity check, serial allocation, token insert and the
// slot's compare-and-swap increment commit or roll back together.
//
// On a version conflict (another booking on the same slot won the race) the
// whole unit is retried from a fresh read, bounded by cfg.MaxRetries. A slot
// that is genuinely full always surfaces ErrSlotFull, never a conflict.
func (u *tokenBookingUsecase) BookToken(ctx context.Context, req *dto.BookTokenRequest) (*dto.TokenResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	userName, _ := middleware.GetUserNameFromContext(ctx)

	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, ErrInvalidBookingDate
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if bookingDate.Before(today) {
		return nil, ErrPastBookingDate
	}

	department, err := u.departmentRepo.FindByID(u.db.WithContext(ctx), req.DepartmentID)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", req.DepartmentID, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}
	if !department.IsActive {
		return nil, ErrDepartmentInactive
	}

	var booked *entity.Token
	for attempt := 0; attempt < u.cfg.MaxRetries; attempt++ {
		err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slot, err := u.slotRepo.FindByID(tx, req.SlotID)
			if err != nil {
				return err
			}
			if slot == nil {
				return ErrSlotNotFound
			}
			if slot.DepartmentID != req.DepartmentID || !slot.Date.Equal(bookingDate) {
				return ErrSlotMismatch
			}
			if slot.ManualBlock {
				return ErrSlotBlocked
			}
			if slot.IsFull() {
				return ErrSlotFull
			}

			serial, err := u.counterRepo.NextSerial(tx, req.DepartmentID, bookingDate)
			if err != nil {
				return err
			}
			tokenNumber := entity.FormatTokenNumber(department.Code, bookingDate.Year(), serial)

			token := &entity.Token{
				ID:             uuid.New(),
				UserID:         userID,
				UserName:       userName,
				DepartmentID:   req.DepartmentID,
				DepartmentName: department.Name,
				SlotID:         slot.ID,
				SlotTime:       slot.TimeRange,
				TokenNumber:    tokenNumber,
				BookingDate:    bookingDate,
				Status:         entity.TokenStatusPending,
			}
			qrData, err := json.Marshal(map[string]string{
				"token_id":      token.ID.String(),
				"token_number":  tokenNumber,
				"user_id":       userID,
				"department_id": req.DepartmentID.String(),
			})
			if err != nil {
				return err
			}
			token.QRData = string(qrData)

			if err := u.tokenRepo.Create(tx, token); err != nil {
				return err
			}

			affected, err := u.slotRepo.ApplyDelta(tx, slot.ID, +1, slot.Version)
			if err != nil {
				return err
			}
			if affected == 0 {
				return errSlotVersionConflict
			}

			if err := u.auditService.LogAction(ctx, tx, userID, entity.AuditActionTokenBook, "token", token.ID.String(), entity.JSON{
				"token_number": tokenNumber,
				"slot_id":      slot.ID.String(),
			}); err != nil {
				return err
			}

			booked = token
			return nil
		})

		if errors.Is(err, errSlotVersionConflict) {
			u.log.Debugf("Booking conflict on slot %s, attempt %d/%d", req.SlotID, attempt+1, u.cfg.MaxRetries)
			time.Sleep(retryDelay(attempt, u.cfg.MaxRetries, u.cfg.RetryBackoff))
			continue
		}
		break
	}

	if errors.Is(err, errSlotVersionConflict) {
		return nil, ErrConcurrencyConflict
	}
	if err != nil {
		u.log.Warnf("Failed to book token for slot %s: %+v", req.SlotID, err)
		return nil, err
	}

	u.afterSlotChange(ctx, booked, service.EventTokenBooked)

	u.log.Infof("Token booked: id=%s, number=%s, slot=%s", booked.ID, booked.TokenNumber, booked.SlotID)
	return converter.TokenToResponse(booked), nil
}

// CancelToken frees the seat and invalidates the token as one unit. Only
// pending tokens can be cancelled; a second cancel observes
// ErrInvalidStatusTransition, so capacity is released at most once per
// token. A slot that was administratively removed is tolerated - the token
// still cancels.
func (u *tokenBookingUsecase) CancelToken(ctx context.Context, tokenID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	role, _ := middleware.GetRoleFromContext(ctx)
	isStaff := role == entity.RoleStaff || role == entity.RoleAdmin

	var cancelled *entity.Token
	var err error
	for attempt := 0; attempt < u.cfg.MaxRetries; attempt++ {
		err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			token, err := u.tokenRepo.FindByID(tx, tokenID)
			if err != nil {
				return err
			}
			if token == nil {
				return ErrTokenNotFound
			}
			if token.UserID != userID && !isStaff {
				return ErrTokenNotOwned
			}
			if token.Status != entity.TokenStatusPending {
				return ErrInvalidStatusTransition
			}

			affected, err := u.tokenRepo.UpdateStatus(tx, tokenID, entity.TokenStatusPending, entity.TokenStatusCancelled)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Racing cancel or call committed first
				return ErrInvalidStatusTransition
			}

			slot, err := u.slotRepo.FindByID(tx, token.SlotID)
			if err != nil {
				return err
			}
			if slot != nil {
				affected, err := u.slotRepo.ApplyDelta(tx, slot.ID, -1, slot.Version)
				if err != nil {
					return err
				}
				if affected == 0 {
					return errSlotVersionConflict
				}
			}

			if err := u.auditService.LogAction(ctx, tx, userID, entity.AuditActionTokenCancel, "token", token.ID.String(), entity.JSON{
				"token_number": token.TokenNumber,
				"slot_id":      token.SlotID.String(),
			}); err != nil {
				return err
			}

			token.Status = entity.TokenStatusCancelled
			token.UpdatedAt = time.Now()
			cancelled = token
			return nil
		})

		if errors.Is(err, errSlotVersionConflict) {
			u.log.Debugf("Cancel conflict on token %s, attempt %d/%d", tokenID, attempt+1, u.cfg.MaxRetries)
			time.Sleep(retryDelay(attempt, u.cfg.MaxRetries, u.cfg.RetryBackoff))
			continue
		}
		break
	}

	if errors.Is(err, errSlotVersionConflict) {
		return ErrConcurrencyConflict
	}
	if err != nil {
		u.log.Warnf("Failed to cancel token %s: %+v", tokenID, err)
		return err
	}

	u.afterSlotChange(ctx, cancelled, service.EventTokenCancelled)

	u.log.Infof("Token cancelled: id=%s, number=%s", cancelled.ID, cancelled.TokenNumber)
	return nil
}

// GetMyTokens returns all tokens for the logged-in citizen, newest first
func (u *tokenBookingUsecase) GetMyTokens(ctx context.Context) (*dto.TokenListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tokens, err := u.tokenRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find tokens for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.TokenListResponse{
		Tokens: converter.TokensToResponses(tokens),
		Total:  len(tokens),
	}, nil
}

// afterSlotChange fans out a committed change: live feed plus the Redis
// availability mirror. Both are best-effort - the transaction already
// committed.
func (u *tokenBookingUsecase) afterSlotChange(ctx context.Context, token *entity.Token, event string) {
	if u.notifier != nil {
		u.notifier.TokenChanged(ctx, token, event)
	}
	if u.availability != nil {
		syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.availability.RefreshSlot(syncCtx, token.SlotID); err != nil {
			u.log.Warnf("Failed to refresh availability for slot %s (non-fatal): %+v", token.SlotID, err)
		}
	}
}
