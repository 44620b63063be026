package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gov-token-booking/internal/converter"
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/delivery/http/middleware"
	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/domain/repository"
	"gov-token-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrHolidayNotFound      = errors.New("holiday not found")
	ErrHolidayAlreadyExists = errors.New("holiday already exists for this date")
)

type HolidayUsecase interface {
	CreateHoliday(ctx context.Context, req *dto.CreateHolidayRequest) (*dto.HolidayResponse, error)
	ListHolidays(ctx context.Context) (*dto.HolidayListResponse, error)
	DeleteHoliday(ctx context.Context, id int64) error
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

type holidayUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	holidayRepo  repository.HolidayRepository
	auditService service.AuditService
}

func NewHolidayUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	holidayRepo repository.HolidayRepository,
	auditService service.AuditService,
) HolidayUsecase {
	return &holidayUsecase{
		db:           db,
		log:          log,
		holidayRepo:  holidayRepo,
		auditService: auditService,
	}
}

func (u *holidayUsecase) CreateHoliday(ctx context.Context, req *dto.CreateHolidayRequest) (*dto.HolidayResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidBookingDate
	}

	holiday := &entity.Holiday{
		Date:   date,
		Reason: req.Reason,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.holidayRepo.Create(tx, holiday); err != nil {
			return err
		}
		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionHolidayCreate, "holiday", req.Date, entity.JSON{
			"reason": req.Reason,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrHolidayAlreadyExists
		}
		u.log.Warnf("Failed to create holiday: %+v", err)
		return nil, err
	}

	u.log.Infof("Holiday created: date=%s, reason=%s", req.Date, req.Reason)
	return converter.HolidayToResponse(holiday), nil
}

func (u *holidayUsecase) ListHolidays(ctx context.Context) (*dto.HolidayListResponse, error) {
	holidays, err := u.holidayRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list holidays: %+v", err)
		return nil, err
	}

	return &dto.HolidayListResponse{
		Holidays: converter.HolidaysToResponses(holidays),
		Total:    len(holidays),
	}, nil
}

func (u *holidayUsecase) DeleteHoliday(ctx context.Context, id int64) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := u.holidayRepo.Delete(tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrHolidayNotFound
		}
		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionHolidayDelete, "holiday", strconv.FormatInt(id, 10), nil)
	})
	if err != nil {
		if !errors.Is(err, ErrHolidayNotFound) {
			u.log.Warnf("Failed to delete holiday %d: %+v", id, err)
		}
		return err
	}

	u.log.Infof("Holiday deleted: id=%d", id)
	return nil
}

func (u *holidayUsecase) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return u.holidayRepo.ExistsByDate(u.db.WithContext(ctx), date)
}
