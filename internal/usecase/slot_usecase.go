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
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotAlreadyExists   = errors.New("slot already exists for this department, date and time range")
	ErrSlotHasActiveTokens = errors.New("slot still has active tokens")
	ErrCapacityBelowBooked = errors.New("max capacity cannot go below current booked count")
)

type SlotUsecase interface {
	CreateSlot(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	ListSlots(ctx context.Context, departmentID uuid.UUID, date time.Time) (*dto.SlotListResponse, error)
	UpdateSlot(ctx context.Context, slotID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
}

type slotUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	slotRepo     repository.SlotRepository
	tokenRepo    repository.TokenRepository
	deptRepo     repository.DepartmentRepository
	auditService service.AuditService
	availability *service.AvailabilityService
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	slotRepo repository.SlotRepository,
	tokenRepo repository.TokenRepository,
	deptRepo repository.DepartmentRepository,
	auditService service.AuditService,
	availability *service.AvailabilityService,
) SlotUsecase {
	return &slotUsecase{
		db:           db,
		log:          log,
		slotRepo:     slotRepo,
		tokenRepo:    tokenRepo,
		deptRepo:     deptRepo,
		auditService: auditService,
		availability: availability,
	}
}

func (u *slotUsecase) CreateSlot(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidBookingDate
	}

	department, err := u.deptRepo.FindByID(u.db.WithContext(ctx), req.DepartmentID)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}

	slot := &entity.Slot{
		ID:           uuid.New(),
		DepartmentID: req.DepartmentID,
		Date:         date,
		TimeRange:    req.TimeRange,
		MaxCapacity:  req.MaxCapacity,
		BookedCount:  0,
		Version:      1,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.slotRepo.Create(tx, slot); err != nil {
			return err
		}
		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionSlotCreate, "slot", slot.ID.String(), entity.JSON{
			"department_id": slot.DepartmentID.String(),
			"date":          slot.Date.Format("2006-01-02"),
			"time_range":    slot.TimeRange,
			"max_capacity":  slot.MaxCapacity,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotAlreadyExists
		}
		u.log.Warnf("Failed to create slot: %+v", err)
		return nil, err
	}

	u.refreshMirror(ctx, slot.ID)

	u.log.Infof("Slot created: id=%s, department=%s, date=%s %s", slot.ID, slot.DepartmentID, req.Date, slot.TimeRange)
	return converter.SlotToResponse(slot), nil
}

// ListSlots returns a department's slots for one day. Remaining counts come
// from the Redis mirror when it has an entry, otherwise from the database row
// itself, so a cold or absent mirror only costs freshness, not correctness.
func (u *slotUsecase) ListSlots(ctx context.Context, departmentID uuid.UUID, date time.Time) (*dto.SlotListResponse, error) {
	slots, err := u.slotRepo.FindByDepartmentAndDate(u.db.WithContext(ctx), departmentID, date)
	if err != nil {
		u.log.Warnf("Failed to list slots for department %s: %+v", departmentID, err)
		return nil, err
	}

	var mirrored map[uuid.UUID]int
	if u.availability != nil {
		slotIDs := make([]uuid.UUID, len(slots))
		for i, slot := range slots {
			slotIDs[i] = slot.ID
		}
		mirrored, err = u.availability.GetRemaining(ctx, slotIDs)
		if err != nil {
			u.log.Warnf("Failed to read availability mirror (non-fatal): %+v", err)
			mirrored = nil
		}
	}

	responses := make([]dto.SlotResponse, len(slots))
	for i, slot := range slots {
		resp := converter.SlotToResponse(&slot)
		if remaining, ok := mirrored[slot.ID]; ok {
			resp.Remaining = remaining
		}
		responses[i] = *resp
	}

	return &dto.SlotListResponse{
		Slots: responses,
		Total: len(responses),
	}, nil
}

// UpdateSlot changes the admin-mutable fields: time range, capacity and the
// manual block flag. The write is version guarded so it never clobbers a
// concurrent booking; on a lost race the caller just retries.
func (u *slotUsecase) UpdateSlot(ctx context.Context, slotID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var updated *entity.Slot
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := u.slotRepo.FindByID(tx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		if req.TimeRange != "" {
			slot.TimeRange = req.TimeRange
		}
		if req.MaxCapacity != nil {
			if *req.MaxCapacity < slot.BookedCount {
				return ErrCapacityBelowBooked
			}
			slot.MaxCapacity = *req.MaxCapacity
		}
		if req.ManualBlock != nil {
			slot.ManualBlock = *req.ManualBlock
		}

		affected, err := u.slotRepo.Update(tx, slot)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrConcurrencyConflict
		}

		if err := u.auditService.LogAction(ctx, tx, userID, entity.AuditActionSlotUpdate, "slot", slot.ID.String(), entity.JSON{
			"time_range":   slot.TimeRange,
			"max_capacity": slot.MaxCapacity,
			"manual_block": slot.ManualBlock,
		}); err != nil {
			return err
		}

		slot.Blocked = slot.ComputeBlocked()
		slot.Version++
		slot.UpdatedAt = time.Now()
		updated = slot
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) && !errors.Is(err, ErrConcurrencyConflict) && !errors.Is(err, ErrCapacityBelowBooked) {
			u.log.Warnf("Failed to update slot %s: %+v", slotID, err)
		}
		return nil, err
	}

	u.refreshMirror(ctx, slotID)

	u.log.Infof("Slot updated: id=%s", slotID)
	return converter.SlotToResponse(updated), nil
}

// DeleteSlot removes a slot that has no pending or called tokens.
func (u *slotUsecase) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := u.slotRepo.FindByID(tx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		active, err := u.tokenRepo.CountActiveBySlot(tx, slotID)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrSlotHasActiveTokens
		}

		affected, err := u.slotRepo.Delete(tx, slotID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrSlotNotFound
		}

		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionSlotDelete, "slot", slotID.String(), entity.JSON{
			"department_id": slot.DepartmentID.String(),
			"date":          slot.Date.Format("2006-01-02"),
			"time_range":    slot.TimeRange,
		})
	})
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) && !errors.Is(err, ErrSlotHasActiveTokens) {
			u.log.Warnf("Failed to delete slot %s: %+v", slotID, err)
		}
		return err
	}

	if u.availability != nil {
		cleanCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.availability.DeleteSlotKey(cleanCtx, slotID); err != nil {
			u.log.Warnf("Failed to delete availability key for slot %s (non-fatal): %+v", slotID, err)
		}
	}

	u.log.Infof("Slot deleted: id=%s", slotID)
	return nil
}

func (u *slotUsecase) refreshMirror(ctx context.Context, slotID uuid.UUID) {
	if u.availability == nil {
		return
	}
	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.availability.RefreshSlot(syncCtx, slotID); err != nil {
		u.log.Warnf("Failed to refresh availability for slot %s (non-fatal): %+v", slotID, err)
	}
}
