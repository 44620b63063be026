package usecase

import (
	"context"
	"errors"
	"strings"

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
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentInactive   = errors.New("department is not accepting bookings")
	ErrDepartmentCodeExists = errors.New("department code already in use")
	ErrDepartmentHasSlots   = errors.New("department still has slots")
)

type DepartmentUsecase interface {
	CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	ListDepartments(ctx context.Context, activeOnly bool) (*dto.DepartmentListResponse, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*dto.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
}

type departmentUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	departmentRepo repository.DepartmentRepository
	slotRepo       repository.SlotRepository
	auditService   service.AuditService
}

func NewDepartmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	departmentRepo repository.DepartmentRepository,
	slotRepo repository.SlotRepository,
	auditService service.AuditService,
) DepartmentUsecase {
	return &departmentUsecase{
		db:             db,
		log:            log,
		departmentRepo: departmentRepo,
		slotRepo:       slotRepo,
		auditService:   auditService,
	}
}

func (u *departmentUsecase) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	department := &entity.Department{
		ID:       uuid.New(),
		Name:     req.Name,
		Code:     strings.ToUpper(req.Code),
		Location: req.Location,
		IsActive: true,
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.departmentRepo.Create(tx, department); err != nil {
			return err
		}
		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionDeptCreate, "department", department.ID.String(), entity.JSON{
			"name": department.Name,
			"code": department.Code,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDepartmentCodeExists
		}
		u.log.Warnf("Failed to create department: %+v", err)
		return nil, err
	}

	u.log.Infof("Department created: id=%s, code=%s", department.ID, department.Code)
	return converter.DepartmentToResponse(department), nil
}

func (u *departmentUsecase) ListDepartments(ctx context.Context, activeOnly bool) (*dto.DepartmentListResponse, error) {
	departments, err := u.departmentRepo.FindAll(u.db.WithContext(ctx), activeOnly)
	if err != nil {
		u.log.Warnf("Failed to list departments: %+v", err)
		return nil, err
	}

	return &dto.DepartmentListResponse{
		Departments: converter.DepartmentsToResponses(departments),
		Total:       len(departments),
	}, nil
}

func (u *departmentUsecase) GetDepartment(ctx context.Context, id uuid.UUID) (*dto.DepartmentResponse, error) {
	department, err := u.departmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", id, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}

	return converter.DepartmentToResponse(department), nil
}

// UpdateDepartment changes the display fields and the active flag. The code
// is immutable once created because issued token numbers embed it.
func (u *departmentUsecase) UpdateDepartment(ctx context.Context, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var updated *entity.Department
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		department, err := u.departmentRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if department == nil {
			return ErrDepartmentNotFound
		}

		if req.Name != "" {
			department.Name = req.Name
		}
		if req.Location != "" {
			department.Location = req.Location
		}
		if req.IsActive != nil {
			department.IsActive = *req.IsActive
		}

		if err := u.departmentRepo.Update(tx, department); err != nil {
			return err
		}

		if err := u.auditService.LogAction(ctx, tx, userID, entity.AuditActionDeptUpdate, "department", department.ID.String(), entity.JSON{
			"name":      department.Name,
			"is_active": department.IsActive,
		}); err != nil {
			return err
		}

		updated = department
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrDepartmentNotFound) {
			u.log.Warnf("Failed to update department %s: %+v", id, err)
		}
		return nil, err
	}

	u.log.Infof("Department updated: id=%s", id)
	return converter.DepartmentToResponse(updated), nil
}

// DeleteDepartment removes a department with no slots. Departments with any
// slot, past or future, must be deactivated instead so issued token numbers
// keep a resolvable owner.
func (u *departmentUsecase) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		department, err := u.departmentRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if department == nil {
			return ErrDepartmentNotFound
		}

		slots, err := u.slotRepo.CountByDepartment(tx, id)
		if err != nil {
			return err
		}
		if slots > 0 {
			return ErrDepartmentHasSlots
		}

		affected, err := u.departmentRepo.Delete(tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrDepartmentNotFound
		}

		return u.auditService.LogAction(ctx, tx, userID, entity.AuditActionDeptDelete, "department", id.String(), entity.JSON{
			"name": department.Name,
			"code": department.Code,
		})
	})
	if err != nil {
		if !errors.Is(err, ErrDepartmentNotFound) && !errors.Is(err, ErrDepartmentHasSlots) {
			u.log.Warnf("Failed to delete department %s: %+v", id, err)
		}
		return err
	}

	u.log.Infof("Department deleted: id=%s", id)
	return nil
}
