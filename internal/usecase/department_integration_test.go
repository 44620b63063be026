//go:build integration

package usecase

import (
	"testing"

	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/repository"
	"gov-token-booking/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDepartmentUsecase(t *testing.T) DepartmentUsecase {
	t.Helper()
	log := quietLogger()
	auditService := service.NewAuditService(testDB, log, repository.NewAuditLogRepository())
	return NewDepartmentUsecase(testDB, log, repository.NewDepartmentRepository(), repository.NewSlotRepository(), auditService)
}

func TestDeleteDepartmentGuardedBySlots(t *testing.T) {
	uc := newDepartmentUsecase(t)
	department := seedDepartment(t)
	slot := seedSlot(t, department.ID, tomorrow(), 5)

	// A department with slots cannot be deleted
	err := uc.DeleteDepartment(staffCtx("admin"), department.ID)
	assert.ErrorIs(t, err, ErrDepartmentHasSlots)

	var count int64
	require.NoError(t, testDB.Model(&entity.Department{}).Where("id = ?", department.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "guarded delete must not remove the row")

	// Once the slots are gone, deletion goes through
	require.NoError(t, testDB.Delete(&entity.Slot{}, "id = ?", slot.ID).Error)
	require.NoError(t, uc.DeleteDepartment(staffCtx("admin"), department.ID))

	require.NoError(t, testDB.Model(&entity.Department{}).Where("id = ?", department.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteDepartmentNotFound(t *testing.T) {
	uc := newDepartmentUsecase(t)
	department := seedDepartment(t)

	require.NoError(t, uc.DeleteDepartment(staffCtx("admin"), department.ID))
	err := uc.DeleteDepartment(staffCtx("admin"), department.ID)
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}
