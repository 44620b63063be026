package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type mockDepartmentUsecase struct {
	createFunc func(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	listFunc   func(ctx context.Context, activeOnly bool) (*dto.DepartmentListResponse, error)
	getFunc    func(ctx context.Context, id uuid.UUID) (*dto.DepartmentResponse, error)
	updateFunc func(ctx context.Context, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDepartmentUsecase) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockDepartmentUsecase) ListDepartments(ctx context.Context, activeOnly bool) (*dto.DepartmentListResponse, error) {
	return m.listFunc(ctx, activeOnly)
}

func (m *mockDepartmentUsecase) GetDepartment(ctx context.Context, id uuid.UUID) (*dto.DepartmentResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockDepartmentUsecase) UpdateDepartment(ctx context.Context, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	return m.updateFunc(ctx, id, req)
}

func (m *mockDepartmentUsecase) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func TestDeleteDepartmentErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{usecase.ErrDepartmentNotFound, http.StatusNotFound},
		{usecase.ErrDepartmentHasSlots, http.StatusConflict},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		name := "ok"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			departmentID := uuid.New()
			mock := &mockDepartmentUsecase{
				deleteFunc: func(ctx context.Context, id uuid.UUID) error {
					assert.Equal(t, departmentID, id)
					return tt.err
				},
			}
			h := NewDepartmentHandler(mock, validator.NewValidator())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/departments/"+departmentID.String(), nil)
			req = mux.SetURLVars(req, map[string]string{"id": departmentID.String()})
			rec := httptest.NewRecorder()
			h.DeleteDepartment(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestDeleteDepartmentRejectsBadID(t *testing.T) {
	h := NewDepartmentHandler(&mockDepartmentUsecase{}, validator.NewValidator())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/departments/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.DeleteDepartment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDepartmentsActiveOnlyFlag(t *testing.T) {
	var gotActiveOnly bool
	mock := &mockDepartmentUsecase{
		listFunc: func(ctx context.Context, activeOnly bool) (*dto.DepartmentListResponse, error) {
			gotActiveOnly = activeOnly
			return &dto.DepartmentListResponse{}, nil
		},
	}
	h := NewDepartmentHandler(mock, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil)
	rec := httptest.NewRecorder()
	h.ListDepartments(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotActiveOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/departments?active_only=false", nil)
	rec = httptest.NewRecorder()
	h.ListDepartments(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotActiveOnly)
}
