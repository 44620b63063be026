package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"gov-token-booking/internal/converter"
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidDateRange = errors.New("end date must not be before start date")

// Reports wider than this are rejected to keep the query bounded
const maxReportRangeDays = 92

var ErrDateRangeTooWide = errors.New("date range exceeds the maximum of 92 days")

type ReportUsecase interface {
	TokenReport(ctx context.Context, start, end time.Time) (*dto.TokenReportResponse, error)
}

type reportUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	tokenRepo repository.TokenRepository
}

func NewReportUsecase(db *gorm.DB, log *logrus.Logger, tokenRepo repository.TokenRepository) ReportUsecase {
	return &reportUsecase{
		db:        db,
		log:       log,
		tokenRepo: tokenRepo,
	}
}

// TokenReport aggregates all tokens booked in [start, end]: totals per
// status, per department, plus the raw rows.
func (u *reportUsecase) TokenReport(ctx context.Context, start, end time.Time) (*dto.TokenReportResponse, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if end.Sub(start) > maxReportRangeDays*24*time.Hour {
		return nil, ErrDateRangeTooWide
	}

	tokens, err := u.tokenRepo.FindByDateRange(u.db.WithContext(ctx), start, end)
	if err != nil {
		u.log.Warnf("Failed to query tokens for report %s..%s: %+v", start.Format("2006-01-02"), end.Format("2006-01-02"), err)
		return nil, err
	}

	byStatus := make(map[string]int)
	byDepartment := make(map[uuid.UUID]*dto.DepartmentTokenCount)
	for _, token := range tokens {
		byStatus[string(token.Status)]++
		if entry, ok := byDepartment[token.DepartmentID]; ok {
			entry.Count++
		} else {
			byDepartment[token.DepartmentID] = &dto.DepartmentTokenCount{
				DepartmentID:   token.DepartmentID,
				DepartmentName: token.DepartmentName,
				Count:          1,
			}
		}
	}

	departmentCounts := make([]dto.DepartmentTokenCount, 0, len(byDepartment))
	for _, entry := range byDepartment {
		departmentCounts = append(departmentCounts, *entry)
	}
	sort.Slice(departmentCounts, func(i, j int) bool {
		if departmentCounts[i].Count != departmentCounts[j].Count {
			return departmentCounts[i].Count > departmentCounts[j].Count
		}
		return departmentCounts[i].DepartmentName < departmentCounts[j].DepartmentName
	})

	return &dto.TokenReportResponse{
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		Total:        len(tokens),
		ByStatus:     byStatus,
		ByDepartment: departmentCounts,
		Tokens:       converter.TokensToResponses(tokens),
	}, nil
}
