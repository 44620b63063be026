//go:build integration

package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"gov-token-booking/config"
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/delivery/http/middleware"
	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/repository"
	"gov-token-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=gov_token_booking_test port=5432 sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "skipping integration tests, database unavailable: %v\n", err)
		os.Exit(0)
	}

	if err := db.AutoMigrate(
		&entity.Department{},
		&entity.Slot{},
		&entity.Token{},
		&entity.TokenCounter{},
		&entity.Holiday{},
		&entity.AuditLog{},
	); err != nil {
		fmt.Fprintf(os.Stderr, "migrate test schema: %v\n", err)
		os.Exit(1)
	}

	testDB = db
	os.Exit(m.Run())
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	booking TokenBookingUsecase
	status  TokenStatusUsecase
	db      *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := quietLogger()

	slotRepo := repository.NewSlotRepository()
	tokenRepo := repository.NewTokenRepository()
	counterRepo := repository.NewTokenCounterRepository()
	departmentRepo := repository.NewDepartmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(testDB, log, auditLogRepo)
	feed := service.NewLiveFeed(log)
	notifier := service.NewTokenNotifier(feed, nil, nil, log)

	cfg := config.BookingConfig{MaxRetries: 8, RetryBackoff: 5 * time.Millisecond}
	return &testEnv{
		booking: NewTokenBookingUsecase(testDB, log, cfg, slotRepo, tokenRepo, counterRepo, departmentRepo, auditService, notifier, nil),
		status:  NewTokenStatusUsecase(testDB, log, tokenRepo, auditService, notifier),
		db:      testDB,
	}
}

func seedDepartment(t *testing.T) *entity.Department {
	t.Helper()
	department := &entity.Department{
		ID:       uuid.New(),
		Name:     "Transport Office " + uuid.NewString()[:8],
		Code:     "T" + uuid.NewString()[:6],
		IsActive: true,
	}
	require.NoError(t, testDB.Create(department).Error)
	t.Cleanup(func() { testDB.Delete(department) })
	return department
}

func seedSlot(t *testing.T, departmentID uuid.UUID, date time.Time, capacity int) *entity.Slot {
	t.Helper()
	slot := &entity.Slot{
		ID:           uuid.New(),
		DepartmentID: departmentID,
		Date:         date,
		TimeRange:    "09:00-10:00",
		MaxCapacity:  capacity,
		Version:      1,
	}
	require.NoError(t, testDB.Create(slot).Error)
	t.Cleanup(func() { testDB.Delete(slot) })
	return slot
}

func citizenCtx(userID string) context.Context {
	return middleware.WithUser(context.Background(), userID, "Citizen "+userID, entity.RoleCitizen)
}

func staffCtx(userID string) context.Context {
	return middleware.WithUser(context.Background(), userID, "Staff "+userID, entity.RoleStaff)
}

func tomorrow() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
}

func reloadSlot(t *testing.T, id uuid.UUID) *entity.Slot {
	t.Helper()
	var slot entity.Slot
	require.NoError(t, testDB.Where("id = ?", id).First(&slot).Error)
	return &slot
}

func TestBookTokenAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 10)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}

	first, err := env.booking.BookToken(citizenCtx("user-a"), req)
	require.NoError(t, err)
	second, err := env.booking.BookToken(citizenCtx("user-b"), req)
	require.NoError(t, err)

	year := date.Year()
	assert.Equal(t, entity.FormatTokenNumber(department.Code, year, 1), first.TokenNumber)
	assert.Equal(t, entity.FormatTokenNumber(department.Code, year, 2), second.TokenNumber)

	reloaded := reloadSlot(t, slot.ID)
	assert.Equal(t, 2, reloaded.BookedCount)
	assert.False(t, reloaded.Blocked)
}

func TestBookTokenCapacityNeverExceeded(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	const capacity = 5
	slot := seedSlot(t, department.ID, date, capacity)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.booking.BookToken(citizenCtx(fmt.Sprintf("user-%d", n)), req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var booked, full, conflicts int
	for err := range results {
		switch err {
		case nil:
			booked++
		case ErrSlotFull:
			full++
		case ErrConcurrencyConflict:
			conflicts++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}

	assert.Equal(t, capacity, booked, "exactly capacity bookings succeed (full=%d conflicts=%d)", full, conflicts)

	reloaded := reloadSlot(t, slot.ID)
	assert.Equal(t, capacity, reloaded.BookedCount)
	assert.True(t, reloaded.Blocked)
}

func TestBookTokenSingleSeatExclusivity(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 1)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.booking.BookToken(citizenCtx(fmt.Sprintf("racer-%d", n)), req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var booked int
	for err := range results {
		if err == nil {
			booked++
		} else {
			assert.ErrorIs(t, err, ErrSlotFull)
		}
	}
	assert.Equal(t, 1, booked)
}

func TestBookTokenManualBlockBeatsFull(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 1)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}

	require.NoError(t, testDB.Model(slot).Updates(map[string]interface{}{
		"manual_block": true,
		"blocked":      true,
	}).Error)
	_, err := env.booking.BookToken(citizenCtx("user-a"), req)
	assert.ErrorIs(t, err, ErrSlotBlocked)

	// Fill the seat, keep the manual block: the operator block still wins
	require.NoError(t, testDB.Model(slot).Update("booked_count", 1).Error)
	_, err = env.booking.BookToken(citizenCtx("user-b"), req)
	assert.ErrorIs(t, err, ErrSlotBlocked)
}

func TestBookTokenRejectsPastDate(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	slot := seedSlot(t, department.ID, yesterday, 5)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  yesterday.Format("2006-01-02"),
	}
	_, err := env.booking.BookToken(citizenCtx("user-a"), req)
	assert.ErrorIs(t, err, ErrPastBookingDate)
}

func TestCancelTokenFreesSeatExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 3)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}
	booked, err := env.booking.BookToken(citizenCtx("user-a"), req)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadSlot(t, slot.ID).BookedCount)

	require.NoError(t, env.booking.CancelToken(citizenCtx("user-a"), booked.ID))
	assert.Equal(t, 0, reloadSlot(t, slot.ID).BookedCount)

	// Second cancel must not decrement again
	err = env.booking.CancelToken(citizenCtx("user-a"), booked.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, 0, reloadSlot(t, slot.ID).BookedCount)
}

func TestCancelTokenToleratesDeletedSlot(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 2)

	booked, err := env.booking.BookToken(citizenCtx("user-a"), &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	})
	require.NoError(t, err)

	// Admin removed the slot out from under the token
	require.NoError(t, testDB.Delete(&entity.Slot{}, "id = ?", slot.ID).Error)

	// Cancellation still succeeds, skipping the capacity release
	require.NoError(t, env.booking.CancelToken(citizenCtx("user-a"), booked.ID))

	var token entity.Token
	require.NoError(t, testDB.Where("id = ?", booked.ID).First(&token).Error)
	assert.Equal(t, entity.TokenStatusCancelled, token.Status)
}

func TestCancelTokenOwnership(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 3)

	booked, err := env.booking.BookToken(citizenCtx("owner"), &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	})
	require.NoError(t, err)

	// Another citizen cannot cancel it
	err = env.booking.CancelToken(citizenCtx("stranger"), booked.ID)
	assert.ErrorIs(t, err, ErrTokenNotOwned)

	// Staff can
	require.NoError(t, env.booking.CancelToken(staffCtx("clerk"), booked.ID))
}

func TestCancelThenRebookGetsFreshSerial(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 2)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}

	first, err := env.booking.BookToken(citizenCtx("user-a"), req)
	require.NoError(t, err)
	require.NoError(t, env.booking.CancelToken(citizenCtx("user-a"), first.ID))

	// Serials never reuse a cancelled number
	second, err := env.booking.BookToken(citizenCtx("user-a"), req)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatTokenNumber(department.Code, date.Year(), 2), second.TokenNumber)
	assert.NotEqual(t, first.TokenNumber, second.TokenNumber)
}

func TestFullSlotUnblocksAfterCancel(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 1)

	req := &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	}
	booked, err := env.booking.BookToken(citizenCtx("user-a"), req)
	require.NoError(t, err)
	assert.True(t, reloadSlot(t, slot.ID).Blocked)

	require.NoError(t, env.booking.CancelToken(citizenCtx("user-a"), booked.ID))
	reloaded := reloadSlot(t, slot.ID)
	assert.False(t, reloaded.Blocked)
	assert.Equal(t, 0, reloaded.BookedCount)

	// The freed seat is bookable again
	_, err = env.booking.BookToken(citizenCtx("user-b"), req)
	require.NoError(t, err)
}

func TestStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 2)

	booked, err := env.booking.BookToken(citizenCtx("user-a"), &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	})
	require.NoError(t, err)

	called, err := env.status.UpdateStatus(staffCtx("clerk"), booked.ID, entity.TokenStatusCalled)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TokenStatusCalled), called.Status)

	// A called token cannot be cancelled through the citizen path
	err = env.booking.CancelToken(citizenCtx("user-a"), booked.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	completed, err := env.status.UpdateStatus(staffCtx("clerk"), booked.ID, entity.TokenStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TokenStatusCompleted), completed.Status)

	// Terminal state rejects everything
	_, err = env.status.UpdateStatus(staffCtx("clerk"), booked.ID, entity.TokenStatusCalled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// Completing keeps the seat occupied for the day
	assert.Equal(t, 1, reloadSlot(t, slot.ID).BookedCount)
}

func TestUpdateStatusRejectsCancelledTarget(t *testing.T) {
	env := newTestEnv(t)
	department := seedDepartment(t)
	date := tomorrow()
	slot := seedSlot(t, department.ID, date, 2)

	booked, err := env.booking.BookToken(citizenCtx("user-a"), &dto.BookTokenRequest{
		DepartmentID: department.ID,
		SlotID:       slot.ID,
		BookingDate:  date.Format("2006-01-02"),
	})
	require.NoError(t, err)

	// Cancellation must go through the booking path so capacity is released
	_, err = env.status.UpdateStatus(staffCtx("clerk"), booked.ID, entity.TokenStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
