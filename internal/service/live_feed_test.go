package service

import (
	"io"
	"testing"
	"time"

	"gov-token-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newCalledToken(departmentID uuid.UUID, date time.Time, number string, at time.Time) *entity.Token {
	return &entity.Token{
		ID:           uuid.New(),
		DepartmentID: departmentID,
		TokenNumber:  number,
		BookingDate:  date,
		Status:       entity.TokenStatusCalled,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

// receive waits for the next notification on the subscription.
func receive(t *testing.T, sub *Subscription) *entity.Token {
	t.Helper()
	select {
	case token := <-sub.C:
		return token
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for feed notification")
		return nil
	}
}

func TestLiveFeedInitialStateIsNil(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	sub := feed.Subscribe("", date.Format("2006-01-02"))
	defer sub.Cancel()

	assert.Nil(t, receive(t, sub))
}

func TestLiveFeedMostRecentCallWins(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	departmentID := uuid.New()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	sub := feed.Subscribe(departmentID.String(), date.Format("2006-01-02"))
	defer sub.Cancel()
	assert.Nil(t, receive(t, sub))

	first := newCalledToken(departmentID, date, "RTO-2026-001", base)
	feed.Publish(first)
	got := receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-001", got.TokenNumber)

	// A later call supersedes the first
	second := newCalledToken(departmentID, date, "RTO-2026-002", base.Add(time.Minute))
	feed.Publish(second)
	got = receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-002", got.TokenNumber)

	// Completing the current token falls back to the older called one
	second.Status = entity.TokenStatusCompleted
	feed.Publish(second)
	got = receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-001", got.TokenNumber)

	// Completing the last one empties the display
	first.Status = entity.TokenStatusCompleted
	feed.Publish(first)
	assert.Nil(t, receive(t, sub))
}

func TestLiveFeedTieBreaksOnTokenNumber(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	departmentID := uuid.New()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	feed.Publish(newCalledToken(departmentID, date, "RTO-2026-003", at))
	feed.Publish(newCalledToken(departmentID, date, "RTO-2026-007", at))
	feed.Publish(newCalledToken(departmentID, date, "RTO-2026-005", at))

	sub := feed.Subscribe(departmentID.String(), date.Format("2006-01-02"))
	defer sub.Cancel()

	got := receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-007", got.TokenNumber)
}

func TestLiveFeedLatestWinsDelivery(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	departmentID := uuid.New()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	sub := feed.Subscribe(departmentID.String(), date.Format("2006-01-02"))
	defer sub.Cancel()

	// Publish a burst without reading; only the newest survives
	for i := 1; i <= 5; i++ {
		feed.Publish(newCalledToken(departmentID, date, entity.FormatTokenNumber("RTO", 2026, i), base.Add(time.Duration(i)*time.Second)))
	}

	got := receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-005", got.TokenNumber)
}

func TestLiveFeedDepartmentFiltering(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	deptA := uuid.New()
	deptB := uuid.New()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	subA := feed.Subscribe(deptA.String(), date.Format("2006-01-02"))
	defer subA.Cancel()
	subAll := feed.Subscribe("", date.Format("2006-01-02"))
	defer subAll.Cancel()
	assert.Nil(t, receive(t, subA))
	assert.Nil(t, receive(t, subAll))

	feed.Publish(newCalledToken(deptB, date, "TAX-2026-001", base))

	// The all-departments subscriber sees it, the department A one does not
	got := receive(t, subAll)
	require.NotNil(t, got)
	assert.Equal(t, "TAX-2026-001", got.TokenNumber)

	select {
	case token := <-subA.C:
		t.Fatalf("department A subscriber should not be notified, got %+v", token)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLiveFeedDateFiltering(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	departmentID := uuid.New()
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	sub := feed.Subscribe(departmentID.String(), today.Format("2006-01-02"))
	defer sub.Cancel()
	assert.Nil(t, receive(t, sub))

	feed.Publish(newCalledToken(departmentID, tomorrow, "RTO-2026-001", today.Add(9*time.Hour)))

	select {
	case token := <-sub.C:
		t.Fatalf("subscriber for another day should not be notified, got %+v", token)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLiveFeedCancelIsIdempotent(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	sub := feed.Subscribe("", date.Format("2006-01-02"))
	sub.Cancel()
	sub.Cancel()

	// Publishing after cancel must not panic or deliver
	feed.Publish(newCalledToken(uuid.New(), date, "RTO-2026-001", date.Add(9*time.Hour)))

	// Drain: channel is closed, eventually yields the zero value
	for range sub.C {
	}
}

func TestLiveFeedWarm(t *testing.T) {
	feed := NewLiveFeed(newTestLogger())
	departmentID := uuid.New()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	feed.Warm([]entity.Token{
		*newCalledToken(departmentID, date, "RTO-2026-001", base),
		*newCalledToken(departmentID, date, "RTO-2026-002", base.Add(time.Minute)),
		{
			// Non-called tokens are ignored during warm-up
			ID:           uuid.New(),
			DepartmentID: departmentID,
			TokenNumber:  "RTO-2026-003",
			BookingDate:  date,
			Status:       entity.TokenStatusPending,
			CreatedAt:    base.Add(2 * time.Minute),
			UpdatedAt:    base.Add(2 * time.Minute),
		},
	})

	sub := feed.Subscribe(departmentID.String(), date.Format("2006-01-02"))
	defer sub.Cancel()

	got := receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, "RTO-2026-002", got.TokenNumber)
}
