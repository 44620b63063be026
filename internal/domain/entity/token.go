package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenStatus represents the service lifecycle state of a token
type TokenStatus string

const (
	TokenStatusPending   TokenStatus = "pending"
	TokenStatusCalled    TokenStatus = "called"
	TokenStatusCompleted TokenStatus = "completed"
	TokenStatusCancelled TokenStatus = "cancelled"
)

// tokenTransitions lists every allowed status transition. Completed and
// cancelled are terminal; same-state writes are rejected.
var tokenTransitions = map[TokenStatus][]TokenStatus{
	TokenStatusPending: {TokenStatusCalled, TokenStatusCancelled},
	TokenStatusCalled:  {TokenStatusCompleted},
}

// Token represents a citizen's reservation against a slot, carrying the
// human-readable token number shown on displays and printed receipts.
// Tokens are never deleted; terminal states are kept for history and reports.
type Token struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         string      `gorm:"type:varchar(64);not null;index" json:"user_id"`
	UserName       string      `gorm:"type:varchar(150)" json:"user_name"`
	DepartmentID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_tokens_dept_date" json:"department_id"`
	DepartmentName string      `gorm:"type:varchar(150)" json:"department_name"`
	SlotID         uuid.UUID   `gorm:"type:uuid;not null;index" json:"slot_id"`
	SlotTime       string      `gorm:"type:varchar(20)" json:"slot_time"`
	TokenNumber    string      `gorm:"type:varchar(30);not null" json:"token_number"`
	BookingDate    time.Time   `gorm:"type:date;not null;index:idx_tokens_dept_date" json:"booking_date"`
	Status         TokenStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	QRData         string      `gorm:"type:text" json:"qr_data"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// CanTransition reports whether moving to the target status is allowed
func (t *Token) CanTransition(to TokenStatus) bool {
	for _, allowed := range tokenTransitions[t.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsPending checks if the token is still waiting to be called
func (t *Token) IsPending() bool {
	return t.Status == TokenStatusPending
}

// IsTerminal checks if the token reached a final state
func (t *Token) IsTerminal() bool {
	return t.Status == TokenStatusCompleted || t.Status == TokenStatusCancelled
}

// EffectiveTime returns UpdatedAt, falling back to CreatedAt when the token
// has never been updated. Used to pick the most recent called token.
func (t *Token) EffectiveTime() time.Time {
	if t.UpdatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

// FormatTokenNumber composes the public token number: DEPT-YEAR-NNN with the
// serial zero-padded to at least 3 digits.
func FormatTokenNumber(departmentCode string, year int, serial int) string {
	return fmt.Sprintf("%s-%d-%03d", strings.ToUpper(departmentCode), year, serial)
}

// ValidTokenStatus reports whether the given string names a known status
func ValidTokenStatus(s string) bool {
	switch TokenStatus(s) {
	case TokenStatusPending, TokenStatusCalled, TokenStatusCompleted, TokenStatusCancelled:
		return true
	}
	return false
}
