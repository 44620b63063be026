package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TokenStatus
		to      TokenStatus
		allowed bool
	}{
		{"pending to called", TokenStatusPending, TokenStatusCalled, true},
		{"pending to cancelled", TokenStatusPending, TokenStatusCancelled, true},
		{"pending to completed", TokenStatusPending, TokenStatusCompleted, false},
		{"pending to pending", TokenStatusPending, TokenStatusPending, false},
		{"called to completed", TokenStatusCalled, TokenStatusCompleted, true},
		{"called to cancelled", TokenStatusCalled, TokenStatusCancelled, false},
		{"called to pending", TokenStatusCalled, TokenStatusPending, false},
		{"called to called", TokenStatusCalled, TokenStatusCalled, false},
		{"completed is terminal", TokenStatusCompleted, TokenStatusCalled, false},
		{"completed to cancelled", TokenStatusCompleted, TokenStatusCancelled, false},
		{"cancelled is terminal", TokenStatusCancelled, TokenStatusPending, false},
		{"cancelled to completed", TokenStatusCancelled, TokenStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{Status: tt.from}
			assert.Equal(t, tt.allowed, token.CanTransition(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&Token{Status: TokenStatusPending}).IsTerminal())
	assert.False(t, (&Token{Status: TokenStatusCalled}).IsTerminal())
	assert.True(t, (&Token{Status: TokenStatusCompleted}).IsTerminal())
	assert.True(t, (&Token{Status: TokenStatusCancelled}).IsTerminal())
}

func TestFormatTokenNumber(t *testing.T) {
	assert.Equal(t, "RTO-2026-001", FormatTokenNumber("RTO", 2026, 1))
	assert.Equal(t, "RTO-2026-042", FormatTokenNumber("rto", 2026, 42))
	assert.Equal(t, "TAX-2026-100", FormatTokenNumber("TAX", 2026, 100))
	// Serials beyond three digits widen instead of truncating
	assert.Equal(t, "TAX-2026-1234", FormatTokenNumber("TAX", 2026, 1234))
}

func TestEffectiveTime(t *testing.T) {
	created := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	updated := created.Add(30 * time.Minute)

	token := &Token{CreatedAt: created}
	assert.Equal(t, created, token.EffectiveTime())

	token.UpdatedAt = updated
	assert.Equal(t, updated, token.EffectiveTime())
}

func TestValidTokenStatus(t *testing.T) {
	for _, s := range []string{"pending", "called", "completed", "cancelled"} {
		assert.True(t, ValidTokenStatus(s), s)
	}
	assert.False(t, ValidTokenStatus("waiting"))
	assert.False(t, ValidTokenStatus(""))
	assert.False(t, ValidTokenStatus("PENDING"))
}
