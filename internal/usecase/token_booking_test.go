package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	backoff := 20 * time.Millisecond

	// Backoff grows linearly between attempts
	assert.Equal(t, 20*time.Millisecond, retryDelay(0, 5, backoff))
	assert.Equal(t, 40*time.Millisecond, retryDelay(1, 5, backoff))
	assert.Equal(t, 80*time.Millisecond, retryDelay(3, 5, backoff))

	// The final attempt must not sleep: the conflict surfaces immediately
	assert.Zero(t, retryDelay(4, 5, backoff))
	assert.Zero(t, retryDelay(0, 1, backoff))
}
