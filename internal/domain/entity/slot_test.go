package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotCapacity(t *testing.T) {
	slot := &Slot{MaxCapacity: 10}

	assert.False(t, slot.IsFull())
	assert.Equal(t, 10, slot.Remaining())

	slot.BookedCount = 9
	assert.False(t, slot.IsFull())
	assert.Equal(t, 1, slot.Remaining())

	slot.BookedCount = 10
	assert.True(t, slot.IsFull())
	assert.Equal(t, 0, slot.Remaining())

	// Overbooked rows never report negative remaining
	slot.BookedCount = 11
	assert.True(t, slot.IsFull())
	assert.Equal(t, 0, slot.Remaining())
}

func TestComputeBlocked(t *testing.T) {
	slot := &Slot{MaxCapacity: 2}
	assert.False(t, slot.ComputeBlocked())

	slot.ManualBlock = true
	assert.True(t, slot.ComputeBlocked())

	// Full slot is blocked even without the manual flag
	slot.ManualBlock = false
	slot.BookedCount = 2
	assert.True(t, slot.ComputeBlocked())

	slot.BookedCount = 1
	assert.False(t, slot.ComputeBlocked())
}
