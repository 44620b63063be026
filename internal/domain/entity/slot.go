package entity

import (
	"time"

	"github.com/google/uuid"
)

// Slot represents a fixed-capacity reservation window for one department on
// one calendar day. BookedCount and Blocked are only ever mutated inside the
// booking/cancellation transaction, guarded by the Version column.
type Slot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slots_dept_date_time" json:"department_id"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_slots_dept_date_time;index" json:"date"`
	TimeRange    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_slots_dept_date_time" json:"time_range"`
	MaxCapacity  int       `gorm:"not null" json:"max_capacity"`
	BookedCount  int       `gorm:"not null;default:0" json:"booked_count"`
	ManualBlock  bool      `gorm:"not null;default:false" json:"manual_block"`
	Blocked      bool      `gorm:"not null;default:false" json:"blocked"`
	Version      int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Slot) TableName() string {
	return "slots"
}

// IsFull checks whether the slot has no remaining capacity
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.MaxCapacity
}

// Remaining returns the number of free seats left in the slot
func (s *Slot) Remaining() int {
	remaining := s.MaxCapacity - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ComputeBlocked derives the blocked flag from capacity and the manual block
func (s *Slot) ComputeBlocked() bool {
	return s.ManualBlock || s.BookedCount >= s.MaxCapacity
}
