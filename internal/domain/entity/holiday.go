package entity

import (
	"time"
)

// Holiday is a calendar date blocked for booking. The booking handler
// rejects holiday dates before the engine is invoked; the engine itself
// does not re-check them.
type Holiday struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Reason    string    `gorm:"type:varchar(200)" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}
