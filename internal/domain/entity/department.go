package entity

import (
	"time"

	"github.com/google/uuid"
)

// Department represents a government office department citizens can book
// tokens for. The catalog is owned by administrators; the booking engine
// only reads it (department code feeds token number generation).
type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Code      string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Location  string    `gorm:"type:varchar(200)" json:"location"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}
