package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner is an affiliate account. Created on signup in PENDING; status
// transitions happen via vendor approval.
type Partner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // PENDING, ACTIVE, SUSPENDED
	Tier      string         `gorm:"size:20;not null;default:STANDARD" json:"tier"`
	PayoutEmail string       `gorm:"size:255" json:"payout_email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Partner) TableName() string { return "partners" }
