package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the account behind a vendor or partner. Dashboards authenticate as
// users; tracking endpoints never do.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // VENDOR, PARTNER, ADMIN
	CompanyName  string         `gorm:"size:255" json:"company_name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
