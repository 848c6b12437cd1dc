package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventType is a catalog entry for conversion events (sale, signup, lead...).
// A non-commissionable type is tracked for funnels but earns nothing.
// DefaultCommissionType empty means "fall through to the campaign default".
type EventType struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	Name                   string           `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Commissionable         bool             `gorm:"not null;default:true" json:"commissionable"`
	IsTerminal             bool             `gorm:"not null;default:false" json:"is_terminal"` // completes a funnel journey
	DefaultCommissionType  string           `gorm:"size:20" json:"default_commission_type"`
	DefaultCommissionValue *decimal.Decimal `gorm:"type:decimal(12,2)" json:"default_commission_value,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	DeletedAt              gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (EventType) TableName() string { return "event_types" }
