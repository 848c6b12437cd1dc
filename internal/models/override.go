package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartnerCommissionOverride replaces the campaign default for one partner and
// one event type while its validity window is active. ValidUntil nil means
// open-ended.
type PartnerCommissionOverride struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PartnerID       uint            `gorm:"not null;index;uniqueIndex:idx_override_scope" json:"partner_id"`
	CampaignID      uint            `gorm:"not null;index;uniqueIndex:idx_override_scope" json:"campaign_id"`
	EventTypeID     uint            `gorm:"not null;uniqueIndex:idx_override_scope" json:"event_type_id"`
	CommissionType  string          `gorm:"size:20;not null" json:"commission_type"`
	CommissionValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_value"`
	ValidFrom       time.Time       `gorm:"not null" json:"valid_from"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (PartnerCommissionOverride) TableName() string { return "partner_commission_overrides" }

// ActiveAt reports whether the override applies at the given instant.
func (o *PartnerCommissionOverride) ActiveAt(t time.Time) bool {
	if t.Before(o.ValidFrom) {
		return false
	}
	return o.ValidUntil == nil || t.Before(*o.ValidUntil)
}
