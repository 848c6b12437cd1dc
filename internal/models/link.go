package models

import (
	"time"

	"gorm.io/gorm"
)

// PartnerLink is a short tracking code bound to one enrollment. The code is
// immutable once created; only Label and CustomParams may change.
type PartnerLink struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CampaignPartnerID uint           `gorm:"not null;index" json:"campaign_partner_id"`
	ShortCode         string         `gorm:"size:20;uniqueIndex;not null" json:"short_code"`
	Label             string         `gorm:"size:255" json:"label"`
	CustomParams      string         `gorm:"size:1024" json:"custom_params"` // raw query fragment appended to the destination
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	CampaignPartner CampaignPartner `gorm:"foreignKey:CampaignPartnerID" json:"-"`
}

func (PartnerLink) TableName() string { return "partner_links" }
