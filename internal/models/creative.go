package models

import (
	"time"

	"gorm.io/gorm"
)

// CampaignCreative is a cloudinary-hosted banner or asset partners embed.
type CampaignCreative struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CampaignID uint           `gorm:"not null;index" json:"campaign_id"`
	Name       string         `gorm:"size:255" json:"name"`
	URL        string         `gorm:"size:1024;not null" json:"url"`
	PublicID   string         `gorm:"size:255;not null" json:"public_id"` // cloudinary public id
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CampaignCreative) TableName() string { return "campaign_creatives" }
