package models

import "time"

// Click is append-only: once written it is never mutated. CookieID is a weak
// reference; the cookie row may be created in the same request.
type Click struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PartnerLinkID uint      `gorm:"not null;index" json:"partner_link_id"`
	PartnerID     uint      `gorm:"not null;index" json:"partner_id"`
	CampaignID    uint      `gorm:"not null;index" json:"campaign_id"`
	CookieID      string    `gorm:"size:36;index" json:"cookie_id"`
	Referrer      string    `gorm:"size:1024" json:"referrer"`
	UserAgent     string    `gorm:"size:1024" json:"user_agent"`
	ClientIP      string    `gorm:"size:64" json:"client_ip"`
	UTMSource     string    `gorm:"size:255" json:"utm_source"`
	UTMMedium     string    `gorm:"size:255" json:"utm_medium"`
	UTMCampaign   string    `gorm:"size:255" json:"utm_campaign"`
	Device        string    `gorm:"size:64" json:"device"`
	OccurredAt    time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Click) TableName() string { return "clicks" }
