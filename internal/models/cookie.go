package models

import "time"

// VisitorCookie is the durable visitor identity behind click tracking.
// First-touch pointers are write-once (set only while NULL); last-touch
// pointers follow latest-wins by click timestamp. ExpiresAt is pushed out to
// now + campaign cookie duration on every touch, never pulled back.
type VisitorCookie struct {
	ID              string     `gorm:"size:36;primaryKey" json:"id"` // UUID
	FirstClickID    *uint      `json:"first_click_id"`
	FirstPartnerID  *uint      `json:"first_partner_id"`
	FirstCampaignID *uint      `json:"first_campaign_id"`
	LastClickID     *uint      `json:"last_click_id"`
	LastPartnerID   *uint      `gorm:"index" json:"last_partner_id"`
	LastCampaignID  *uint      `gorm:"index" json:"last_campaign_id"`
	LastSeenAt      time.Time  `gorm:"not null" json:"last_seen_at"`
	ExpiresAt       time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (VisitorCookie) TableName() string { return "visitor_cookies" }

// Expired reports whether the cookie window has passed.
func (v *VisitorCookie) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
