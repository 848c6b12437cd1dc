package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FunnelJourney is a derived projection over conversion events grouped by
// (cookie, partner, campaign). It is recomputed wholesale, never hand-edited.
type FunnelJourney struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CookieID        string          `gorm:"size:36;not null;uniqueIndex:idx_journey_key" json:"cookie_id"`
	PartnerID       uint            `gorm:"not null;uniqueIndex:idx_journey_key" json:"partner_id"`
	CampaignID      uint            `gorm:"not null;uniqueIndex:idx_journey_key" json:"campaign_id"`
	StartedAt       time.Time       `gorm:"not null" json:"started_at"`
	LastEventAt     time.Time       `gorm:"not null" json:"last_event_at"`
	TotalEvents     int64           `gorm:"not null" json:"total_events"`
	TotalCommission decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_commission"`
	IsConverted     bool            `gorm:"not null" json:"is_converted"`
	RecomputedAt    time.Time       `gorm:"not null" json:"recomputed_at"`
}

func (FunnelJourney) TableName() string { return "funnel_journeys" }
