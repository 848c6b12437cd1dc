package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignPartner is a partner's enrollment in a campaign. The totals are
// best-effort display counters updated at-least-once on the ingestion path
// and reconciled from the source tables; payout math never reads them.
type CampaignPartner struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CampaignID       uint            `gorm:"not null;index;uniqueIndex:idx_campaign_partner" json:"campaign_id"`
	PartnerID        uint            `gorm:"not null;index;uniqueIndex:idx_campaign_partner" json:"partner_id"`
	Status           string          `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	TotalClicks      int64           `gorm:"not null;default:0" json:"total_clicks"`
	TotalConversions int64           `gorm:"not null;default:0" json:"total_conversions"`
	TotalRevenue     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_revenue"`
	TotalCommission  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_commission"`
	LastClickAt      *time.Time      `json:"last_click_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	Partner  Partner  `gorm:"foreignKey:PartnerID" json:"-"`
}

func (CampaignPartner) TableName() string { return "campaign_partners" }
