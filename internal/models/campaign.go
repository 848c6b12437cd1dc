package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign is owned by a vendor. Commission defaults apply when neither a
// partner override nor an event-type rule matches. Edits bump Version and
// snapshot the previous state into campaign_versions.
type Campaign struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	VendorID           uint            `gorm:"not null;index" json:"vendor_id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	DestinationURL     string          `gorm:"size:1024;not null" json:"destination_url"` // may contain {partner_id}
	Status             string          `gorm:"size:20;not null;index" json:"status"`      // DRAFT, ACTIVE, PAUSED, ARCHIVED
	AttributionPolicy  string          `gorm:"size:20;not null;default:LAST_CLICK" json:"attribution_policy"`
	CommissionType     string          `gorm:"size:20;not null" json:"commission_type"` // FLAT, PERCENTAGE, TIERED
	CommissionValue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"commission_value"`
	TierBasis          string          `gorm:"size:20" json:"tier_basis"` // GMV or CONVERSIONS, for TIERED
	CookieDurationDays int             `gorm:"not null;default:30" json:"cookie_duration_days"`
	ApprovalRequired   bool            `gorm:"not null;default:true" json:"approval_required"`
	IsPublic           bool            `gorm:"not null;default:true" json:"is_public"`
	Version            int             `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	Vendor User             `gorm:"foreignKey:VendorID" json:"-"`
	Tiers  []CommissionTier `gorm:"foreignKey:CampaignID" json:"tiers,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

// CampaignVersion preserves campaign history: every edit snapshots the state
// being replaced.
type CampaignVersion struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CampaignID      uint            `gorm:"not null;index" json:"campaign_id"`
	Version         int             `gorm:"not null" json:"version"`
	Name            string          `gorm:"size:255" json:"name"`
	DestinationURL  string          `gorm:"size:1024" json:"destination_url"`
	CommissionType  string          `gorm:"size:20" json:"commission_type"`
	CommissionValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"commission_value"`
	CookieDurationDays int          `json:"cookie_duration_days"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (CampaignVersion) TableName() string { return "campaign_versions" }

// CommissionTier is one contiguous [MinValue, MaxValue) bucket of a tiered
// campaign. MaxValue nil means unbounded; the highest tier is open-ended by
// convention. Validated on save, never at calculation time.
type CommissionTier struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	CampaignID      uint             `gorm:"not null;index" json:"campaign_id"`
	MinValue        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"min_value"`
	MaxValue        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_value,omitempty"`
	CommissionType  string           `gorm:"size:20;not null;default:PERCENTAGE" json:"commission_type"`
	CommissionValue decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"commission_value"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (CommissionTier) TableName() string { return "commission_tiers" }
