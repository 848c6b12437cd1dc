package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionEvent is immutable once approved except for status transitions.
// DedupKey is the vendor transaction id when supplied, else the caller's
// idempotency key; the unique index makes attribution replays no-ops.
type ConversionEvent struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	DedupKey              string           `gorm:"size:128;uniqueIndex;not null" json:"dedup_key"`
	TransactionID         string           `gorm:"size:128;index" json:"transaction_id"`
	CustomerID            string           `gorm:"size:128" json:"customer_id"`
	EventTypeID           uint             `gorm:"not null;index" json:"event_type_id"`
	ClickID               *uint            `json:"click_id"`
	CookieID              string           `gorm:"size:36;index" json:"cookie_id"`
	PartnerID             *uint            `gorm:"index" json:"partner_id"`
	CampaignID            *uint            `gorm:"index" json:"campaign_id"`
	AttributionType       string           `gorm:"size:20;not null" json:"attribution_type"` // LAST_CLICK, FIRST_CLICK, UNATTRIBUTED
	AttributionConfidence string           `gorm:"size:10;not null" json:"attribution_confidence"`
	EventValue            *decimal.Decimal `gorm:"type:decimal(14,2)" json:"event_value,omitempty"`
	CommissionType        string           `gorm:"size:20" json:"commission_type"`
	CommissionValue       decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"commission_value"`
	CommissionAmount      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"commission_amount"`
	NeedsReview           bool             `gorm:"not null;default:false" json:"needs_review"`
	Status                string           `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	OccurredAt            time.Time        `gorm:"not null;index" json:"occurred_at"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`

	EventType EventType `gorm:"foreignKey:EventTypeID" json:"-"`
}

func (ConversionEvent) TableName() string { return "conversion_events" }
