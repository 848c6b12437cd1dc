package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout aggregates approved commissions for one partner over one period.
// Completed payouts are terminal; further amounts need a new payout.
type Payout struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null" json:"reference"` // sent to the provider, echoed in callbacks
	PartnerID     uint            `gorm:"not null;index" json:"partner_id"`
	PaymentMethod string          `gorm:"size:64;not null" json:"payment_method"`
	PeriodStart   time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd     time.Time       `gorm:"not null" json:"period_end"` // exclusive
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        string          `gorm:"size:20;not null;index" json:"status"` // PENDING, PROCESSING, COMPLETED, FAILED
	ProviderTxnID string          `gorm:"size:128" json:"provider_txn_id"`
	FailureReason string          `gorm:"size:512" json:"failure_reason"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at"`

	Events []PayoutEvent `gorm:"foreignKey:PayoutID" json:"events,omitempty"`
}

func (Payout) TableName() string { return "payouts" }

// PayoutEvent records which commission amount from which conversion went into
// which payout. The unique index on ConversionEventID guarantees a conversion
// is paid out at most once, ever.
type PayoutEvent struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PayoutID          uint            `gorm:"not null;index" json:"payout_id"`
	ConversionEventID uint            `gorm:"not null;uniqueIndex" json:"conversion_event_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (PayoutEvent) TableName() string { return "payout_events" }
