package repository

import (
	"time"

	"linkpulse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConversionRepository struct {
	db *gorm.DB
}

func NewConversionRepository(db *gorm.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

func (r *ConversionRepository) Create(e *models.ConversionEvent) error {
	return r.db.Create(e).Error
}

func (r *ConversionRepository) GetByID(id uint) (*models.ConversionEvent, error) {
	var e models.ConversionEvent
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ConversionRepository) GetByDedupKey(key string) (*models.ConversionEvent, error) {
	var e models.ConversionEvent
	if err := r.db.Where("dedup_key = ?", key).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ConversionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.ConversionEvent{}).Where("id = ?", id).Update("status", status).Error
}

// SumApprovedValue returns the cumulative approved GMV for a (partner,
// campaign) pair, computed from the event table itself. Tier selection reads
// this, never the display counters.
func (r *ConversionRepository) SumApprovedValue(partnerID, campaignID uint) (decimal.Decimal, error) {
	var raw *string
	err := r.db.Model(&models.ConversionEvent{}).
		Select("SUM(event_value)").
		Where("partner_id = ? AND campaign_id = ? AND status = ?", partnerID, campaignID, "APPROVED").
		Scan(&raw).Error
	if err != nil || raw == nil {
		return decimal.Zero, err
	}
	sum, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// CountApproved returns the cumulative approved conversion count for a pair.
func (r *ConversionRepository) CountApproved(partnerID, campaignID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ConversionEvent{}).
		Where("partner_id = ? AND campaign_id = ? AND status = ?", partnerID, campaignID, "APPROVED").
		Count(&count).Error
	return count, err
}

// ListUnallocatedApproved returns approved conversions for the partner within
// [start, end) that no payout has ever claimed. Must run inside the payout
// allocation transaction when tx is the transaction handle.
func (r *ConversionRepository) ListUnallocatedApproved(tx *gorm.DB, partnerID uint, start, end time.Time) ([]models.ConversionEvent, error) {
	if tx == nil {
		tx = r.db
	}
	var list []models.ConversionEvent
	err := tx.
		Joins("LEFT JOIN payout_events ON payout_events.conversion_event_id = conversion_events.id").
		Where("conversion_events.partner_id = ?", partnerID).
		Where("conversion_events.status = ?", "APPROVED").
		Where("conversion_events.occurred_at >= ? AND conversion_events.occurred_at < ?", start, end).
		Where("payout_events.id IS NULL").
		Find(&list).Error
	return list, err
}

func (r *ConversionRepository) ListByPartner(partnerID uint, limit, offset int) ([]models.ConversionEvent, error) {
	var list []models.ConversionEvent
	err := r.db.Where("partner_id = ?", partnerID).
		Order("occurred_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ConversionRepository) ListForReview(limit, offset int) ([]models.ConversionEvent, error) {
	var list []models.ConversionEvent
	err := r.db.Where("needs_review = ? OR attribution_type = ?", true, "UNATTRIBUTED").
		Order("occurred_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// JourneyRow is one aggregated (cookie, partner, campaign) grouping used by
// the funnel recompute.
type JourneyRow struct {
	CookieID        string
	PartnerID       uint
	CampaignID      uint
	StartedAt       time.Time
	LastEventAt     time.Time
	TotalEvents     int64
	TotalCommission decimal.Decimal
	TerminalEvents  int64
}

// AggregateJourneys groups attributed conversions by (cookie, partner,
// campaign). Pure read; the journey service turns rows into projections.
func (r *ConversionRepository) AggregateJourneys(cookieID string) ([]JourneyRow, error) {
	var rows []JourneyRow
	q := r.db.Model(&models.ConversionEvent{}).
		Select(`conversion_events.cookie_id AS cookie_id,
			conversion_events.partner_id AS partner_id,
			conversion_events.campaign_id AS campaign_id,
			MIN(conversion_events.occurred_at) AS started_at,
			MAX(conversion_events.occurred_at) AS last_event_at,
			COUNT(*) AS total_events,
			COALESCE(SUM(conversion_events.commission_amount), 0) AS total_commission,
			SUM(CASE WHEN event_types.is_terminal THEN 1 ELSE 0 END) AS terminal_events`).
		Joins("JOIN event_types ON event_types.id = conversion_events.event_type_id").
		Where("conversion_events.partner_id IS NOT NULL AND conversion_events.campaign_id IS NOT NULL").
		Where("conversion_events.cookie_id <> ''").
		Group("conversion_events.cookie_id, conversion_events.partner_id, conversion_events.campaign_id")
	if cookieID != "" {
		q = q.Where("conversion_events.cookie_id = ?", cookieID)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

// ReconcileRow carries source-of-truth conversion totals per pair.
type ReconcileRow struct {
	PartnerID       uint
	CampaignID      uint
	TotalConversions int64
	TotalRevenue    decimal.Decimal
	TotalCommission decimal.Decimal
}

func (r *ConversionRepository) TotalsByPair(partnerID, campaignID uint) (*ReconcileRow, error) {
	var row ReconcileRow
	err := r.db.Model(&models.ConversionEvent{}).
		Select(`COUNT(*) AS total_conversions,
			COALESCE(SUM(event_value), 0) AS total_revenue,
			COALESCE(SUM(commission_amount), 0) AS total_commission`).
		Where("partner_id = ? AND campaign_id = ? AND status = ?", partnerID, campaignID, "APPROVED").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	row.PartnerID = partnerID
	row.CampaignID = campaignID
	return &row, nil
}
