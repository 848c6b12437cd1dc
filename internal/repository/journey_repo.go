package repository

import (
	"linkpulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JourneyRepository struct {
	db *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Upsert writes a journey projection keyed by (cookie, partner, campaign).
// Re-running a recompute overwrites, never double counts.
func (r *JourneyRepository) Upsert(j *models.FunnelJourney) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cookie_id"}, {Name: "partner_id"}, {Name: "campaign_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"started_at", "last_event_at", "total_events", "total_commission", "is_converted", "recomputed_at",
		}),
	}).Create(j).Error
}

func (r *JourneyRepository) GetByKey(cookieID string, partnerID, campaignID uint) (*models.FunnelJourney, error) {
	var j models.FunnelJourney
	err := r.db.Where("cookie_id = ? AND partner_id = ? AND campaign_id = ?", cookieID, partnerID, campaignID).
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JourneyRepository) ListByPartner(partnerID uint, limit, offset int) ([]models.FunnelJourney, error) {
	var list []models.FunnelJourney
	err := r.db.Where("partner_id = ?", partnerID).
		Order("last_event_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *JourneyRepository) ListByCampaign(campaignID uint, limit, offset int) ([]models.FunnelJourney, error) {
	var list []models.FunnelJourney
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("last_event_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
