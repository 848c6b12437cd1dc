package repository

import (
	"time"

	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type OverrideRepository struct {
	db *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) Create(o *models.PartnerCommissionOverride) error {
	return r.db.Create(o).Error
}

// GetActive returns the override scoped to this (partner, campaign, event
// type) if its validity window contains now.
func (r *OverrideRepository) GetActive(partnerID, campaignID, eventTypeID uint, now time.Time) (*models.PartnerCommissionOverride, error) {
	var o models.PartnerCommissionOverride
	err := r.db.
		Where("partner_id = ? AND campaign_id = ? AND event_type_id = ?", partnerID, campaignID, eventTypeID).
		Where("valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until > ?", now).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverrideRepository) ListByCampaign(campaignID uint) ([]models.PartnerCommissionOverride, error) {
	var list []models.PartnerCommissionOverride
	err := r.db.Where("campaign_id = ?", campaignID).Find(&list).Error
	return list, err
}

func (r *OverrideRepository) Delete(id uint) error {
	return r.db.Delete(&models.PartnerCommissionOverride{}, id).Error
}
