package repository

import (
	"time"

	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(c *models.Campaign) error {
	return r.db.Create(c).Error
}

func (r *CampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var c models.Campaign
	if err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("min_value ASC")
	}).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListByVendor(vendorID uint) ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("vendor_id = ?", vendorID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CampaignRepository) ListPublicActive() ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("is_public = ? AND status = ?", true, "ACTIVE").Find(&list).Error
	return list, err
}

// Update snapshots the current state into campaign_versions and bumps the
// version counter, in one transaction. Edits never rewrite history.
func (r *CampaignRepository) Update(c *models.Campaign, mutate func(*models.Campaign)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		snapshot := models.CampaignVersion{
			CampaignID:         c.ID,
			Version:            c.Version,
			Name:               c.Name,
			DestinationURL:     c.DestinationURL,
			CommissionType:     c.CommissionType,
			CommissionValue:    c.CommissionValue,
			CookieDurationDays: c.CookieDurationDays,
			CreatedAt:          time.Now(),
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}
		mutate(c)
		c.Version++
		return tx.Save(c).Error
	})
}

func (r *CampaignRepository) ListVersions(campaignID uint) ([]models.CampaignVersion, error) {
	var list []models.CampaignVersion
	err := r.db.Where("campaign_id = ?", campaignID).Order("version DESC").Find(&list).Error
	return list, err
}

// ReplaceTiers swaps the campaign's tier table atomically. Validation happens
// in the commission service before this is called.
func (r *CampaignRepository) ReplaceTiers(campaignID uint, tiers []models.CommissionTier) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.CommissionTier{}).Error; err != nil {
			return err
		}
		for i := range tiers {
			tiers[i].CampaignID = campaignID
			if err := tx.Create(&tiers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CampaignRepository) GetTiers(campaignID uint) ([]models.CommissionTier, error) {
	var tiers []models.CommissionTier
	err := r.db.Where("campaign_id = ?", campaignID).Order("min_value ASC").Find(&tiers).Error
	return tiers, err
}
