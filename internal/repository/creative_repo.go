package repository

import (
	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type CreativeRepository struct {
	db *gorm.DB
}

func NewCreativeRepository(db *gorm.DB) *CreativeRepository {
	return &CreativeRepository{db: db}
}

func (r *CreativeRepository) Create(c *models.CampaignCreative) error {
	return r.db.Create(c).Error
}

func (r *CreativeRepository) ListByCampaign(campaignID uint) ([]models.CampaignCreative, error) {
	var list []models.CampaignCreative
	err := r.db.Where("campaign_id = ?", campaignID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CreativeRepository) GetByID(id uint) (*models.CampaignCreative, error) {
	var c models.CampaignCreative
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CreativeRepository) Delete(id uint) error {
	return r.db.Delete(&models.CampaignCreative{}, id).Error
}
