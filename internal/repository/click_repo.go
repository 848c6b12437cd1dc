package repository

import (
	"time"

	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// Append writes an immutable click row. Clicks are never updated.
func (r *ClickRepository) Append(c *models.Click) error {
	return r.db.Create(c).Error
}

func (r *ClickRepository) GetByID(id uint) (*models.Click, error) {
	var c models.Click
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountByPair returns source-of-truth click stats for reconciliation.
func (r *ClickRepository) CountByPair(partnerID, campaignID uint) (int64, *time.Time, error) {
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("partner_id = ? AND campaign_id = ?", partnerID, campaignID).
		Count(&count).Error
	if err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	var last models.Click
	err = r.db.Where("partner_id = ? AND campaign_id = ?", partnerID, campaignID).
		Order("occurred_at DESC").First(&last).Error
	if err != nil {
		return count, nil, err
	}
	return count, &last.OccurredAt, nil
}

func (r *ClickRepository) ListByCookie(cookieID string) ([]models.Click, error) {
	var list []models.Click
	err := r.db.Where("cookie_id = ?", cookieID).Order("occurred_at ASC").Find(&list).Error
	return list, err
}
