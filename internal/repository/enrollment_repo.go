package repository

import (
	"time"

	"linkpulse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(e *models.CampaignPartner) error {
	return r.db.Create(e).Error
}

func (r *EnrollmentRepository) GetByID(id uint) (*models.CampaignPartner, error) {
	var e models.CampaignPartner
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) GetByPair(campaignID, partnerID uint) (*models.CampaignPartner, error) {
	var e models.CampaignPartner
	err := r.db.Where("campaign_id = ? AND partner_id = ?", campaignID, partnerID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.CampaignPartner{}).Where("id = ?", id).Update("status", status).Error
}

// IncrementClicks bumps the display counter atomically. At-least-once: the
// caller retries on failure, a duplicate increment only skews a non-
// authoritative counter.
func (r *EnrollmentRepository) IncrementClicks(id uint, at time.Time) error {
	return r.db.Model(&models.CampaignPartner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_clicks":  gorm.Expr("total_clicks + 1"),
			"last_click_at": at,
		}).Error
}

func (r *EnrollmentRepository) IncrementConversion(id uint, revenue, commission decimal.Decimal) error {
	return r.db.Model(&models.CampaignPartner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_conversions": gorm.Expr("total_conversions + 1"),
			"total_revenue":     gorm.Expr("total_revenue + ?", revenue),
			"total_commission":  gorm.Expr("total_commission + ?", commission),
		}).Error
}

// SetTotals overwrites the counters with reconciled values from the source
// tables.
func (r *EnrollmentRepository) SetTotals(id uint, clicks, conversions int64, revenue, commission decimal.Decimal, lastClickAt *time.Time) error {
	return r.db.Model(&models.CampaignPartner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_clicks":      clicks,
			"total_conversions": conversions,
			"total_revenue":     revenue,
			"total_commission":  commission,
			"last_click_at":     lastClickAt,
		}).Error
}

func (r *EnrollmentRepository) ListByCampaign(campaignID uint) ([]models.CampaignPartner, error) {
	var list []models.CampaignPartner
	err := r.db.Where("campaign_id = ?", campaignID).Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListByPartner(partnerID uint) ([]models.CampaignPartner, error) {
	var list []models.CampaignPartner
	err := r.db.Where("partner_id = ?", partnerID).Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListAll() ([]models.CampaignPartner, error) {
	var list []models.CampaignPartner
	err := r.db.Find(&list).Error
	return list, err
}
