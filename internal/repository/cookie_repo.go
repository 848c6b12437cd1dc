package repository

import (
	"time"

	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type CookieRepository struct {
	db *gorm.DB
}

func NewCookieRepository(db *gorm.DB) *CookieRepository {
	return &CookieRepository{db: db}
}

func (r *CookieRepository) Create(c *models.VisitorCookie) error {
	return r.db.Create(c).Error
}

func (r *CookieRepository) GetByID(id string) (*models.VisitorCookie, error) {
	var c models.VisitorCookie
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SetFirstTouch writes the first-touch pointers only if they are still unset.
// Compare-and-set: concurrent clicks race, exactly one wins, later calls are
// no-ops.
func (r *CookieRepository) SetFirstTouch(cookieID string, clickID, partnerID, campaignID uint) error {
	return r.db.Model(&models.VisitorCookie{}).
		Where("id = ? AND first_click_id IS NULL", cookieID).
		Updates(map[string]interface{}{
			"first_click_id":    clickID,
			"first_partner_id":  partnerID,
			"first_campaign_id": campaignID,
		}).Error
}

// UpdateLastTouch applies latest-wins by click timestamp: the update is
// guarded on last_seen_at so an older click arriving late cannot overwrite a
// newer touch.
func (r *CookieRepository) UpdateLastTouch(cookieID string, clickID, partnerID, campaignID uint, seenAt time.Time) error {
	return r.db.Model(&models.VisitorCookie{}).
		Where("id = ? AND last_seen_at <= ?", cookieID, seenAt).
		Updates(map[string]interface{}{
			"last_click_id":    clickID,
			"last_partner_id":  partnerID,
			"last_campaign_id": campaignID,
			"last_seen_at":     seenAt,
		}).Error
}

// ExtendExpiry pushes expires_at out; it never pulls it back in.
func (r *CookieRepository) ExtendExpiry(cookieID string, expiresAt time.Time) error {
	return r.db.Model(&models.VisitorCookie{}).
		Where("id = ? AND expires_at < ?", cookieID, expiresAt).
		Update("expires_at", expiresAt).Error
}
