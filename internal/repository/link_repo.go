package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// generateShortCode returns an 8-character lowercase hex tracking code.
func generateShortCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil // 8 hex chars, e.g. "a3f2c1b0"
}

// Create persists a new link, generating a unique short code. Retries on
// collision with a fresh code.
func (r *LinkRepository) Create(link *models.PartnerLink) error {
	for i := 0; i < 10; i++ {
		code, err := generateShortCode()
		if err != nil {
			return err
		}
		link.ShortCode = code
		if err := r.db.Create(link).Error; err == nil {
			return nil
		}
		// Collision: retry with new code
	}
	return fmt.Errorf("failed to generate a unique short code after retries")
}

// GetByShortCode returns the link with its enrollment and campaign loaded;
// the redirect path needs all three.
func (r *LinkRepository) GetByShortCode(code string) (*models.PartnerLink, error) {
	var link models.PartnerLink
	err := r.db.Where("short_code = ?", code).
		Preload("CampaignPartner").
		Preload("CampaignPartner.Campaign").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *LinkRepository) GetByID(id uint) (*models.PartnerLink, error) {
	var link models.PartnerLink
	if err := r.db.First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *LinkRepository) ListByEnrollment(enrollmentID uint) ([]models.PartnerLink, error) {
	var list []models.PartnerLink
	err := r.db.Where("campaign_partner_id = ?", enrollmentID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// UpdateMetadata changes label and custom params only; the code and binding
// are immutable.
func (r *LinkRepository) UpdateMetadata(id uint, label, customParams string) error {
	return r.db.Model(&models.PartnerLink{}).Where("id = ?", id).
		Updates(map[string]interface{}{"label": label, "custom_params": customParams}).Error
}
