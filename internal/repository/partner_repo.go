package repository

import (
	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(p *models.Partner) error {
	return r.db.Create(p).Error
}

func (r *PartnerRepository) GetByID(id uint) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) GetByUserID(userID uint) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) Update(p *models.Partner) error {
	return r.db.Save(p).Error
}

func (r *PartnerRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Update("status", status).Error
}

func (r *PartnerRepository) UpdateTier(id uint, tier string) error {
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Update("tier", tier).Error
}

func (r *PartnerRepository) List(status string, limit, offset int) ([]models.Partner, error) {
	var list []models.Partner
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}
