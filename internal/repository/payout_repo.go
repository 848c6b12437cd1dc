package repository

import (
	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// DB exposes the handle for callers that open their own transactions.
func (r *PayoutRepository) DB() *gorm.DB { return r.db }

// CreateWithAllocations inserts the payout and its allocation rows inside the
// given transaction. Either everything lands or nothing does; the unique
// index on conversion_event_id rejects any event another payout already
// claimed, aborting the whole batch.
func (r *PayoutRepository) CreateWithAllocations(tx *gorm.DB, p *models.Payout, events []models.ConversionEvent) error {
	if err := tx.Create(p).Error; err != nil {
		return err
	}
	for _, e := range events {
		alloc := models.PayoutEvent{
			PayoutID:          p.ID,
			ConversionEventID: e.ID,
			Amount:            e.CommissionAmount,
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PayoutRepository) GetByID(id uint) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.Preload("Events").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByReference(ref string) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.Where("reference = ?", ref).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) Update(p *models.Payout) error {
	return r.db.Save(p).Error
}

// UpdateStatusFrom transitions status only when the row is still in the
// expected state; returns the number of rows changed so the caller can tell
// a lost race from success.
func (r *PayoutRepository) UpdateStatusFrom(id uint, from, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *PayoutRepository) ListByPartner(partnerID uint) ([]models.Payout, error) {
	var list []models.Payout
	err := r.db.Where("partner_id = ?", partnerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *PayoutRepository) List(status string, limit, offset int) ([]models.Payout, error) {
	var list []models.Payout
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

// AllocationCount reports how many payout rows reference a conversion event.
// Always 0 or 1 when the unique index holds.
func (r *PayoutRepository) AllocationCount(conversionEventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PayoutEvent{}).
		Where("conversion_event_id = ?", conversionEventID).
		Count(&count).Error
	return count, err
}
