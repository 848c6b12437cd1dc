package repository

import (
	"linkpulse/internal/models"

	"gorm.io/gorm"
)

type EventTypeRepository struct {
	db *gorm.DB
}

func NewEventTypeRepository(db *gorm.DB) *EventTypeRepository {
	return &EventTypeRepository{db: db}
}

func (r *EventTypeRepository) Create(e *models.EventType) error {
	return r.db.Create(e).Error
}

func (r *EventTypeRepository) GetByID(id uint) (*models.EventType, error) {
	var e models.EventType
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventTypeRepository) GetByName(name string) (*models.EventType, error) {
	var e models.EventType
	if err := r.db.Where("name = ?", name).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventTypeRepository) List() ([]models.EventType, error) {
	var list []models.EventType
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *EventTypeRepository) Update(e *models.EventType) error {
	return r.db.Save(e).Error
}
