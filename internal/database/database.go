package database

import (
	"log"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.Campaign{},
		&models.CampaignVersion{},
		&models.CommissionTier{},
		&models.CampaignPartner{},
		&models.PartnerCommissionOverride{},
		&models.PartnerLink{},
		&models.VisitorCookie{},
		&models.Click{},
		&models.EventType{},
		&models.ConversionEvent{},
		&models.Payout{},
		&models.PayoutEvent{},
		&models.FunnelJourney{},
		&models.CampaignCreative{},
	)
}

// SeedEventTypes inserts the default conversion event catalog if empty.
func SeedEventTypes(db *gorm.DB) {
	var count int64
	db.Model(&models.EventType{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []models.EventType{
		{Name: "signup", Commissionable: false},
		{Name: "lead", Commissionable: true},
		{Name: "sale", Commissionable: true, IsTerminal: true},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			log.Printf("[Seed] event type %s: %v", defaults[i].Name, err)
		}
	}
}

// SeedAdmin creates the bootstrap admin account if missing.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-change-me"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	admin := models.User{Email: "admin@linkpulse.io", PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[Seed] admin: %v", err)
	}
}
