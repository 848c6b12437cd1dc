package service

import (
	"testing"
	"time"

	"linkpulse/internal/database"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedCampaign(t *testing.T, db *gorm.DB, mutate func(*models.Campaign)) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		VendorID:           1,
		Name:               "Summer Sale",
		DestinationURL:     "https://shop.example.com/landing?pid={partner_id}",
		Status:             domain.CampaignStatusActive,
		AttributionPolicy:  domain.AttributionLastClick,
		CommissionType:     domain.CommissionPercentage,
		CommissionValue:    decimal.NewFromInt(10),
		CookieDurationDays: 30,
		Version:            1,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedPartner(t *testing.T, db *gorm.DB, status string) *models.Partner {
	t.Helper()
	user := &models.User{
		Email:        "partner" + time.Now().Format("150405.000000") + "@example.com",
		PasswordHash: "x",
		Role:         domain.RolePartner,
	}
	require.NoError(t, db.Create(user).Error)
	p := &models.Partner{UserID: user.ID, Status: status, Tier: domain.PartnerTierStandard}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedEnrollment(t *testing.T, db *gorm.DB, campaignID, partnerID uint) *models.CampaignPartner {
	t.Helper()
	e := &models.CampaignPartner{
		CampaignID: campaignID,
		PartnerID:  partnerID,
		Status:     domain.EnrollmentStatusApproved,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func seedEventType(t *testing.T, db *gorm.DB, name string, commissionable, terminal bool) *models.EventType {
	t.Helper()
	et := &models.EventType{Name: name, Commissionable: commissionable, IsTerminal: terminal}
	require.NoError(t, db.Create(et).Error)
	return et
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
