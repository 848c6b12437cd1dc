package service

import (
	"testing"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedConversion(t *testing.T, db *gorm.DB, cookieID string, partnerID, campaignID, eventTypeID uint, dedup, commission string, at time.Time) {
	t.Helper()
	e := &models.ConversionEvent{
		DedupKey:         dedup,
		EventTypeID:      eventTypeID,
		PartnerID:        &partnerID,
		CampaignID:       &campaignID,
		CookieID:         cookieID,
		CommissionAmount: dec(commission),
		Status:           domain.ConversionStatusApproved,
		OccurredAt:       at,
	}
	require.NoError(t, db.Create(e).Error)
}

func TestRecomputeBuildsJourney(t *testing.T) {
	db := newTestDB(t)
	svc := NewJourneyService(repository.NewConversionRepository(db), repository.NewJourneyRepository(db))
	lead := seedEventType(t, db, "lead", true, false)
	sale := seedEventType(t, db, "sale", true, true)
	campaign := seedCampaign(t, db, nil)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	cookieID := uuid.NewString()
	now := time.Now()

	seedConversion(t, db, cookieID, partner.ID, campaign.ID, lead.ID, "j-1", "2.00", now.Add(-2*time.Hour))
	seedConversion(t, db, cookieID, partner.ID, campaign.ID, sale.ID, "j-2", "10.00", now.Add(-time.Hour))

	written, err := svc.Recompute(cookieID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	j, err := repository.NewJourneyRepository(db).GetByKey(cookieID, partner.ID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), j.TotalEvents)
	assert.Equal(t, "12.00", j.TotalCommission.StringFixed(2))
	assert.True(t, j.IsConverted) // sale is terminal
	assert.True(t, j.StartedAt.Before(j.LastEventAt))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewJourneyService(repository.NewConversionRepository(db), repository.NewJourneyRepository(db))
	sale := seedEventType(t, db, "sale", true, true)
	campaign := seedCampaign(t, db, nil)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	cookieID := uuid.NewString()
	now := time.Now()

	seedConversion(t, db, cookieID, partner.ID, campaign.ID, sale.ID, "j-a", "5.00", now.Add(-time.Hour))

	_, err := svc.Recompute(cookieID, now)
	require.NoError(t, err)
	_, err = svc.Recompute(cookieID, now.Add(time.Minute))
	require.NoError(t, err)

	var count int64
	db.Model(&models.FunnelJourney{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecomputeAllGroupsPairs(t *testing.T) {
	db := newTestDB(t)
	svc := NewJourneyService(repository.NewConversionRepository(db), repository.NewJourneyRepository(db))
	sale := seedEventType(t, db, "sale", true, true)
	campaign := seedCampaign(t, db, nil)
	other := seedCampaign(t, db, nil)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	now := time.Now()

	cookieA := uuid.NewString()
	cookieB := uuid.NewString()
	seedConversion(t, db, cookieA, partner.ID, campaign.ID, sale.ID, "g-1", "5.00", now)
	seedConversion(t, db, cookieA, partner.ID, other.ID, sale.ID, "g-2", "5.00", now)
	seedConversion(t, db, cookieB, partner.ID, campaign.ID, sale.ID, "g-3", "5.00", now)

	// Empty cookie id recomputes everything.
	written, err := svc.Recompute("", now)
	require.NoError(t, err)
	assert.Equal(t, 3, written)
}
