package service

import (
	"testing"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAllRewritesCounters(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconciliationService(
		repository.NewEnrollmentRepository(db),
		repository.NewClickRepository(db),
		repository.NewConversionRepository(db),
	)
	sale := seedEventType(t, db, "sale", true, true)
	campaign := seedCampaign(t, db, nil)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	enrollment := seedEnrollment(t, db, campaign.ID, partner.ID)
	now := time.Now()

	// Source of truth: 2 clicks, 1 approved conversion.
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Click{
			PartnerLinkID: 1,
			PartnerID:     partner.ID,
			CampaignID:    campaign.ID,
			OccurredAt:    now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	approved := &models.ConversionEvent{
		DedupKey:         "rec-1",
		EventTypeID:      sale.ID,
		PartnerID:        &partner.ID,
		CampaignID:       &campaign.ID,
		EventValue:       decPtr("100"),
		CommissionAmount: dec("10"),
		Status:           domain.ConversionStatusApproved,
		OccurredAt:       now,
	}
	require.NoError(t, db.Create(approved).Error)

	// Drifted display counters.
	require.NoError(t, db.Model(&models.CampaignPartner{}).Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{"total_clicks": 99, "total_conversions": 99}).Error)

	fixed, err := svc.ReconcileAll()
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	var e models.CampaignPartner
	require.NoError(t, db.First(&e, enrollment.ID).Error)
	assert.Equal(t, int64(2), e.TotalClicks)
	assert.Equal(t, int64(1), e.TotalConversions)
	assert.Equal(t, "100.00", e.TotalRevenue.StringFixed(2))
	assert.Equal(t, "10.00", e.TotalCommission.StringFixed(2))
	require.NotNil(t, e.LastClickAt)
}
