package service

import (
	"testing"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommissionService(db *gorm.DB) *CommissionService {
	return NewCommissionService(
		repository.NewOverrideRepository(db),
		repository.NewConversionRepository(db),
	)
}

func TestComputePercentage(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, nil) // 10 PERCENT
	sale := seedEventType(t, db, "sale", true, true)

	res, err := svc.Compute(1, campaign.ID, sale, decPtr("100"), campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionPercentage, res.Type)
	assert.Equal(t, "10.00", res.Amount.StringFixed(2))
	assert.False(t, res.NeedsReview)
}

func TestComputePercentageRoundsHalfEven(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, func(c *models.Campaign) {
		c.CommissionValue = dec("2.5")
	})
	sale := seedEventType(t, db, "sale", true, true)

	// 2.5% of 100.50 = 2.5125 -> 2.51
	res, err := svc.Compute(1, campaign.ID, sale, decPtr("100.50"), campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2.51", res.Amount.StringFixed(2))

	// 2.5% of 101 = 2.525, exactly half: rounds to even -> 2.52
	res, err = svc.Compute(1, campaign.ID, sale, decPtr("101"), campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2.52", res.Amount.StringFixed(2))
}

func TestComputeFlat(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, func(c *models.Campaign) {
		c.CommissionType = domain.CommissionFlat
		c.CommissionValue = dec("7.50")
	})
	lead := seedEventType(t, db, "lead", true, false)

	res, err := svc.Compute(1, campaign.ID, lead, nil, campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "7.50", res.Amount.StringFixed(2))
}

func TestComputePercentageWithoutValueFails(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, nil)
	sale := seedEventType(t, db, "sale", true, true)

	_, err := svc.Compute(1, campaign.ID, sale, nil, campaign, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidCommissionInput)
}

func TestComputeNonCommissionable(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, nil)
	signup := seedEventType(t, db, "signup", false, false)

	res, err := svc.Compute(1, campaign.ID, signup, decPtr("100"), campaign, time.Now())
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
}

func TestComputeResolutionOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, nil) // campaign default 10%
	sale := seedEventType(t, db, "sale", true, true)
	now := time.Now()

	// Event-type default beats campaign default.
	sale.DefaultCommissionType = domain.CommissionPercentage
	sale.DefaultCommissionValue = decPtr("15")
	require.NoError(t, db.Save(sale).Error)

	res, err := svc.Compute(1, campaign.ID, sale, decPtr("100"), campaign, now)
	require.NoError(t, err)
	assert.Equal(t, "15.00", res.Amount.StringFixed(2))

	// Partner override beats both.
	override := &models.PartnerCommissionOverride{
		PartnerID:       1,
		CampaignID:      campaign.ID,
		EventTypeID:     sale.ID,
		CommissionType:  domain.CommissionFlat,
		CommissionValue: dec("25"),
		ValidFrom:       now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(override).Error)

	res, err = svc.Compute(1, campaign.ID, sale, decPtr("100"), campaign, now)
	require.NoError(t, err)
	assert.Equal(t, "25.00", res.Amount.StringFixed(2))

	// An expired override no longer applies.
	until := now.Add(-time.Minute)
	override.ValidUntil = &until
	require.NoError(t, db.Save(override).Error)

	res, err = svc.Compute(1, campaign.ID, sale, decPtr("100"), campaign, now)
	require.NoError(t, err)
	assert.Equal(t, "15.00", res.Amount.StringFixed(2))
}

func TestComputeTieredUsesPreEventCumulative(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	sale := seedEventType(t, db, "sale", true, true)
	campaign := seedCampaign(t, db, func(c *models.Campaign) {
		c.CommissionType = domain.CommissionTiered
		c.TierBasis = domain.TierBasisGMV
	})
	campaign.Tiers = []models.CommissionTier{
		{CampaignID: campaign.ID, MinValue: dec("0"), MaxValue: decPtr("100"), CommissionType: domain.CommissionPercentage, CommissionValue: dec("10")},
		{CampaignID: campaign.ID, MinValue: dec("100"), CommissionType: domain.CommissionPercentage, CommissionValue: dec("5")},
	}
	partner := seedPartner(t, db, domain.PartnerStatusActive)

	approved := func(value string) {
		e := &models.ConversionEvent{
			DedupKey:    "txn-" + value + time.Now().Format("150405.000000"),
			EventTypeID: sale.ID,
			PartnerID:   &partner.ID,
			CampaignID:  &campaign.ID,
			EventValue:  decPtr(value),
			Status:      domain.ConversionStatusApproved,
			OccurredAt:  time.Now(),
		}
		require.NoError(t, db.Create(e).Error)
	}

	// Cumulative approved GMV 90: the event lands in [0, 100) even though it
	// crosses the boundary mid-event.
	approved("90")
	res, err := svc.Compute(partner.ID, campaign.ID, sale, decPtr("50"), campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "5.00", res.Amount.StringFixed(2)) // 10% of 50

	// Cumulative 140: next event uses the 5% tier.
	approved("50")
	res, err = svc.Compute(partner.ID, campaign.ID, sale, decPtr("50"), campaign, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2.50", res.Amount.StringFixed(2)) // 5% of 50
}

func TestComputeNegativeClampedToZero(t *testing.T) {
	db := newTestDB(t)
	svc := newCommissionService(db)
	campaign := seedCampaign(t, db, func(c *models.Campaign) {
		c.CommissionType = domain.CommissionFlat
		c.CommissionValue = dec("-5")
	})
	lead := seedEventType(t, db, "lead", true, false)

	res, err := svc.Compute(1, campaign.ID, lead, nil, campaign, time.Now())
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
	assert.True(t, res.NeedsReview)
}

func TestValidateTiers(t *testing.T) {
	tier := func(min string, max *string, value string) models.CommissionTier {
		ct := models.CommissionTier{MinValue: dec(min), CommissionType: domain.CommissionPercentage, CommissionValue: dec(value)}
		if max != nil {
			ct.MaxValue = decPtr(*max)
		}
		return ct
	}
	s := func(v string) *string { return &v }

	assert.NoError(t, ValidateTiers(nil))
	assert.NoError(t, ValidateTiers([]models.CommissionTier{
		tier("0", s("100"), "10"),
		tier("100", s("500"), "7"),
		tier("500", nil, "5"),
	}))
	// Bounded top tier is legal.
	assert.NoError(t, ValidateTiers([]models.CommissionTier{
		tier("0", s("100"), "10"),
		tier("100", s("500"), "7"),
	}))
	// Must start at zero.
	assert.ErrorIs(t, ValidateTiers([]models.CommissionTier{
		tier("10", s("100"), "10"),
	}), domain.ErrInvalidTierConfig)
	// Gap between tiers.
	assert.ErrorIs(t, ValidateTiers([]models.CommissionTier{
		tier("0", s("100"), "10"),
		tier("150", nil, "5"),
	}), domain.ErrInvalidTierConfig)
	// Overlap.
	assert.ErrorIs(t, ValidateTiers([]models.CommissionTier{
		tier("0", s("100"), "10"),
		tier("50", nil, "5"),
	}), domain.ErrInvalidTierConfig)
	// Unbounded tier in the middle.
	assert.ErrorIs(t, ValidateTiers([]models.CommissionTier{
		tier("0", nil, "10"),
		tier("100", nil, "5"),
	}), domain.ErrInvalidTierConfig)
	// Empty range.
	assert.ErrorIs(t, ValidateTiers([]models.CommissionTier{
		tier("0", s("0"), "10"),
	}), domain.ErrInvalidTierConfig)
}
