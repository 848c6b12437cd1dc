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

type attributionFixture struct {
	db         *gorm.DB
	svc        *AttributionService
	resolver   *ResolverService
	cookieRepo *repository.CookieRepository
	clickRepo  *repository.ClickRepository
	campaign   *models.Campaign
	partner    *models.Partner
	enrollment *models.CampaignPartner
	sale       *models.EventType
}

func newAttributionFixture(t *testing.T, mutate func(*models.Campaign)) *attributionFixture {
	db := newTestDB(t)
	cookieRepo := repository.NewCookieRepository(db)
	clickRepo := repository.NewClickRepository(db)
	conversionRepo := repository.NewConversionRepository(db)
	eventTypeRepo := repository.NewEventTypeRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	commission := NewCommissionService(repository.NewOverrideRepository(db), conversionRepo)

	campaign := seedCampaign(t, db, mutate)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	enrollment := seedEnrollment(t, db, campaign.ID, partner.ID)
	sale := seedEventType(t, db, "sale", true, true)

	return &attributionFixture{
		db:         db,
		svc:        NewAttributionService(cookieRepo, clickRepo, conversionRepo, eventTypeRepo, campaignRepo, enrollmentRepo, commission, nil),
		resolver:   NewResolverService(cookieRepo),
		cookieRepo: cookieRepo,
		clickRepo:  clickRepo,
		campaign:   campaign,
		partner:    partner,
		enrollment: enrollment,
		sale:       sale,
	}
}

// touch mints a cookie and records one click for the fixture pair.
func (f *attributionFixture) touch(t *testing.T, at time.Time) (*models.VisitorCookie, *models.Click) {
	t.Helper()
	cookie, _, err := f.resolver.Resolve("", f.campaign, at)
	require.NoError(t, err)
	click := &models.Click{
		PartnerLinkID: 1,
		PartnerID:     f.partner.ID,
		CampaignID:    f.campaign.ID,
		CookieID:      cookie.ID,
		OccurredAt:    at,
	}
	require.NoError(t, f.clickRepo.Append(click))
	f.resolver.RecordTouch(cookie, click, f.campaign)
	return cookie, click
}

func TestAttributeLastClick(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()
	cookie, click := f.touch(t, now.Add(-time.Hour))

	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-1",
		CookieID:      cookie.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}, now)
	require.NoError(t, err)
	require.NotNil(t, event.PartnerID)
	assert.Equal(t, f.partner.ID, *event.PartnerID)
	assert.Equal(t, f.campaign.ID, *event.CampaignID)
	assert.Equal(t, click.ID, *event.ClickID)
	assert.Equal(t, domain.AttributionLastClick, event.AttributionType)
	assert.Equal(t, domain.ConfidenceHigh, event.AttributionConfidence)
	assert.Equal(t, "10.00", event.CommissionAmount.StringFixed(2))
	assert.Equal(t, domain.ConversionStatusPending, event.Status)

	// Display counters incremented on the enrollment.
	var e models.CampaignPartner
	require.NoError(t, f.db.First(&e, f.enrollment.ID).Error)
	assert.Equal(t, int64(1), e.TotalConversions)
}

func TestAttributeIdempotentByDedupKey(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()
	cookie, _ := f.touch(t, now.Add(-time.Hour))

	in := ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-replay",
		CookieID:      cookie.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}
	first, err := f.svc.Attribute(in, now)
	require.NoError(t, err)

	// Replays return the stored result; nothing is recomputed or re-counted.
	replay, err := f.svc.Attribute(in, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)

	var count int64
	f.db.Model(&models.ConversionEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var e models.CampaignPartner
	require.NoError(t, f.db.First(&e, f.enrollment.ID).Error)
	assert.Equal(t, int64(1), e.TotalConversions)
}

func TestAttributeMissingDedupKey(t *testing.T) {
	f := newAttributionFixture(t, nil)
	_, err := f.svc.Attribute(ConversionInput{EventType: "sale", OccurredAt: time.Now()}, time.Now())
	assert.ErrorIs(t, err, ErrMissingDedupKey)
}

func TestAttributeNoCookieUnattributed(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()

	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-orphan",
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}, now)
	assert.ErrorIs(t, err, domain.ErrUnattributed)
	require.NotNil(t, event)
	assert.Nil(t, event.PartnerID)
	assert.Equal(t, domain.AttributionUnattributed, event.AttributionType)
	assert.Equal(t, domain.ConfidenceLow, event.AttributionConfidence)
	assert.True(t, event.CommissionAmount.IsZero())

	// Still persisted for the review queue.
	stored, err2 := repository.NewConversionRepository(f.db).GetByDedupKey("txn-orphan")
	require.NoError(t, err2)
	assert.Equal(t, event.ID, stored.ID)
}

func TestAttributeExpiredCookieUnattributed(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()
	cookie, _ := f.touch(t, now.Add(-60*24*time.Hour)) // 30 day window, long gone

	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-late",
		CookieID:      cookie.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}, now)
	assert.ErrorIs(t, err, domain.ErrUnattributed)
	assert.Equal(t, domain.AttributionUnattributed, event.AttributionType)
}

func TestAttributeFirstClickGracePastExpiry(t *testing.T) {
	f := newAttributionFixture(t, func(c *models.Campaign) {
		c.AttributionPolicy = domain.AttributionFirstClick
	})
	now := time.Now()
	cookie, click := f.touch(t, now.Add(-60*24*time.Hour))

	// Same partner on both pointers: first-click attribution survives expiry
	// at reduced confidence.
	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-grace",
		CookieID:      cookie.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionFirstClick, event.AttributionType)
	assert.Equal(t, domain.ConfidenceMedium, event.AttributionConfidence)
	assert.Equal(t, click.ID, *event.ClickID)
}

func TestAttributeClockSkewDowngradesConfidence(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()
	cookie, click := f.touch(t, now)

	// Conversion timestamped before the click it attributes to.
	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-skew",
		CookieID:      cookie.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now.Add(-time.Hour),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, click.ID, *event.ClickID)
	assert.Equal(t, domain.ConfidenceLow, event.AttributionConfidence)
	// Attributed and commissioned despite the skew.
	assert.Equal(t, "10.00", event.CommissionAmount.StringFixed(2))
}

func TestAttributeResolvesCookieThroughClick(t *testing.T) {
	f := newAttributionFixture(t, nil)
	now := time.Now()
	_, click := f.touch(t, now.Add(-time.Hour))

	event, err := f.svc.Attribute(ConversionInput{
		EventType:     "sale",
		TransactionID: "txn-via-click",
		ClickID:       &click.ID,
		EventValue:    decPtr("100"),
		OccurredAt:    now,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, f.partner.ID, *event.PartnerID)
	assert.Equal(t, click.CookieID, event.CookieID)
}

func TestAttributeUnknownEventType(t *testing.T) {
	f := newAttributionFixture(t, nil)
	_, err := f.svc.Attribute(ConversionInput{
		EventType:     "refund",
		TransactionID: "txn-x",
		OccurredAt:    time.Now(),
	}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
