package service

import (
	"testing"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type trackingFixture struct {
	db         *gorm.DB
	svc        *TrackingService
	campaign   *models.Campaign
	partner    *models.Partner
	enrollment *models.CampaignPartner
	link       *models.PartnerLink
}

func newTrackingFixture(t *testing.T, mutate func(*models.Campaign)) *trackingFixture {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	cfg := &config.TrackingConfig{
		CookieName:          "lp_cid",
		DefaultCookieDays:   30,
		ClickWriteRetries:   1,
		ClickWriteBackoff:   time.Millisecond,
		RedirectFallbackURL: "https://linkpulse.io",
	}
	svc := NewTrackingService(
		cfg,
		linkRepo,
		repository.NewClickRepository(db),
		repository.NewEnrollmentRepository(db),
		NewResolverService(repository.NewCookieRepository(db)),
		nil,
	)
	campaign := seedCampaign(t, db, mutate)
	partner := seedPartner(t, db, domain.PartnerStatusActive)
	enrollment := seedEnrollment(t, db, campaign.ID, partner.ID)
	link := &models.PartnerLink{CampaignPartnerID: enrollment.ID, Label: "blog"}
	require.NoError(t, linkRepo.Create(link))
	return &trackingFixture{db: db, svc: svc, campaign: campaign, partner: partner, enrollment: enrollment, link: link}
}

func TestTrackClickRecordsAndRedirects(t *testing.T) {
	f := newTrackingFixture(t, nil)
	now := time.Now()

	result, err := f.svc.TrackClick(f.link.ShortCode, "", ClickMeta{Referrer: "https://blog.example.com"}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, result.CookieID)
	assert.NotZero(t, result.ClickID)
	assert.Equal(t, f.partner.ID, result.PartnerID)

	// {partner_id} substituted into the destination.
	assert.Contains(t, result.RedirectURL, "pid=")
	assert.NotContains(t, result.RedirectURL, "{partner_id}")

	var click models.Click
	require.NoError(t, f.db.First(&click, result.ClickID).Error)
	assert.Equal(t, result.CookieID, click.CookieID)
	assert.Equal(t, "https://blog.example.com", click.Referrer)

	var e models.CampaignPartner
	require.NoError(t, f.db.First(&e, f.enrollment.ID).Error)
	assert.Equal(t, int64(1), e.TotalClicks)
	require.NotNil(t, e.LastClickAt)
}

func TestTrackClickUnknownCode(t *testing.T) {
	f := newTrackingFixture(t, nil)
	_, err := f.svc.TrackClick("nope1234", "", ClickMeta{}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrackClickReusesCookie(t *testing.T) {
	f := newTrackingFixture(t, nil)
	now := time.Now()

	first, err := f.svc.TrackClick(f.link.ShortCode, "", ClickMeta{}, now)
	require.NoError(t, err)
	second, err := f.svc.TrackClick(f.link.ShortCode, first.CookieID, ClickMeta{}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.CookieID, second.CookieID)

	var e models.CampaignPartner
	require.NoError(t, f.db.First(&e, f.enrollment.ID).Error)
	assert.Equal(t, int64(2), e.TotalClicks)
}

func TestTrackClickAppendsCustomParams(t *testing.T) {
	f := newTrackingFixture(t, nil)
	linkRepo := repository.NewLinkRepository(f.db)
	tagged := &models.PartnerLink{CampaignPartnerID: f.enrollment.ID, CustomParams: "src=newsletter"}
	require.NoError(t, linkRepo.Create(tagged))

	result, err := f.svc.TrackClick(tagged.ShortCode, "", ClickMeta{}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, result.RedirectURL, "&src=newsletter")
}
