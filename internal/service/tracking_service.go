package service

import (
	"log"
	"strconv"
	"strings"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/internal/ws"

	"gorm.io/gorm"
)

// TrackingService records clicks behind the redirect endpoint.
type TrackingService struct {
	cfg            *config.TrackingConfig
	linkRepo       *repository.LinkRepository
	clickRepo      *repository.ClickRepository
	enrollmentRepo *repository.EnrollmentRepository
	resolver       *ResolverService
	hub            *ws.Hub
}

func NewTrackingService(
	cfg *config.TrackingConfig,
	linkRepo *repository.LinkRepository,
	clickRepo *repository.ClickRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	resolver *ResolverService,
	hub *ws.Hub,
) *TrackingService {
	return &TrackingService{
		cfg:            cfg,
		linkRepo:       linkRepo,
		clickRepo:      clickRepo,
		enrollmentRepo: enrollmentRepo,
		resolver:       resolver,
		hub:            hub,
	}
}

type ClickMeta struct {
	Referrer    string
	UserAgent   string
	ClientIP    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	Device      string
}

type TrackResult struct {
	RedirectURL string
	CookieID    string
	ClickID     uint
	PartnerID   uint
	CampaignID  uint
}

// TrackClick appends an immutable click for the short code and returns the
// redirect destination. The click write is retried with backoff; counter and
// pointer updates are best-effort and never fail the redirect.
func (s *TrackingService) TrackClick(shortCode, requestCookieID string, meta ClickMeta, now time.Time) (*TrackResult, error) {
	link, err := s.linkRepo.GetByShortCode(shortCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	enrollment := link.CampaignPartner
	campaign := enrollment.Campaign

	cookie, created, err := s.resolver.Resolve(requestCookieID, &campaign, now)
	if err != nil {
		return nil, err
	}
	if created && requestCookieID != "" {
		log.Printf("[Tracking] cookie %q unknown or expired, issued %s", requestCookieID, cookie.ID)
	}

	click := &models.Click{
		PartnerLinkID: link.ID,
		PartnerID:     enrollment.PartnerID,
		CampaignID:    enrollment.CampaignID,
		CookieID:      cookie.ID,
		Referrer:      meta.Referrer,
		UserAgent:     meta.UserAgent,
		ClientIP:      meta.ClientIP,
		UTMSource:     meta.UTMSource,
		UTMMedium:     meta.UTMMedium,
		UTMCampaign:   meta.UTMCampaign,
		Device:        meta.Device,
		OccurredAt:    now,
	}
	if err := s.appendWithRetry(click); err != nil {
		// A gap in tracking is preferred over a broken redirect.
		log.Printf("[Tracking] click write gave up for link %s: %v", shortCode, err)
		return &TrackResult{
			RedirectURL: s.destinationURL(link, &campaign, enrollment.PartnerID),
			CookieID:    cookie.ID,
			PartnerID:   enrollment.PartnerID,
			CampaignID:  enrollment.CampaignID,
		}, nil
	}

	s.resolver.RecordTouch(cookie, click, &campaign)
	if err := s.enrollmentRepo.IncrementClicks(enrollment.ID, now); err != nil {
		log.Printf("[Tracking] click counter increment failed for enrollment %d: %v", enrollment.ID, err)
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(campaign.VendorID, ws.ActivityEvent{
			Type:       "click",
			CampaignID: enrollment.CampaignID,
			PartnerID:  enrollment.PartnerID,
			OccurredAt: now,
		})
	}

	return &TrackResult{
		RedirectURL: s.destinationURL(link, &campaign, enrollment.PartnerID),
		CookieID:    cookie.ID,
		ClickID:     click.ID,
		PartnerID:   enrollment.PartnerID,
		CampaignID:  enrollment.CampaignID,
	}, nil
}

func (s *TrackingService) appendWithRetry(click *models.Click) error {
	retries := s.cfg.ClickWriteRetries
	if retries < 1 {
		retries = 1
	}
	var err error
	for i := 0; i < retries; i++ {
		if err = s.clickRepo.Append(click); err == nil {
			return nil
		}
		time.Sleep(s.cfg.ClickWriteBackoff * time.Duration(i+1))
	}
	return err
}

func (s *TrackingService) destinationURL(link *models.PartnerLink, campaign *models.Campaign, partnerID uint) string {
	dest := campaign.DestinationURL
	if dest == "" {
		return s.cfg.RedirectFallbackURL
	}
	dest = strings.ReplaceAll(dest, "{partner_id}", strconv.FormatUint(uint64(partnerID), 10))
	if link.CustomParams != "" {
		sep := "?"
		if strings.Contains(dest, "?") {
			sep = "&"
		}
		dest = dest + sep + strings.TrimPrefix(link.CustomParams, "?")
	}
	return dest
}
