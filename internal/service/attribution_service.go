package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/internal/ws"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributionService turns inbound conversion events into attributed,
// commissioned rows. Attribution is idempotent by dedup key: replays return
// the stored result without recomputing.
type AttributionService struct {
	cookieRepo     *repository.CookieRepository
	clickRepo      *repository.ClickRepository
	conversionRepo *repository.ConversionRepository
	eventTypeRepo  *repository.EventTypeRepository
	campaignRepo   *repository.CampaignRepository
	enrollmentRepo *repository.EnrollmentRepository
	commission     *CommissionService
	hub            *ws.Hub
}

func NewAttributionService(
	cookieRepo *repository.CookieRepository,
	clickRepo *repository.ClickRepository,
	conversionRepo *repository.ConversionRepository,
	eventTypeRepo *repository.EventTypeRepository,
	campaignRepo *repository.CampaignRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	commission *CommissionService,
	hub *ws.Hub,
) *AttributionService {
	return &AttributionService{
		cookieRepo:     cookieRepo,
		clickRepo:      clickRepo,
		conversionRepo: conversionRepo,
		eventTypeRepo:  eventTypeRepo,
		campaignRepo:   campaignRepo,
		enrollmentRepo: enrollmentRepo,
		commission:     commission,
		hub:            hub,
	}
}

type ConversionInput struct {
	EventType      string
	TransactionID  string
	IdempotencyKey string
	CustomerID     string
	CookieID       string
	ClickID        *uint
	EventValue     *decimal.Decimal
	OccurredAt     time.Time
}

var ErrMissingDedupKey = errors.New("transaction_id or idempotency key required")

// Attribute resolves which (partner, campaign, click) the conversion belongs
// to and computes its commission. The conversion is always persisted:
// unattributable events are stored with UNATTRIBUTED/LOW and returned together
// with ErrUnattributed so callers can flag them, and commission failures mark
// the row for review instead of dropping it.
func (s *AttributionService) Attribute(in ConversionInput, now time.Time) (*models.ConversionEvent, error) {
	dedupKey := strings.TrimSpace(in.TransactionID)
	if dedupKey == "" {
		dedupKey = strings.TrimSpace(in.IdempotencyKey)
	}
	if dedupKey == "" {
		return nil, ErrMissingDedupKey
	}
	if existing, err := s.conversionRepo.GetByDedupKey(dedupKey); err == nil {
		return existing, nil
	}

	eventType, err := s.eventTypeRepo.GetByName(strings.ToLower(strings.TrimSpace(in.EventType)))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	event := &models.ConversionEvent{
		DedupKey:      dedupKey,
		TransactionID: in.TransactionID,
		CustomerID:    in.CustomerID,
		EventTypeID:   eventType.ID,
		ClickID:       in.ClickID,
		CookieID:      in.CookieID,
		EventValue:    in.EventValue,
		Status:        domain.ConversionStatusPending,
		OccurredAt:    in.OccurredAt,
	}

	cookie := s.resolveCookie(event)
	attributed := s.applyAttribution(event, cookie, now)

	if attributed {
		s.applyCommission(event, eventType, now)
	}

	if err := s.conversionRepo.Create(event); err != nil {
		// Unique index on dedup_key: a concurrent delivery won the race.
		if existing, err2 := s.conversionRepo.GetByDedupKey(dedupKey); err2 == nil {
			return existing, nil
		}
		return nil, err
	}

	if attributed {
		s.recordEnrollmentTotals(event)
		s.broadcast(event)
		return event, nil
	}
	return event, domain.ErrUnattributed
}

// resolveCookie loads the cookie directly or through the referenced click.
func (s *AttributionService) resolveCookie(event *models.ConversionEvent) *models.VisitorCookie {
	if event.CookieID == "" && event.ClickID != nil {
		if click, err := s.clickRepo.GetByID(*event.ClickID); err == nil {
			event.CookieID = click.CookieID
		}
	}
	if event.CookieID == "" {
		return nil
	}
	cookie, err := s.cookieRepo.GetByID(event.CookieID)
	if err != nil {
		return nil
	}
	return cookie
}

// applyAttribution fills partner/campaign/attribution fields and reports
// whether the event was attributed. Policy comes from the campaign that owns
// the cookie's last touch; default is last-click within the cookie window.
func (s *AttributionService) applyAttribution(event *models.ConversionEvent, cookie *models.VisitorCookie, now time.Time) bool {
	event.AttributionType = domain.AttributionUnattributed
	event.AttributionConfidence = domain.ConfidenceLow

	if cookie == nil || cookie.LastPartnerID == nil || cookie.LastCampaignID == nil {
		return false
	}

	policy := domain.AttributionLastClick
	if campaign, err := s.campaignRepo.GetByID(*cookie.LastCampaignID); err == nil && campaign.AttributionPolicy != "" {
		policy = campaign.AttributionPolicy
	}

	if cookie.Expired(now) {
		// First-click campaigns may honor attribution past nominal expiry
		// when no competing touch occurred; confidence drops to medium.
		if policy == domain.AttributionFirstClick &&
			cookie.FirstPartnerID != nil && cookie.FirstCampaignID != nil &&
			*cookie.FirstPartnerID == *cookie.LastPartnerID {
			event.PartnerID = cookie.FirstPartnerID
			event.CampaignID = cookie.FirstCampaignID
			event.ClickID = firstNonNil(event.ClickID, cookie.FirstClickID)
			event.AttributionType = domain.AttributionFirstClick
			event.AttributionConfidence = domain.ConfidenceMedium
			s.downgradeOnClockSkew(event)
			return true
		}
		return false
	}

	switch policy {
	case domain.AttributionFirstClick:
		if cookie.FirstPartnerID == nil || cookie.FirstCampaignID == nil {
			return false
		}
		event.PartnerID = cookie.FirstPartnerID
		event.CampaignID = cookie.FirstCampaignID
		event.ClickID = firstNonNil(event.ClickID, cookie.FirstClickID)
		event.AttributionType = domain.AttributionFirstClick
	default:
		event.PartnerID = cookie.LastPartnerID
		event.CampaignID = cookie.LastCampaignID
		event.ClickID = firstNonNil(event.ClickID, cookie.LastClickID)
		event.AttributionType = domain.AttributionLastClick
	}
	event.AttributionConfidence = domain.ConfidenceHigh
	s.downgradeOnClockSkew(event)
	return true
}

// downgradeOnClockSkew lowers confidence when the conversion claims to have
// happened before the click it is attributed to. Clock skew and replays are
// logged, never rejected; conversions must not be silently dropped.
func (s *AttributionService) downgradeOnClockSkew(event *models.ConversionEvent) {
	if event.ClickID == nil {
		return
	}
	click, err := s.clickRepo.GetByID(*event.ClickID)
	if err != nil {
		return
	}
	if event.OccurredAt.Before(click.OccurredAt) {
		log.Printf("[Attribution] conversion %s predates click %d (skew %s), confidence downgraded",
			event.DedupKey, click.ID, click.OccurredAt.Sub(event.OccurredAt))
		event.AttributionConfidence = domain.ConfidenceLow
	}
}

func (s *AttributionService) applyCommission(event *models.ConversionEvent, eventType *models.EventType, now time.Time) {
	campaign, err := s.campaignRepo.GetByID(*event.CampaignID)
	if err != nil {
		event.NeedsReview = true
		return
	}
	result, err := s.commission.Compute(*event.PartnerID, *event.CampaignID, eventType, event.EventValue, campaign, now)
	if err != nil {
		// Commission failure withholds payment, not the conversion itself.
		log.Printf("[Attribution] commission failed for %s: %v", event.DedupKey, err)
		event.NeedsReview = true
		return
	}
	event.CommissionType = result.Type
	event.CommissionValue = result.Value
	event.CommissionAmount = result.Amount
	event.NeedsReview = result.NeedsReview
}

func (s *AttributionService) recordEnrollmentTotals(event *models.ConversionEvent) {
	enrollment, err := s.enrollmentRepo.GetByPair(*event.CampaignID, *event.PartnerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Attribution] enrollment lookup failed: %v", err)
		}
		return
	}
	revenue := decimal.Zero
	if event.EventValue != nil {
		revenue = *event.EventValue
	}
	if err := s.enrollmentRepo.IncrementConversion(enrollment.ID, revenue, event.CommissionAmount); err != nil {
		log.Printf("[Attribution] conversion counter increment failed for enrollment %d: %v", enrollment.ID, err)
	}
}

func (s *AttributionService) broadcast(event *models.ConversionEvent) {
	if s.hub == nil || event.CampaignID == nil {
		return
	}
	campaign, err := s.campaignRepo.GetByID(*event.CampaignID)
	if err != nil {
		return
	}
	s.hub.BroadcastToUser(campaign.VendorID, ws.ActivityEvent{
		Type:       "conversion",
		CampaignID: *event.CampaignID,
		PartnerID:  *event.PartnerID,
		OccurredAt: event.OccurredAt,
	})
}

func firstNonNil(a, b *uint) *uint {
	if a != nil {
		return a
	}
	return b
}
